package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const readHeaderTimeout = 10 * time.Second

// Server is the bridge's HTTP listener.
type Server struct {
	http   *http.Server
	addr   string
	bound  string
	logger *zap.Logger
}

// NewServer creates a server for handler on addr.
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		http:   &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: readHeaderTimeout},
		addr:   addr,
		logger: logger,
	}
}

// Start binds the address and serves in the background, so a busy port
// fails startup.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.bound = ln.Addr().String()
	s.logger.Info("http server starting", zap.String("addr", s.bound))
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr is the bound address once Start succeeded, e.g. with port 0
// resolved. Before that it is the configured address.
func (s *Server) Addr() string {
	if s.bound != "" {
		return s.bound
	}
	return s.addr
}

// Stop drains in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server stopping")
	return s.http.Shutdown(ctx)
}
