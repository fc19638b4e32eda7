package bridge

import (
	"bytes"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const apiKeyHeader = "X-Api-Key"

// Proxy forwards /api/* to the gateway, adding the API key.
type Proxy struct {
	settings  *Settings
	transport http.RoundTripper
	logger    *zap.Logger
}

// NewProxy creates a Proxy using the default transport.
func NewProxy(s *Settings, logger *zap.Logger) *Proxy {
	return &Proxy{settings: s, transport: http.DefaultTransport, logger: logger}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/")
	if path == "" || path == r.URL.Path {
		writeError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	target, key := p.settings.Upstream()
	logger := p.logger.With(zap.String("method", r.Method), zap.String("path", path))

	rp := &httputil.ReverseProxy{
		Transport: p.transport,
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
			if key != "" {
				pr.Out.Header.Set(apiKeyHeader, key)
			}
		},
		ModifyResponse: func(resp *http.Response) error {
			switch {
			case strings.HasPrefix(path, "files/") && resp.StatusCode != http.StatusOK:
				return replaceBody(resp, http.StatusNotFound, errorBody{Error: "File not found"})
			case strings.HasSuffix(path, "/qr") && resp.StatusCode == http.StatusOK:
				resp.Header.Set("Content-Type", "image/png")
			case resp.StatusCode >= 400:
				logger.Warn("gateway error response", zap.Int("status", resp.StatusCode))
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, _ *http.Request, err error) {
			logger.Error("gateway unreachable", zap.String("upstream", target.String()), zap.Error(err))
			msg := "cannot reach the gateway at " + target.String()
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				msg = "timed out talking to the gateway"
			}
			writeError(w, http.StatusBadGateway, msg)
		},
	}
	rp.ServeHTTP(w, r)
}

func replaceBody(resp *http.Response, code int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	resp.StatusCode = code
	resp.Status = strconv.Itoa(code) + " " + http.StatusText(code)
	resp.Body = io.NopCloser(bytes.NewReader(data))
	resp.ContentLength = int64(len(data))
	resp.Header.Set("Content-Type", "application/json")
	resp.Header.Set("Content-Length", strconv.Itoa(len(data)))
	resp.Header.Del("Content-Encoding")
	return nil
}
