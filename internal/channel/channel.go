// Package channel maintains the persistent push connection to the bridge's
// /ws/{identity} endpoint and reconnects forever with a fixed delay.
package channel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/bus"
	"github.com/matheus3301/waha-client/internal/clock"
	"github.com/matheus3301/waha-client/internal/dispatch"
)

// DefaultReconnectDelay is the fixed wait between a close and the next dial.
const DefaultReconnectDelay = 5 * time.Second

const (
	dialTimeout  = 15 * time.Second
	writeTimeout = 5 * time.Second
)

// Dialer opens WebSocket connections. *websocket.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Options configures a Channel.
type Options struct {
	// URL is the push endpoint base, e.g. ws://localhost:8001/ws. The
	// identity is appended as the last path segment.
	URL            string
	ReconnectDelay time.Duration
	Clock          clock.Clock
	Dialer         Dialer
	Logger         *zap.Logger
	Bus            *bus.Bus
}

// Channel holds at most one connection, dialing or open, at a time.
type Channel struct {
	base   string
	delay  time.Duration
	clock  clock.Clock
	dialer Dialer
	logger *zap.Logger
	bus    *bus.Bus

	mu       sync.Mutex
	conn     *websocket.Conn
	dialing  bool
	gen      uint64
	identity string
	handlers dispatch.Handlers
	timer    clock.Timer
	shutdown bool
}

// New validates opts and returns an idle channel.
func New(opts Options) (*Channel, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse channel url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("channel url %q: scheme must be ws or wss", opts.URL)
	}
	c := &Channel{
		base:   strings.TrimRight(opts.URL, "/"),
		delay:  opts.ReconnectDelay,
		clock:  opts.Clock,
		dialer: opts.Dialer,
		logger: opts.Logger,
		bus:    opts.Bus,
	}
	if c.delay <= 0 {
		c.delay = DefaultReconnectDelay
	}
	if c.clock == nil {
		c.clock = clock.Real{}
	}
	if c.dialer == nil {
		c.dialer = &websocket.Dialer{HandshakeTimeout: dialTimeout, Proxy: http.ProxyFromEnvironment}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// Open starts connecting for identity unless a connection is already
// dialing or open, in which case it does nothing. It returns immediately;
// h.OnOpen runs once the handshake completes.
func (c *Channel) Open(identity string, h dispatch.Handlers) {
	c.mu.Lock()
	if c.shutdown || c.conn != nil || c.dialing {
		c.mu.Unlock()
		return
	}
	c.dialing = true
	c.gen++
	gen := c.gen
	c.identity = identity
	c.handlers = h
	c.mu.Unlock()

	go c.dial(gen, identity, h)
}

// IsOpen reports whether a connection is established.
func (c *Channel) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close closes the current connection. Like a remote close, it still
// schedules a reconnect; use Shutdown to stop for good.
func (c *Channel) Close() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}
	closeConn(conn)
}

// Shutdown closes the connection and cancels any pending reconnect. The
// channel cannot be reopened afterwards.
func (c *Channel) Shutdown() {
	c.mu.Lock()
	c.shutdown = true
	conn := c.conn
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	if conn != nil {
		closeConn(conn)
	}
}

func (c *Channel) endpoint(identity string) string {
	return c.base + "/" + url.PathEscape(identity)
}

func (c *Channel) dial(gen uint64, identity string, h dispatch.Handlers) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint(identity), nil)
	if err != nil {
		c.logger.Warn("channel dial failed", zap.String("identity", identity), zap.Error(err))
		if h.OnError != nil {
			h.OnError(err)
		}
		c.closed(gen)
		return
	}

	c.mu.Lock()
	if c.shutdown || gen != c.gen {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.dialing = false
	c.mu.Unlock()

	c.logger.Info("channel open", zap.String("identity", identity))
	c.bus.Emit(bus.KindChannelOpen, identity)
	if h.OnOpen != nil {
		h.OnOpen()
	}
	c.readLoop(gen, conn, h)
}

func (c *Channel) readLoop(gen uint64, conn *websocket.Conn, h dispatch.Handlers) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if !errors.As(err, &ce) && !errors.Is(err, net.ErrClosed) && h.OnError != nil {
				h.OnError(err)
			}
			c.logger.Info("channel closed", zap.Error(err))
			c.closed(gen)
			return
		}
		env, err := dispatch.Parse(data)
		if err != nil {
			c.logger.Warn("drop unparsable frame", zap.Int("bytes", len(data)), zap.Error(err))
			continue
		}
		dispatch.Dispatch(env, h, c.logger)
	}
}

// closed clears the handle, schedules exactly one reconnect and runs
// OnClose. Stale generations are ignored.
func (c *Channel) closed(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = nil
	c.dialing = false
	h := c.handlers
	if !c.shutdown {
		if c.timer != nil {
			c.timer.Stop()
		}
		c.timer = c.clock.AfterFunc(c.delay, c.reconnect)
	}
	c.mu.Unlock()

	c.bus.Emit(bus.KindChannelClosed, nil)
	if h.OnClose != nil {
		h.OnClose()
	}
}

func (c *Channel) reconnect() {
	c.mu.Lock()
	c.timer = nil
	identity, h := c.identity, c.handlers
	c.mu.Unlock()
	c.logger.Debug("channel reconnecting", zap.String("identity", identity))
	c.Open(identity, h)
}

func closeConn(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	_ = conn.Close()
}
