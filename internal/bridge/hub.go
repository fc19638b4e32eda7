package bridge

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matheus3301/waha-client/internal/bus"
)

const (
	// WriteTimeout bounds one frame write to one client.
	WriteTimeout   = 2 * time.Second
	broadcastLimit = 32
	hubBuffer      = 256
)

type client struct {
	id    string
	phone string
	ws    *websocket.Conn
	mu    sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *client) closeWith(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(WriteTimeout))
	_ = c.ws.Close()
}

// Hub keeps the WebSocket clients, grouped by phone, and sends every
// webhook to all of them.
type Hub struct {
	upgrader websocket.Upgrader
	bus      *bus.Bus
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[string]map[string]*client
}

// NewHub creates a Hub. Call Run to start forwarding bus events.
func NewHub(b *bus.Bus, logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		bus:     b,
		logger:  logger,
		clients: make(map[string]map[string]*client),
	}
}

// ServeHTTP upgrades /ws/{phone} and keeps the connection until the peer
// goes away. Client frames are read and discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{id: uuid.NewString(), phone: strings.TrimSpace(chi.URLParam(r, "phone")), ws: ws}
	if c.phone == "" {
		h.logger.Warn("websocket without phone identifier")
		c.closeWith(websocket.ClosePolicyViolation, "Invalid phone identifier")
		return
	}

	h.add(c)
	defer h.remove(c)
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read ended", zap.String("conn_id", c.id), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	set, ok := h.clients[c.phone]
	if !ok {
		set = make(map[string]*client)
		h.clients[c.phone] = set
	}
	set[c.id] = c
	h.mu.Unlock()
	h.logger.Info("websocket connected", zap.String("phone", c.phone), zap.String("conn_id", c.id))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	set := h.clients[c.phone]
	_, found := set[c.id]
	if found {
		delete(set, c.id)
		if len(set) == 0 {
			delete(h.clients, c.phone)
		}
	}
	h.mu.Unlock()
	_ = c.ws.Close()
	if !found {
		return
	}
	h.logger.Info("websocket disconnected", zap.String("phone", c.phone), zap.String("conn_id", c.id))
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Broadcast writes data to every client concurrently and drops the ones
// that fail. It returns how many writes succeeded.
func (h *Hub) Broadcast(data []byte) int {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, set := range h.clients {
		for _, c := range set {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		h.logger.Warn("no websocket clients for broadcast")
		return 0
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		sent int
		dead []*client
	)
	g.SetLimit(broadcastLimit)
	for _, c := range targets {
		c := c
		g.Go(func() error {
			err := c.write(data)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.logger.Warn("websocket write failed", zap.String("conn_id", c.id), zap.Error(err))
				dead = append(dead, c)
				return nil
			}
			sent++
			return nil
		})
	}
	_ = g.Wait()

	for _, c := range dead {
		h.remove(c)
	}
	h.logger.Debug("broadcast done", zap.Int("sent", sent), zap.Int("dropped", len(dead)))
	return sent
}

// Run forwards webhook deliveries from the bus until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	h.bus.Listen(ctx, bus.KindWebhookPrefix, hubBuffer, func(evt bus.Event) {
		if d, ok := evt.Payload.(Delivery); ok {
			h.Broadcast(d.Body)
		}
	})
}

// Close disconnects every client with a going-away frame.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*client
	for _, set := range h.clients {
		for _, c := range set {
			all = append(all, c)
		}
	}
	h.clients = make(map[string]map[string]*client)
	h.mu.Unlock()
	for _, c := range all {
		c.closeWith(websocket.CloseGoingAway, "bridge shutting down")
	}
}
