package channel

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheus3301/waha-client/internal/clock"
	"github.com/matheus3301/waha-client/internal/dispatch"
	"github.com/matheus3301/waha-client/internal/model"
)

const wait = 2 * time.Second

type wsServer struct {
	srv   *httptest.Server
	mu    sync.Mutex
	paths []string
	conns chan *websocket.Conn
}

func newWSServer(t *testing.T) *wsServer {
	t.Helper()
	s := &wsServer{conns: make(chan *websocket.Conn, 8)}
	up := websocket.Upgrader{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.paths = append(s.paths, r.URL.Path)
		s.mu.Unlock()
		s.conns <- conn
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *wsServer) url() string { return "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws" }

func (s *wsServer) accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

func (s *wsServer) next(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-s.conns:
		t.Cleanup(func() { _ = c.Close() })
		return c
	case <-time.After(wait):
		t.Fatal("timeout waiting for connection")
		return nil
	}
}

type events struct {
	open, closed chan struct{}
	errs         chan error
	msgs         chan model.Message
}

func newEvents() *events {
	return &events{
		open:   make(chan struct{}, 8),
		closed: make(chan struct{}, 8),
		errs:   make(chan error, 8),
		msgs:   make(chan model.Message, 8),
	}
}

func (e *events) handlers() dispatch.Handlers {
	return dispatch.Handlers{
		OnOpen:    func() { e.open <- struct{}{} },
		OnClose:   func() { e.closed <- struct{}{} },
		OnError:   func(err error) { e.errs <- err },
		OnMessage: func(m model.Message) { e.msgs <- m },
	}
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(wait):
		t.Fatalf("timeout waiting for %s", what)
	}
	var zero T
	return zero
}

func newChannel(t *testing.T, url string, clk clock.Clock) *Channel {
	t.Helper()
	c, err := New(Options{URL: url, Clock: clk})
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)
	return c
}

func TestNewRejectsHTTPURL(t *testing.T) {
	_, err := New(Options{URL: "http://localhost/ws"})
	assert.Error(t, err)
}

func TestOpenDispatchesFrames(t *testing.T) {
	s := newWSServer(t)
	ev := newEvents()
	c := newChannel(t, s.url(), clock.NewFake())

	c.Open("5511999999999", ev.handlers())
	waitFor(t, ev.open, "open")
	assert.True(t, c.IsOpen())

	srv := s.next(t)
	require.NoError(t, srv.WriteMessage(websocket.TextMessage, []byte("garbage")))
	require.NoError(t, srv.WriteMessage(websocket.TextMessage, []byte(`{"event":"message","payload":{"id":"m1","from":"a@c.us","body":"hi"}}`)))

	m := waitFor(t, ev.msgs, "message")
	assert.Equal(t, "hi", m.Body)
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Equal(t, []string{"/ws/5511999999999"}, s.paths)
}

func TestOpenIsIdempotent(t *testing.T) {
	s := newWSServer(t)
	ev := newEvents()
	c := newChannel(t, s.url(), clock.NewFake())

	c.Open("a", ev.handlers())
	c.Open("a", ev.handlers())
	waitFor(t, ev.open, "open")
	c.Open("b", ev.handlers())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, s.accepted())
}

// A local Close still schedules exactly one reconnect, and after it fires
// there is a single open connection.
func TestCloseSchedulesOneReconnect(t *testing.T) {
	s := newWSServer(t)
	ev := newEvents()
	clk := clock.NewFake()
	c := newChannel(t, s.url(), clk)

	c.Open("a", ev.handlers())
	waitFor(t, ev.open, "open")
	s.next(t)

	c.Close()
	waitFor(t, ev.closed, "close")
	assert.False(t, c.IsOpen())
	assert.Equal(t, 1, clk.Pending())

	clk.Advance(4 * time.Second)
	assert.Equal(t, 1, s.accepted(), "no reconnect before the delay")

	clk.Advance(time.Second)
	waitFor(t, ev.open, "reopen")
	s.next(t)
	assert.True(t, c.IsOpen())
	assert.Equal(t, 0, clk.Pending())
	assert.Equal(t, 2, s.accepted())
}

func TestRemoteCloseReconnects(t *testing.T) {
	s := newWSServer(t)
	ev := newEvents()
	clk := clock.NewFake()
	c := newChannel(t, s.url(), clk)

	c.Open("a", ev.handlers())
	waitFor(t, ev.open, "open")
	srv := s.next(t)
	_ = srv.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"))
	_ = srv.Close()

	waitFor(t, ev.closed, "close")
	assert.Equal(t, 1, clk.Pending())
}

func TestDialFailureReportsErrorAndRetries(t *testing.T) {
	s := newWSServer(t)
	url := s.url()
	s.srv.Close()

	ev := newEvents()
	clk := clock.NewFake()
	c := newChannel(t, url, clk)

	c.Open("a", ev.handlers())
	waitFor(t, ev.errs, "error")
	waitFor(t, ev.closed, "close")
	assert.False(t, c.IsOpen())
	assert.Equal(t, 1, clk.Pending())
}

func TestShutdownStopsReconnecting(t *testing.T) {
	s := newWSServer(t)
	ev := newEvents()
	clk := clock.NewFake()
	c := newChannel(t, s.url(), clk)

	c.Open("a", ev.handlers())
	waitFor(t, ev.open, "open")
	s.next(t)

	c.Shutdown()
	waitFor(t, ev.closed, "close")
	assert.Equal(t, 0, clk.Pending())

	c.Open("a", ev.handlers())
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, s.accepted())
}
