package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheus3301/waha-client/internal/status"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api", "default",
		WithAPIKey("k"),
		WithWebhook(WebhookTarget{URL: "http://bridge/webhook", Secret: "s"}))
	require.NoError(t, err)
	return c
}

func TestNewValidates(t *testing.T) {
	_, err := New("ftp://x", "default")
	assert.Error(t, err)
	_, err = New("http://x/api", "")
	assert.Error(t, err)
}

func TestErrorMessagePriority(t *testing.T) {
	tests := []struct {
		name  string
		ctype string
		body  string
		want  string
	}{
		{"message wins", "application/json", `{"message":"boom","error":"other"}`, "boom"},
		{"error fallback", "application/json", `{"error":"Not Found"}`, "Not Found"},
		{"array message", "application/json", `{"message":["a","b"]}`, "a; b"},
		{"plain text", "text/plain", `nope`, "HTTP 500"},
		{"empty json", "application/json", `{}`, "HTTP 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.ctype)
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, tt.body)
			})
			err := c.Get(context.Background(), "/x", nil)
			var re *RequestError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, http.StatusInternalServerError, re.StatusCode)
			assert.Equal(t, tt.want, re.Message)
		})
	}
}

func TestTransportErrorHasStatusZero(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := New(srv.URL, "default")
	require.NoError(t, err)

	err = c.Get(context.Background(), "/sessions", nil)
	require.Error(t, err)
	assert.Equal(t, 0, StatusOf(err))
	assert.False(t, IsNotFound(err))
}

func TestGetSessionNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/default", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Session not found"}`)
	})
	_, err := c.GetSession(context.Background())
	assert.True(t, IsNotFound(err))
}

func TestGetSessionDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"name":"default","status":"WORKING","me":{"id":"5511@c.us","pushName":"Ana"},"engine":{"engine":"NOWEB","state":"CONNECTED"}}`)
	})
	info, err := c.GetSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, status.Working, info.Status)
	assert.Equal(t, "Ana", info.User())
	assert.Equal(t, "NOWEB (CONNECTED)", info.EngineLabel())
}

func TestCreateSessionPayload(t *testing.T) {
	var got CreateSessionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sessions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})
	err := c.CreateSession(context.Background(), "5511999999999")
	require.NoError(t, err)

	assert.Equal(t, "default", got.Name)
	assert.True(t, got.Start)
	assert.Equal(t, "5511999999999", got.Config.Metadata["user.id"])
	require.Len(t, got.Config.Webhooks, 1)
	assert.Equal(t, CreateEvents, got.Config.Webhooks[0].Events)
	require.NotNil(t, got.Config.Webhooks[0].HMAC)
	assert.Equal(t, "s", got.Config.Webhooks[0].HMAC.Key)
}

func TestConfigureWebhooksWrapsConfig(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body map[string]map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		hooks, ok := body["config"]["webhooks"].([]any)
		require.True(t, ok)
		require.Len(t, hooks, 1)
		hook := hooks[0].(map[string]any)
		assert.Equal(t, "http://bridge/webhook", hook["url"])
		assert.Equal(t, []any{"message.any", "message.ack", "session.status"}, hook["events"])
	})
	require.NoError(t, c.ConfigureWebhooks(context.Background()))
}

func TestLifecyclePaths(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
	})
	ctx := context.Background()
	require.NoError(t, c.StartSession(ctx))
	require.NoError(t, c.StopSession(ctx))
	require.NoError(t, c.LogoutSession(ctx))
	require.NoError(t, c.DeleteSession(ctx))
	assert.Equal(t, []string{
		"POST /api/sessions/default/start",
		"POST /api/sessions/default/stop",
		"POST /api/sessions/default/logout",
		"DELETE /api/sessions/default",
	}, seen)
}

func TestQR(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nrest")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/default/auth/qr", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	})
	qr, err := c.QR(context.Background())
	require.NoError(t, err)
	assert.Equal(t, png, qr.Data)
	assert.Equal(t, "image/png", qr.MimeType)
}

func TestQRFailureIsRequestError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	_, err := c.QR(context.Background())
	assert.True(t, IsUnprocessable(err))
}

func TestListChatsNormalizes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/default/chats/overview", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"a@c.us","_chat":{"unread":3}},{"bad":true}]`)
	})
	chats, err := c.ListChats(context.Background())
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, 3, chats[0].UnreadCount)
}

func TestListMessagesEscapesChatID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/default/chats/a@c.us/messages", r.URL.Path)
		assert.Equal(t, "40", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"m1","body":"hi","timestamp":10}]`)
	})
	msgs, err := c.ListMessages(context.Background(), "a@c.us", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Body)
}

func TestSendText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sendText", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"chatId": "a@c.us", "text": "hello", "session": "default"}, body)
		w.WriteHeader(http.StatusCreated)
	})
	require.NoError(t, c.SendText(context.Background(), "a@c.us", "hello"))
}

func TestFavorites(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "GET /api/favorites/default":
			_, _ = io.WriteString(w, `{"favorites":["a@c.us"]}`)
		case "GET /api/favorites/default/a@c.us/check":
			_, _ = io.WriteString(w, `{"isFavorite":true}`)
		case "POST /api/favorites/default/a@c.us", "DELETE /api/favorites/default/a@c.us":
			_, _ = io.WriteString(w, `{"success":true}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})
	ctx := context.Background()
	favs, err := c.ListFavorites(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@c.us"}, favs)
	ok, err := c.IsFavorite(ctx, "a@c.us")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, c.AddFavorite(ctx, "a@c.us"))
	require.NoError(t, c.RemoveFavorite(ctx, "a@c.us"))
}
