package bridge

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyForwardsWithAPIKey(t *testing.T) {
	var gotPath, gotKey, gotQuery, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		gotQuery = r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()
	tb := newTestBridge(t, upstream.URL)

	resp, _ := postJSON(t, tb.srv.URL+"/api/sendText?x=1", `{"text":"hi"}`, nil)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/api/sendText", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "x=1", gotQuery)
	assert.Equal(t, `{"text":"hi"}`, gotBody)
}

func TestProxyOptionsPreflight(t *testing.T) {
	tb := newTestBridge(t, "")
	req, err := http.NewRequest(http.MethodOptions, tb.srv.URL+"/api/sessions", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestProxyQRIsPNG(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	defer upstream.Close()
	tb := newTestBridge(t, upstream.URL)

	resp, err := http.Get(tb.srv.URL + "/api/default/auth/qr")
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "\x89PNG", readAll(t, resp))
}

func TestProxyMissingFileIs404JSON(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer upstream.Close()
	tb := newTestBridge(t, upstream.URL)

	resp, err := http.Get(tb.srv.URL + "/api/files/abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"File not found"}`, readAll(t, resp))
}

func TestProxyPassesGatewayErrors(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"exists"}`))
	}))
	defer upstream.Close()
	tb := newTestBridge(t, upstream.URL)

	resp, _ := postJSON(t, tb.srv.URL+"/api/sessions", `{}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestProxyUnreachableGatewayIs502(t *testing.T) {
	tb := newTestBridge(t, "http://127.0.0.1:1")

	resp, err := http.Get(tb.srv.URL + "/api/sessions")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, readAll(t, resp), `"error"`)
}
