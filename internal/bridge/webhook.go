package bridge

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/bus"
)

const (
	hmacHeader     = "X-Webhook-Hmac"
	maxWebhookBody = 16 << 20

	eventSessionStatus = "session.status"
	eventReady         = "ready"
	eventAuthFailure   = "auth_failure"
)

// Delivery is one frame to fan out to WebSocket clients.
type Delivery struct {
	ID      string
	Event   string
	Session string
	Body    []byte
}

// WebhookHandler accepts gateway webhooks and republishes them on the bus
// as "webhook.<event>".
type WebhookHandler struct {
	settings *Settings
	bus      *bus.Bus
	logger   *zap.Logger
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(s *Settings, b *bus.Bus, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{settings: s, bus: b, logger: logger}
}

type webhookHead struct {
	Event   string `json:"event"`
	Session string `json:"session"`
	Payload struct {
		Status string `json:"status"`
	} `json:"payload"`
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		h.logger.Warn("webhook with wrong content type", zap.String("content_type", ct))
		writeError(w, http.StatusBadRequest, "Content-Type must be application/json")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}
	if secret, on := h.settings.WebhookAuth(); on && !validSignature(body, r.Header.Get(hmacHeader), secret) {
		h.logger.Warn("webhook signature mismatch")
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		writeError(w, http.StatusBadRequest, "Invalid JSON structure")
		return
	}

	var head webhookHead
	_ = json.Unmarshal(body, &head)
	if head.Event == "" {
		head.Event = chi.URLParam(r, "event")
	}
	if head.Event == "" {
		head.Event = "unknown"
	}
	if head.Session == "" {
		head.Session = "unknown"
	}
	h.logger.Info("webhook received", zap.String("event", head.Event), zap.String("session", head.Session))

	h.publish(head.Event, head.Session, body)
	if head.Event == eventSessionStatus {
		switch head.Payload.Status {
		case "WORKING":
			h.publishSynthetic(eventReady, head.Session)
		case "FAILED":
			h.publishSynthetic(eventAuthFailure, head.Session)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *WebhookHandler) publish(event, session string, body []byte) {
	h.bus.Emit(bus.KindWebhookPrefix+event, Delivery{
		ID:      uuid.NewString(),
		Event:   event,
		Session: session,
		Body:    body,
	})
}

// publishSynthetic emits a lifecycle event the client reacts to directly.
func (h *WebhookHandler) publishSynthetic(event, session string) {
	body, err := json.Marshal(map[string]string{"event": event, "session": session})
	if err != nil {
		h.logger.Error("encode synthetic event", zap.String("event", event), zap.Error(err))
		return
	}
	h.publish(event, session, body)
}

// Sign returns the hex HMAC-SHA512 of body, as sent in X-Webhook-Hmac.
func Sign(body []byte, secret string) string {
	return hex.EncodeToString(digest(body, secret))
}

func digest(body []byte, secret string) []byte {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

func validSignature(body []byte, got, secret string) bool {
	sig, err := hex.DecodeString(strings.TrimSpace(got))
	if err != nil {
		return false
	}
	return hmac.Equal(sig, digest(body, secret))
}
