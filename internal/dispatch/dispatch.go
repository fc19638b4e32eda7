// Package dispatch routes push-channel envelopes to typed handlers.
package dispatch

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/model"
)

// Event names, exact as they appear on the wire.
const (
	EventAuthFailure = "auth_failure"
	EventQR          = "qr"
	EventReady       = "ready"
	EventMessage     = "message"
	EventMessageAny  = "message.any"
	EventMessageAck  = "message.ack"
	EventChatUpdate  = "chat.update"
)

// Envelope is one inbound frame: {"event": ..., "payload": ..., "qr": ...}.
type Envelope struct {
	Event   string          `json:"event"`
	Session string          `json:"session,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	QR      string          `json:"qr,omitempty"`
}

// Parse decodes a frame. Frames without an event name are rejected.
func Parse(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("parse envelope: missing event")
	}
	return env, nil
}

// Handlers is the callback set shared by the channel and the dispatcher.
// Nil callbacks are skipped.
type Handlers struct {
	OnOpen  func()
	OnClose func()
	OnError func(error)

	OnAuthFailure func()
	OnQR          func(code string)
	OnReady       func()
	OnMessage     func(model.Message)
	OnMessageAck  func(model.AckEvent)
	OnChatUpdate  func(model.Chat)
}

// Dispatch invokes the handler matching env.Event. Unknown events and
// undecodable payloads are logged and dropped. It never panics; a panicking
// handler is logged.
func Dispatch(env Envelope, h Handlers, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event handler panicked", zap.String("event", env.Event), zap.Any("panic", r))
		}
	}()

	switch env.Event {
	case EventAuthFailure:
		if h.OnAuthFailure != nil {
			h.OnAuthFailure()
		}
	case EventQR:
		if h.OnQR != nil {
			h.OnQR(qrCode(env))
		}
	case EventReady:
		if h.OnReady != nil {
			h.OnReady()
		}
	case EventMessage, EventMessageAny:
		m, err := model.DecodeMessage(payload(env))
		if err != nil {
			logger.Warn("drop message event", zap.String("event", env.Event), zap.Error(err))
			return
		}
		if h.OnMessage != nil {
			h.OnMessage(m)
		}
	case EventMessageAck:
		a, err := model.DecodeAck(payload(env))
		if err != nil {
			logger.Warn("drop ack event", zap.Error(err))
			return
		}
		if h.OnMessageAck != nil {
			h.OnMessageAck(a)
		}
	case EventChatUpdate:
		// The chat list is refetched in full; the payload is informative only.
		c, err := model.DecodeChat(payload(env))
		if err != nil {
			logger.Debug("chat.update without usable chat", zap.Error(err))
		}
		if h.OnChatUpdate != nil {
			h.OnChatUpdate(c)
		}
	default:
		logger.Debug("ignore unknown event", zap.String("event", env.Event))
	}
}

func payload(env Envelope) []byte {
	if len(bytes.TrimSpace(env.Payload)) == 0 {
		return []byte("{}")
	}
	return env.Payload
}

// qrCode reads the top-level qr field, falling back to payload.qr or a
// string payload.
func qrCode(env Envelope) string {
	if env.QR != "" {
		return env.QR
	}
	p := bytes.TrimSpace(env.Payload)
	if len(p) == 0 {
		return ""
	}
	var s string
	if p[0] == '"' && json.Unmarshal(p, &s) == nil {
		return s
	}
	var obj struct {
		QR string `json:"qr"`
	}
	if json.Unmarshal(p, &obj) == nil {
		return obj.QR
	}
	return ""
}
