package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/matheus3301/waha-client/internal/model"
	"github.com/matheus3301/waha-client/internal/status"
)

// Webhook events requested when a session is first created.
var CreateEvents = []string{"message", "session.status"}

// Webhook events requested when an existing session is reconfigured.
var UpdateEvents = []string{"message.any", "message.ack", "session.status"}

// Webhook is one gateway webhook subscription.
type Webhook struct {
	URL    string       `json:"url"`
	Events []string     `json:"events"`
	HMAC   *WebhookHMAC `json:"hmac"`
}

// WebhookHMAC asks the gateway to sign webhook bodies.
type WebhookHMAC struct {
	Key string `json:"key"`
}

// SessionConfig is the mutable part of a gateway session.
type SessionConfig struct {
	Metadata map[string]string `json:"metadata,omitempty"`
	Debug    bool              `json:"debug"`
	Noweb    *NowebConfig      `json:"noweb,omitempty"`
	Webhooks []Webhook         `json:"webhooks,omitempty"`
}

// NowebConfig enables the gateway-side store the chats overview relies on.
type NowebConfig struct {
	Store struct {
		Enabled  bool `json:"enabled"`
		FullSync bool `json:"fullSync"`
	} `json:"store"`
}

// CreateSessionRequest is the POST /sessions body.
type CreateSessionRequest struct {
	Name   string        `json:"name"`
	Start  bool          `json:"start"`
	Config SessionConfig `json:"config"`
}

// WebhookTarget is where the gateway should deliver events.
type WebhookTarget struct {
	URL    string
	Secret string // empty disables signing
}

func (t WebhookTarget) hooks(events []string) []Webhook {
	if t.URL == "" {
		return nil
	}
	h := Webhook{URL: t.URL, Events: events}
	if t.Secret != "" {
		h.HMAC = &WebhookHMAC{Key: t.Secret}
	}
	return []Webhook{h}
}

// NewCreateSessionRequest builds the creation payload: the session starts
// immediately, remembers identity as user.id and delivers webhooks to target.
func NewCreateSessionRequest(name, identity string, target WebhookTarget) CreateSessionRequest {
	if identity == "" {
		identity = "terminal"
	}
	noweb := &NowebConfig{}
	noweb.Store.Enabled = true
	return CreateSessionRequest{
		Name:  name,
		Start: true,
		Config: SessionConfig{
			Metadata: map[string]string{"user.id": identity, "user.email": ""},
			Noweb:    noweb,
			Webhooks: target.hooks(CreateEvents),
		},
	}
}

// WebhookConfig builds the reconfiguration payload for an existing session.
func WebhookConfig(target WebhookTarget) SessionConfig {
	return SessionConfig{Webhooks: target.hooks(UpdateEvents)}
}

func (c *Client) sessionPath(suffix string) string {
	return "/sessions/" + url.PathEscape(c.session) + suffix
}

// ListSessions returns every session known to the gateway.
func (c *Client) ListSessions(ctx context.Context) ([]status.Info, error) {
	var out []status.Info
	if err := c.Get(ctx, "/sessions?all=true", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSession returns the bound session. A missing session yields a 404
// *RequestError; callers decide how to normalize it.
func (c *Client) GetSession(ctx context.Context) (status.Info, error) {
	var out status.Info
	if err := c.Get(ctx, c.sessionPath(""), &out); err != nil {
		return status.Info{}, err
	}
	if out.Name == "" {
		out.Name = c.session
	}
	return out, nil
}

// CreateSession creates and starts the bound session, tagging it with identity.
func (c *Client) CreateSession(ctx context.Context, identity string) error {
	return c.Post(ctx, "/sessions", NewCreateSessionRequest(c.session, identity, c.webhook), nil)
}

// ConfigureWebhooks points an existing session's webhooks at the client's target.
func (c *Client) ConfigureWebhooks(ctx context.Context) error {
	return c.UpdateSession(ctx, WebhookConfig(c.webhook))
}

// UpdateSession replaces the bound session's config.
func (c *Client) UpdateSession(ctx context.Context, cfg SessionConfig) error {
	return c.Put(ctx, c.sessionPath(""), map[string]any{"config": cfg}, nil)
}

// StartSession starts the bound session.
func (c *Client) StartSession(ctx context.Context) error {
	return c.Post(ctx, c.sessionPath("/start"), nil, nil)
}

// StopSession stops the bound session.
func (c *Client) StopSession(ctx context.Context) error {
	return c.Post(ctx, c.sessionPath("/stop"), nil, nil)
}

// LogoutSession unpairs the bound session.
func (c *Client) LogoutSession(ctx context.Context) error {
	return c.Post(ctx, c.sessionPath("/logout"), nil, nil)
}

// DeleteSession removes the bound session.
func (c *Client) DeleteSession(ctx context.Context) error {
	return c.Delete(ctx, c.sessionPath(""), nil)
}

// QR fetches the pairing QR as an image.
func (c *Client) QR(ctx context.Context) (model.QRImage, error) {
	path := "/" + url.PathEscape(c.session) + "/auth/qr"
	data, ctype, err := c.roundTripAccept(ctx, path, "image/png")
	if err != nil {
		return model.QRImage{}, err
	}
	if len(data) == 0 {
		return model.QRImage{}, &RequestError{Method: http.MethodGet, Path: path,
			StatusCode: http.StatusOK, Message: "empty QR response"}
	}
	if ctype == "" || strings.HasPrefix(ctype, "application/octet-stream") {
		ctype = http.DetectContentType(data)
	}
	return model.QRImage{Data: data, MimeType: ctype}, nil
}

func (c *Client) roundTripAccept(ctx context.Context, path, accept string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, "", fmt.Errorf("build GET %s: %w", path, err)
	}
	req.Header.Set("Accept", accept)
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	return c.send(req, path)
}
