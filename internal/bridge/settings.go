// Package bridge is the backend the client talks to: it proxies the
// gateway REST API, receives gateway webhooks and fans them out to
// WebSocket clients, and keeps per-session favorites.
package bridge

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/matheus3301/waha-client/internal/config"
)

// Settings holds the bridge values that can change while it runs.
type Settings struct {
	mu       sync.RWMutex
	upstream *url.URL
	apiKey   string
	secret   string
	hmac     bool
}

// NewSettings validates cfg and returns live settings.
func NewSettings(cfg config.BridgeConfig) (*Settings, error) {
	s := &Settings{}
	if err := s.Update(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Update swaps in a new configuration. The old one stays on error.
func (s *Settings) Update(cfg config.BridgeConfig) error {
	u, err := url.Parse(cfg.WAHAURL)
	if err != nil {
		return fmt.Errorf("parse waha url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("waha url %q: want http(s)://host[:port]", cfg.WAHAURL)
	}
	s.mu.Lock()
	s.upstream = u
	s.apiKey = cfg.WAHAAPIKey
	s.secret = cfg.WebhookSecret
	s.hmac = cfg.WebhookHMAC
	s.mu.Unlock()
	return nil
}

// Upstream returns the gateway base URL and API key.
func (s *Settings) Upstream() (*url.URL, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := *s.upstream
	return &u, s.apiKey
}

// WebhookAuth returns the HMAC secret and whether verification is on.
func (s *Settings) WebhookAuth() (secret string, enabled bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secret, s.hmac && s.secret != ""
}
