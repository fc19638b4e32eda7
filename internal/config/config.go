package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.waha/config.toml shared by all binaries.
type Config struct {
	DefaultSession string `toml:"default_session"`

	Gateway GatewayConfig `toml:"gateway"`
	Channel ChannelConfig `toml:"channel"`
	Session SessionConfig `toml:"session"`
	Bridge  BridgeConfig  `toml:"bridge"`
	Log     LogConfig     `toml:"log"`
}

// GatewayConfig points the client at the REST surface and the push channel.
// Both normally go through the bridge.
type GatewayConfig struct {
	BaseURL string   `toml:"base_url"`
	WSURL   string   `toml:"ws_url"`
	APIKey  string   `toml:"api_key"`
	Timeout Duration `toml:"timeout"`
}

// ChannelConfig tunes the push channel.
type ChannelConfig struct {
	ReconnectDelay Duration `toml:"reconnect_delay"`
}

// SessionConfig tunes session bootstrap and history loading.
type SessionConfig struct {
	QRSettleDelay Duration `toml:"qr_settle_delay"`
	MessageLimit  int      `toml:"message_limit"`
	WebhookURL    string   `toml:"webhook_url"`
}

// BridgeConfig configures wahabridge.
type BridgeConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	WAHAURL       string `toml:"waha_url"`
	WAHAAPIKey    string `toml:"waha_api_key"`
	WebhookSecret string `toml:"webhook_secret"`
	WebhookHMAC   bool   `toml:"webhook_hmac"`
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration that round-trips through TOML as "5s".
type Duration struct {
	time.Duration
}

// D wraps a time.Duration.
func D(d time.Duration) Duration { return Duration{d} }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DefaultSession: "default",
		Gateway: GatewayConfig{
			BaseURL: "http://localhost:8001/api",
			WSURL:   "ws://localhost:8001/ws",
			Timeout: D(30 * time.Second),
		},
		Channel: ChannelConfig{
			ReconnectDelay: D(5 * time.Second),
		},
		Session: SessionConfig{
			QRSettleDelay: D(2 * time.Second),
			MessageLimit:  40,
			WebhookURL:    "http://host.docker.internal:8001/webhook",
		},
		Bridge: BridgeConfig{
			Host:    "0.0.0.0",
			Port:    8001,
			WAHAURL: "http://localhost:3000",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads config from the given path on top of Default().
// Returns nil and error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load but treats a missing file as the default config.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
