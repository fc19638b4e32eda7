package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.DefaultSession = "work"
	cfg.Channel.ReconnectDelay = D(7 * time.Second)
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultSession != "work" {
		t.Errorf("DefaultSession = %q, want %q", loaded.DefaultSession, "work")
	}
	if loaded.Channel.ReconnectDelay.Duration != 7*time.Second {
		t.Errorf("ReconnectDelay = %v, want 7s", loaded.Channel.ReconnectDelay)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_session = \"x\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Session.MessageLimit != 40 {
		t.Errorf("MessageLimit = %d, want 40", cfg.Session.MessageLimit)
	}
	if cfg.Session.QRSettleDelay.Duration != 2*time.Second {
		t.Errorf("QRSettleDelay = %v, want 2s", cfg.Session.QRSettleDelay)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := LoadOrDefault("/nonexistent/config.toml")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.DefaultSession != "default" {
		t.Errorf("DefaultSession = %q, want default", cfg.DefaultSession)
	}
}

func TestLoadMalformedDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[channel]\nreconnect_delay = \"soon\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrDefault(path); err == nil {
		t.Error("expected error for malformed duration")
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"WAHA_URL":            "http://waha:3000",
		"WAHA_API_KEY":        "secret",
		"BACKEND_PORT":        "9000",
		"WEBHOOK_ENABLE_HMAC": "true",
		"GATEWAY_URL":         "http://bridge/api",
		"BACKEND_HOST":        "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	ApplyEnv(cfg, lookup)

	if cfg.Bridge.WAHAURL != "http://waha:3000" {
		t.Errorf("WAHAURL = %q", cfg.Bridge.WAHAURL)
	}
	if cfg.Bridge.WAHAAPIKey != "secret" {
		t.Errorf("WAHAAPIKey = %q", cfg.Bridge.WAHAAPIKey)
	}
	if cfg.Bridge.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Bridge.Port)
	}
	if !cfg.Bridge.WebhookHMAC {
		t.Error("WebhookHMAC = false, want true")
	}
	if cfg.Gateway.BaseURL != "http://bridge/api" {
		t.Errorf("BaseURL = %q", cfg.Gateway.BaseURL)
	}
	// Empty values keep the default.
	if cfg.Bridge.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want default", cfg.Bridge.Host)
	}
}

func TestApplyEnvIgnoresBadPort(t *testing.T) {
	cfg := Default()
	ApplyEnv(cfg, func(k string) (string, bool) {
		if k == "BACKEND_PORT" {
			return "eighty", true
		}
		return "", false
	})
	if cfg.Bridge.Port != 8001 {
		t.Errorf("Port = %d, want 8001", cfg.Bridge.Port)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadEnvFile(missing) error = %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("WAHA_CLIENT_TEST_VAR=hello\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("WAHA_CLIENT_TEST_VAR") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("WAHA_CLIENT_TEST_VAR"); got != "hello" {
		t.Errorf("env = %q, want hello", got)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(c *Config) { changed <- c })
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	cfg := Default()
	cfg.Bridge.WebhookSecret = "rotated"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-changed:
		if c.Bridge.WebhookSecret != "rotated" {
			t.Errorf("WebhookSecret = %q, want rotated", c.Bridge.WebhookSecret)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}
