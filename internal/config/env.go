package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads a dotenv file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overlays environment variables onto cfg. lookup is usually
// os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("WAHA_SESSION", &cfg.DefaultSession)
	str("GATEWAY_URL", &cfg.Gateway.BaseURL)
	str("GATEWAY_WS_URL", &cfg.Gateway.WSURL)
	str("GATEWAY_API_KEY", &cfg.Gateway.APIKey)
	str("WAHA_URL", &cfg.Bridge.WAHAURL)
	str("WAHA_API_KEY", &cfg.Bridge.WAHAAPIKey)
	str("BACKEND_HOST", &cfg.Bridge.Host)
	str("WEBHOOK_SECRET", &cfg.Bridge.WebhookSecret)
	str("WEBHOOK_URL", &cfg.Session.WebhookURL)
	str("LOG_LEVEL", &cfg.Log.Level)

	if v, ok := lookup("BACKEND_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Bridge.Port = port
		}
	}
	if v, ok := lookup("WEBHOOK_ENABLE_HMAC"); ok {
		cfg.Bridge.WebhookHMAC = strings.EqualFold(v, "true") || v == "1"
	}
}
