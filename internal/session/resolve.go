package session

import (
	"fmt"
	"os"

	"github.com/matheus3301/waha-client/internal/config"
)

// DefaultSessionName is the gateway session used when nothing else is configured.
const DefaultSessionName = "default"

// Resolve determines the active session name using precedence:
// 1. flagOverride (--session flag)
// 2. cfg.DefaultSession (WAHA_SESSION, then config.toml default_session)
// 3. "default"
func Resolve(flagOverride string, cfg *config.Config) string {
	if flagOverride != "" {
		return flagOverride
	}
	if cfg != nil && cfg.DefaultSession != "" {
		return cfg.DefaultSession
	}
	return DefaultSessionName
}

// Load prepares a binary's configuration: the shared .env file is loaded
// into the environment, config.toml is read (missing means defaults) and
// environment variables are overlaid. The session name follows Resolve's
// precedence, with WAHA_SESSION overriding the file, and is validated.
func Load(flagOverride string) (*config.Config, string, error) {
	if err := config.LoadEnvFile(EnvPath()); err != nil {
		return nil, "", fmt.Errorf("load %s: %w", EnvPath(), err)
	}
	cfg, err := config.LoadOrDefault(ConfigPath())
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", ConfigPath(), err)
	}
	config.ApplyEnv(cfg, os.LookupEnv)

	name := Resolve(flagOverride, cfg)
	if err := ValidateName(name); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}
