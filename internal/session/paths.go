package session

import (
	"os"
	"path/filepath"
)

// envHome overrides the base directory, mainly for tests and containers.
const envHome = "WAHA_CLIENT_HOME"

// BaseDir returns ~/.waha, or $WAHA_CLIENT_HOME when set.
func BaseDir() string {
	if dir := os.Getenv(envHome); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".waha")
}

// Dir returns the per-session directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sessions", name)
}

// HealthSocketPath returns the bridge's gRPC health socket for a session.
func HealthSocketPath(name string) string {
	return filepath.Join(Dir(name), "bridge.sock")
}

// ClientDBPath returns the client-side store holding the remembered identity.
func ClientDBPath(name string) string {
	return filepath.Join(Dir(name), "client.db")
}

// BridgeDBPath returns the bridge-side store holding favorites.
func BridgeDBPath(name string) string {
	return filepath.Join(Dir(name), "bridge.db")
}

// LogDir returns the log directory for a session.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the log file path for one of the binaries.
func LogPath(name, binary string) string {
	return filepath.Join(LogDir(name), binary+".log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnvPath returns the optional dotenv file next to the config.
func EnvPath() string {
	return filepath.Join(BaseDir(), ".env")
}

// EnsureDir creates the session directory tree with proper permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
