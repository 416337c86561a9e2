// Package paths resolves configuration and data directory locations.
// The data directory is per-user and outside any application bundle, so
// the database survives reinstalls.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "STOCKROOM_CONFIG_DIR"
	EnvDataDir   = "STOCKROOM_DATA_DIR"
)

const appDirName = "stockroom"

// platformDir holds platform-detection functions that can be overridden in
// tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration
// directory.
//
// Linux:   $XDG_CONFIG_HOME/stockroom (fallback ~/.config/stockroom)
// macOS:   ~/Library/Application Support/stockroom
// Windows: %APPDATA%/stockroom
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appDirName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/stockroom (fallback ~/.local/share/stockroom)
// macOS:   ~/Library/Application Support/stockroom
// Windows: %APPDATA%/stockroom
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", appDirName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
}

// ResolveConfigDir returns the configuration directory, preferring the
// flag value, then the environment override, then the platform default.
func ResolveConfigDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(EnvConfigDir); v != "" {
		return v, nil
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory, preferring the flag value,
// then the value from config.yaml, then the environment override, then the
// platform default.
func ResolveDataDir(flagValue, configValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if configValue != "" {
		return configValue, nil
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		return v, nil
	}
	return DefaultDataDir()
}
