// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "wsim"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// AppBase is the per-user data directory.
func AppBase() string {
	return filepath.Join(XDGDataHome(), appName)
}

// DefaultLogDir returns the directory for session CSV logs.
func DefaultLogDir() string {
	return filepath.Join(AppBase(), "logs")
}

// DefaultDBPath returns the default path for the SQLite history database.
func DefaultDBPath() string {
	return filepath.Join(AppBase(), "history.db")
}

// DefaultDiagLogPath is where diagnostics go while a station UI owns the
// terminal.
func DefaultDiagLogPath() string {
	return filepath.Join(AppBase(), appName+".log")
}

// DefaultSoundsDir returns the directory holding the cue wav files.
func DefaultSoundsDir() string {
	return filepath.Join(AppBase(), "sounds")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}
