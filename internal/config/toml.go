// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Observer ObserverConfig `toml:"observer"`
	User     UserConfig     `toml:"user"`
}

// ObserverConfig maps Observer station settings.
type ObserverConfig struct {
	Scenario      *string `toml:"scenario"`
	Port          *int    `toml:"port"`
	DiscoveryPort *int    `toml:"discovery-port"`
	BroadcastAddr *string `toml:"broadcast-addr"`
	LogDir        *string `toml:"log-dir"`
	Watch         *bool   `toml:"watch"`
	NoBroadcast   *bool   `toml:"no-broadcast"`
}

// UserConfig maps User station settings.
type UserConfig struct {
	Connect       *string `toml:"connect"`
	DiscoveryPort *int    `toml:"discovery-port"`
	Seed          *int64  `toml:"seed"`
	SoundsDir     *string `toml:"sounds-dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
