package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Engine string  `koanf:"engine"` // "beep" or "mpv"
	Volume float64 `koanf:"volume"` // initial volume, 0.0-1.0
	Loop   bool    `koanf:"loop"`
	MPRIS  bool    `koanf:"mpris"` // expose player controls over D-Bus (linux)

	MPV MPVConfig `koanf:"mpv"`
	Log LogConfig `koanf:"log"`
}

// MPVConfig holds mpv backend options.
type MPVConfig struct {
	Video bool `koanf:"video"` // keep video output enabled
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `koanf:"level"` // debug, info, warn, error
	File       string `koanf:"file"`  // empty means state-dir default
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

func Load() (*Config, error) {
	return LoadFrom(configPaths()...)
}

// LoadFrom merges the given config files in order (last wins) over the
// built-in defaults. Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Engine: "beep",
		Volume: 1.0,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configPaths() []string {
	paths := []string{}

	// 1. ~/.config/avbridge/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "avbridge", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}
