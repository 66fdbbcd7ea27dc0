// Package config loads riff settings from ~/.config/riff/config.toml and
// RIFF_* environment variables. Environment values win over the file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all client settings.
type Config struct {
	DBPath string `toml:"db"`
	Alert  bool   `toml:"alert"`
	Mirror Mirror `toml:"mirror"`
	Log    Log    `toml:"log"`
}

type Mirror struct {
	Enabled         bool   `toml:"enabled"`
	URL             string `toml:"url"`
	ProbeIntervalMs int    `toml:"probe-interval-ms"`
	TimeoutMs       int    `toml:"timeout-ms"`
}

type Log struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level"`
	// File receives log output. Empty means stderr.
	File string `toml:"file"`
}

// DefaultConfig returns the settings used when nothing is configured.
// Mirroring is disabled by default.
func DefaultConfig() Config {
	return Config{
		DBPath: defaultDBPath(),
		Alert:  true,
		Mirror: Mirror{
			Enabled:         false,
			URL:             "http://localhost:8080",
			ProbeIntervalMs: 5000,
			TimeoutMs:       10000,
		},
		Log: Log{Level: "warn"},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "riff.db"
	}
	return filepath.Join(home, ".riff", "riff.db")
}

// Path returns the location of the global config file.
func Path() (string, error) {
	if v := os.Getenv("RIFF_CONFIG"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "riff", "config.toml"), nil
}

// Load reads the config file, if any, over the defaults and then applies
// environment overrides.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// LoadFile decodes path over DefaultConfig. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	cfg.DBPath = expandHome(strings.TrimSpace(cfg.DBPath))
	cfg.Log.File = expandHome(strings.TrimSpace(cfg.Log.File))
	return cfg, nil
}

// ApplyEnv overrides cfg with any RIFF_* variables that are set and valid.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("RIFF_DB"); v != "" {
		cfg.DBPath = expandHome(v)
	}
	if v := os.Getenv("RIFF_ALERT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Alert = b
		}
	}
	if v := os.Getenv("RIFF_MIRROR_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Mirror.Enabled = b
		}
	}
	if v := os.Getenv("RIFF_MIRROR_URL"); v != "" {
		cfg.Mirror.URL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("RIFF_PROBE_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Mirror.ProbeIntervalMs = n
		}
	}
	if v := os.Getenv("RIFF_MIRROR_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Mirror.TimeoutMs = n
		}
	}
	if v := os.Getenv("RIFF_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("RIFF_LOG_FILE"); v != "" {
		cfg.Log.File = expandHome(v)
	}
}

func (m Mirror) ProbeInterval() time.Duration {
	return time.Duration(m.ProbeIntervalMs) * time.Millisecond
}

func (m Mirror) Timeout() time.Duration {
	return time.Duration(m.TimeoutMs) * time.Millisecond
}

// SlogLevel maps the configured level name; unknown names mean warn.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
