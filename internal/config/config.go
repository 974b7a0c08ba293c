// Package config handles application configuration and environment loading.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults applied when the environment leaves a setting unset.
const (
	DefaultDBPath       = "wrangler.sqlite"
	DefaultReadPoolSize = 4
)

// Config holds the runtime configuration.
type Config struct {
	DBPath       string // path to the SQLite catalog file
	ReadPoolSize int    // read pool connection cap (default 4)
	LogLevel     string // log level: debug, info, warn, error (default "info")
	LogFormat    string // "text" (default) or "json"
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// JSONLogs returns true when structured JSON log output is configured.
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.LogFormat, "json")
}

// LoadFromEnv loads configuration from environment variables, reading a
// .env file first when one exists in the working directory.
func LoadFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{
		DBPath:       os.Getenv("WRANGLER_DB_PATH"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		LogFormat:    os.Getenv("LOG_FORMAT"),
		ReadPoolSize: DefaultReadPoolSize,
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}
	if v := os.Getenv("WRANGLER_READ_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReadPoolSize = n
		}
	}
	return cfg, nil
}

// NewLogger builds the process-wide slog.Logger from the configuration.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.JSONLogs() {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
