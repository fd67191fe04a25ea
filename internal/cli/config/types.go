// Package config provides configuration management for the leapgrid CLI.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then LEAPGRID_ environment variables, then explicitly set CLI flags.
package config

import (
	"fmt"
	"log/slog"
)

// Config holds all CLI configuration options.
type Config struct {
	Addr        string `koanf:"addr"`
	LogLevel    string `koanf:"log_level"`
	LogFormat   string `koanf:"log_format"`
	Dataset     string `koanf:"dataset"`
	Watch       bool   `koanf:"watch"`
	Format      string `koanf:"format"`
	RowLimit    int    `koanf:"row_limit"`
	HistoryFile string `koanf:"history_file"`

	// Engine holds engine tuning params, decoded by the registry. Kept as
	// a raw map so engine knobs can be added without touching the CLI.
	Engine map[string]any `koanf:"engine"`

	// FileUsed records which config file was loaded, if any.
	FileUsed string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultAddr        = ":8321"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultFormat      = "table"
	DefaultRowLimit    = 100
	DefaultHistoryFile = ".leapgrid_history"
)

// Default returns a Config carrying the built-in defaults.
func Default() *Config {
	return &Config{
		Addr:        DefaultAddr,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		Format:      DefaultFormat,
		RowLimit:    DefaultRowLimit,
		HistoryFile: DefaultHistoryFile,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q, must be one of: text, json", c.LogFormat)
	}

	switch c.Format {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("invalid format %q, must be one of: table, json, csv", c.Format)
	}

	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.RowLimit < 0 {
		return fmt.Errorf("row_limit must not be negative, got %d", c.RowLimit)
	}

	return nil
}

// SlogLevel maps the configured log level onto a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
