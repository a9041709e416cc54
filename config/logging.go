package config

import (
	"fmt"
	"strings"

	"github.com/kilianp07/loadshare/infra/logger"
)

// LoggingConfig defines the process log level and output format.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level"`
	// Format is "json" or "console". Empty picks console when APP_ENV=dev.
	Format string `json:"format"`
	// File optionally mirrors the log to a rotated JSON file.
	File string `json:"file"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.File != "" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %s", c.Level)
	}
	switch c.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown format %s", c.Format)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("rotation limits must not be negative")
	}
	return nil
}

// Options converts the section into logger options.
func (c LoggingConfig) Options() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	}
}
