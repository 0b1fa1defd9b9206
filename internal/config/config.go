// Package config reads and writes the data directory's config.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/backoffice/internal/collection"
	"github.com/user/backoffice/internal/model"
)

// FileName is the name of the config file inside the data dir.
const FileName = "config.json"

// Config holds workspace settings.
type Config struct {
	// LowStockThreshold is the threshold given to new items that don't set one.
	LowStockThreshold int `json:"low_stock_threshold"`
	// MutateStrategy is "resync" or "patch".
	MutateStrategy string `json:"mutate_strategy"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LowStockThreshold: model.DefaultThreshold,
		MutateStrategy:    string(collection.Resync),
		LogLevel:          "info",
	}
}

// Path returns the config path inside baseDir.
func Path(baseDir string) string {
	return filepath.Join(baseDir, FileName)
}

// Load reads config.json from baseDir. A missing file yields the defaults.
// Empty fields in the file are filled with defaults.
func Load(baseDir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(baseDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.MutateStrategy == "" {
		cfg.MutateStrategy = string(collection.Resync)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("invalid config: low_stock_threshold must not be negative")
	}
	if _, err := collection.ParseMutateStrategy(c.MutateStrategy); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Strategy returns the parsed mutate strategy.
func (c *Config) Strategy() collection.MutateStrategy {
	s, err := collection.ParseMutateStrategy(c.MutateStrategy)
	if err != nil {
		return collection.Resync
	}
	return s
}

// Save writes cfg to baseDir atomically via a temp file.
func Save(baseDir string, cfg *Config) error {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	tmpFile, err := os.CreateTemp(baseDir, "config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, Path(baseDir)); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// ParseLevel parses a log level name.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}
