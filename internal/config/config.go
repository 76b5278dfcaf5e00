// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"factory-graph/core/types"
	"factory-graph/internal/errors"
	"factory-graph/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Defaults contains values applied to items that omit them
	Defaults DefaultsConfig `json:"defaults"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Batch contains multi-file evaluation settings
	Batch BatchConfig `json:"batch"`

	// History contains report history settings
	History HistoryConfig `json:"history"`

	// Server contains HTTP server settings
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// DefaultsConfig contains per-item defaults
type DefaultsConfig struct {
	// Storage is the capacity given to items declared without one
	Storage int64 `json:"storage"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// ShowInputs lists each item's inputs in the report
	ShowInputs bool `json:"show_inputs"`

	// Precision is the number of decimal places printed for money values
	Precision int32 `json:"precision"`
}

// BatchConfig contains batch evaluation settings
type BatchConfig struct {
	// MaxConcurrency bounds how many graph files are evaluated at once
	MaxConcurrency int `json:"max_concurrency"`
}

// HistoryConfig selects where saved reports are kept
type HistoryConfig struct {
	// Backend is "file" or "memory"
	Backend string `json:"backend"`

	// Path is the directory of the file backend
	Path string `json:"path"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// MaxBodyBytes caps the size of a submitted definition
	MaxBodyBytes int64 `json:"max_body_bytes"`
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".factory-graph.json")
}

// DefaultHistoryPath returns the default report history directory
func DefaultHistoryPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".factory-graph", "history")
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Defaults: DefaultsConfig{
			Storage: types.DefaultStorage,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowInputs:    false,
			Precision:     2,
		},
		Batch: BatchConfig{
			MaxConcurrency: 4,
		},
		History: HistoryConfig{
			Backend: "file",
			Path:    DefaultHistoryPath(),
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 1 << 20,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Validate checks the configuration for values the engine cannot use
func (c *Config) Validate() error {
	if c.Defaults.Storage < 1 {
		return errors.Config("defaults.storage must be at least 1")
	}
	if c.Batch.MaxConcurrency < 1 {
		return errors.Config("batch.max_concurrency must be at least 1")
	}
	if c.History.Backend != "file" && c.History.Backend != "memory" {
		return errors.Config("history.backend must be file or memory")
	}
	if c.Server.MaxBodyBytes < 1 {
		return errors.Config("server.max_body_bytes must be at least 1")
	}
	if c.Output.Precision < 0 {
		return errors.Config("output.precision can't be negative")
	}
	return c.Logging.Validate()
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "invalid config file "+path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
