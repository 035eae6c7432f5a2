// Package config provides configuration loading and management for minkowski3d.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Table store kinds
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreNone   = "none"
)

// Table build policies
const (
	BuildAsk    = "ask"
	BuildAlways = "always"
	BuildNever  = "never"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Lookup table parameters
	Table struct {
		// Store selects where the lookup table is kept: file, sqlite or none
		Store string `yaml:"store"`

		// Path is the table file, or the database file for the sqlite store
		Path string `yaml:"path"`

		// Build decides what happens when no stored table exists: ask, always or never
		Build string `yaml:"build"`
	} `yaml:"table"`

	// Processing parameters
	Processing struct {
		// Workers is how many volumes are measured concurrently
		Workers int `yaml:"workers"`

		// Threshold is the grey level in [0,1] at or above which a slice pixel is foreground
		Threshold float64 `yaml:"threshold"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// ReportPath is where the YAML report is written; empty disables it
		ReportPath string `yaml:"reportPath"`

		// Database is the SQLite file measurements are logged to; empty disables it
		Database string `yaml:"database"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Table.Store = StoreFile
	cfg.Table.Path = "lookup_table.mklt"
	cfg.Table.Build = BuildAsk

	cfg.Processing.Workers = runtime.NumCPU()
	cfg.Processing.Threshold = 0.5

	cfg.Output.Verbose = true

	return cfg
}

// Validate checks that enumerated settings hold known values
func (c *Config) Validate() error {
	switch c.Table.Store {
	case StoreFile, StoreSQLite, StoreNone:
	default:
		return fmt.Errorf("unknown table store %q", c.Table.Store)
	}
	switch c.Table.Build {
	case BuildAsk, BuildAlways, BuildNever:
	default:
		return fmt.Errorf("unknown build policy %q", c.Table.Build)
	}
	if c.Table.Store != StoreNone && c.Table.Path == "" {
		return fmt.Errorf("table store %q needs a path", c.Table.Store)
	}
	if c.Processing.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Processing.Workers)
	}
	if c.Processing.Threshold < 0 || c.Processing.Threshold > 1 {
		return fmt.Errorf("threshold %.3f outside [0,1]", c.Processing.Threshold)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
