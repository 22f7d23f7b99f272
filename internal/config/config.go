// Package config provides configuration management for graphio.
//
// Config file locations (priority order):
//  1. $GRAPHIO_CONFIG
//  2. ./graphio.yaml
//  3. $XDG_CONFIG_HOME/graphio/config.yaml
//  4. ~/.config/graphio/config.yaml
//  5. /etc/graphio/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultFormat       = "binary"
	defaultStorePath    = "./graphio.db"
	defaultProgressStep = 0.1
	defaultDebounce     = 500 * time.Millisecond
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Format:   defaultFormat,
		Envelope: EnvelopeConfig{Compression: "none"},
		Store:    StoreConfig{Path: defaultStorePath},
		Progress: ProgressConfig{Enabled: true, Step: defaultProgressStep},
		Watch:    WatchConfig{Debounce: Duration(defaultDebounce)},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Format == "" {
		c.Format = defaultFormat
	}
	if c.Envelope.Compression == "" {
		c.Envelope.Compression = "none"
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath
	}
	if c.Progress.Step <= 0 {
		c.Progress.Step = defaultProgressStep
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = Duration(defaultDebounce)
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	switch c.Envelope.Compression {
	case "none", "gzip", "zstd":
	default:
		return fmt.Errorf("unknown compression %q", c.Envelope.Compression)
	}
	if c.Progress.Step > 1 {
		return fmt.Errorf("progress step %v exceeds 1", c.Progress.Step)
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	sealed := "no"
	if c.Envelope.KeyFile != "" {
		sealed = "yes"
	}

	summary := fmt.Sprintf("Format: %s, Compression: %s, Sealed: %s\n",
		c.Format, c.Envelope.Compression, sealed)
	summary += fmt.Sprintf("Store: %s, Watch debounce: %s",
		c.Store.Path, c.Watch.Debounce.Duration())

	return summary
}
