package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Format   string         `yaml:"format"` // default codec for stored snapshots
	Envelope EnvelopeConfig `yaml:"envelope"`
	Store    StoreConfig    `yaml:"store"`
	Progress ProgressConfig `yaml:"progress"`
	Watch    WatchConfig    `yaml:"watch"`
}

// EnvelopeConfig holds compression and sealing settings
type EnvelopeConfig struct {
	Compression string `yaml:"compression"`        // none, gzip, zstd
	KeyFile     string `yaml:"key_file,omitempty"` // path, never the key itself
}

// StoreConfig holds snapshot database settings
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ProgressConfig controls progress logging
type ProgressConfig struct {
	Enabled bool    `yaml:"enabled"`
	Step    float64 `yaml:"step"` // fraction between log lines, 0..1
}

// WatchConfig controls file watching
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
