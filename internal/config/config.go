package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support YAML unmarshalling from strings.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses duration strings like "5s" or "1m".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return fmt.Errorf("duration value node is nil")
	}
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("decode duration: %w", err)
	}
	if raw == "" {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = dur
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// EndpointConfig describes how to reach the XPA client programs and the
// display they address.
type EndpointConfig struct {
	// AccessPoint overrides the addressing template. When empty the
	// access point is resolved from the XPA_PORT environment variable,
	// falling back to "ds9".
	AccessPoint string   `yaml:"access_point,omitempty"`
	GetPath     string   `yaml:"get_path,omitempty"`
	SetPath     string   `yaml:"set_path,omitempty"`
	Timeout     Duration `yaml:"timeout,omitempty"`
}

// LokiConfig configures optional Loki integration for logging.
type LokiConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Labels  map[string]string `yaml:"labels"`
}

// LoggingConfig encapsulates runtime logging options.
type LoggingConfig struct {
	Level  string     `yaml:"level"`
	Format string     `yaml:"format"`
	Loki   LokiConfig `yaml:"loki"`
}

// TelemetryConfig enables metric collection.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider,omitempty"`
}

// LaunchConfig controls starting a local ds9 when none is reachable.
type LaunchConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Binary   string   `yaml:"binary,omitempty"`
	Attempts int      `yaml:"attempts,omitempty"`
	Interval Duration `yaml:"interval,omitempty"`
}

// Config is the root configuration structure for the client.
type Config struct {
	Endpoint  EndpointConfig  `yaml:"endpoint"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Launch    LaunchConfig    `yaml:"launch"`
}

// Load reads and decodes the configuration file from disk.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Endpoint.Timeout.Duration < 0 {
		return fmt.Errorf("endpoint timeout must not be negative")
	}
	if c.Launch.Attempts < 0 {
		return fmt.Errorf("launch attempts must not be negative")
	}
	if c.Logging.Loki.Enabled && c.Logging.Loki.URL == "" {
		return fmt.Errorf("loki url is required when loki is enabled")
	}
	return nil
}

// LaunchAttempts returns the configured launch retry count.
func (c *Config) LaunchAttempts() int {
	if c == nil || c.Launch.Attempts <= 0 {
		return 10
	}
	return c.Launch.Attempts
}

// LaunchInterval returns the delay between launch retries.
func (c *Config) LaunchInterval() time.Duration {
	if c == nil || c.Launch.Interval.Duration <= 0 {
		return 500 * time.Millisecond
	}
	return c.Launch.Interval.Duration
}
