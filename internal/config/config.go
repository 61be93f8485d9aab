// Package config loads country-explorer settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COUNTRY_EXPLORER_"

// Config holds all country-explorer settings.
type Config struct {
	// Data source
	BaseURL           string   `yaml:"base_url"`
	Fields            []string `yaml:"fields"`
	Timeout           string   `yaml:"timeout"` // e.g. "10s"; empty means no client timeout
	RequestsPerSecond float64  `yaml:"requests_per_second"`

	// Detail view
	BorderPolicy      string `yaml:"border_policy"` // all-or-nothing | partial
	BorderConcurrency int    `yaml:"border_concurrency"`

	// Gallery shown when no region is selected. Empty shows everything.
	InitialCountries []string `yaml:"initial_countries"`

	// Snapshot database used instead of the API when set.
	Snapshot string `yaml:"snapshot"`

	// Output
	Format    string `yaml:"format"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json | console
	LogFile   string `yaml:"log_file"`   // empty logs to stderr
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BorderPolicy: "all-or-nothing",
		InitialCountries: []string{
			"Germany",
			"United States",
			"Brazil",
			"Iceland",
			"Afghanistan",
			"Åland Islands",
			"Albania",
			"Algeria",
		},
		Format:    "text",
		LogLevel:  "warn",
		LogFormat: "console",
	}
}

// Dir returns ~/.country-explorer.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".country-explorer")
}

// DefaultPath returns $COUNTRY_EXPLORER_CONFIG or ~/.country-explorer/config.yaml.
func DefaultPath() string {
	if env := os.Getenv(EnvPrefix + "CONFIG"); env != "" {
		return env
	}
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the config file at path over the defaults. A missing file is
// only an error when required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from COUNTRY_EXPLORER_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	set(&c.BaseURL, "BASE_URL")
	set(&c.Timeout, "TIMEOUT")
	set(&c.BorderPolicy, "BORDER_POLICY")
	set(&c.Snapshot, "SNAPSHOT")
	set(&c.Format, "FORMAT")
	set(&c.LogLevel, "LOG_LEVEL")
	set(&c.LogFormat, "LOG_FORMAT")
	set(&c.LogFile, "LOG_FILE")
}

// TimeoutDuration parses Timeout. Empty yields zero.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: negative", c.Timeout)
	}
	return d, nil
}

// Validate checks the numeric settings.
func (c *Config) Validate() error {
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be >= 0, got %v", c.RequestsPerSecond)
	}
	if c.BorderConcurrency < 0 {
		return fmt.Errorf("border_concurrency must be >= 0, got %d", c.BorderConcurrency)
	}
	if len(c.Fields) > 10 {
		return fmt.Errorf("fields: at most 10 fields allowed, got %d", len(c.Fields))
	}
	_, err := c.TimeoutDuration()
	return err
}
