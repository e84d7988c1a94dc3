// Package config loads the autoedit.yml configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultStoredTraces is the number of runs kept per automation.
const DefaultStoredTraces = 5

// Config represents the top-level autoedit.yml configuration
type Config struct {
	Version  string `yaml:"version"`
	Domain   string `yaml:"domain"`   // Domain of the edited records, used for reload calls and registry lookups
	Document string `yaml:"document"` // Path of the YAML document holding the records

	// ValidateBodies enables schema validation of request bodies (default: true)
	ValidateBodies *bool `yaml:"validate_bodies,omitempty"`

	Traces TracesConfig `yaml:"traces"`
	Redis  RedisConfig  `yaml:"redis"`
}

// TracesConfig specifies the trace store
type TracesConfig struct {
	Database     string `yaml:"database"`
	StoredTraces int    `yaml:"stored_traces"`
}

// RedisConfig specifies the service bus. An empty URL disables it.
type RedisConfig struct {
	URL      string `yaml:"url,omitempty"`
	Instance string `yaml:"instance"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	validate := true
	return &Config{
		Version:        "1.0",
		Domain:         "automation",
		Document:       "automations.yaml",
		ValidateBodies: &validate,
		Traces: TracesConfig{
			Database:     "traces.db",
			StoredTraces: DefaultStoredTraces,
		},
		Redis: RedisConfig{
			Instance: "default",
		},
	}
}

// ShouldValidate reports whether request bodies are schema-checked.
func (c *Config) ShouldValidate() bool {
	return c.ValidateBodies == nil || *c.ValidateBodies
}

// BusEnabled reports whether a Redis URL is configured.
func (c *Config) BusEnabled() bool {
	return c.Redis.URL != ""
}

// Validate performs strict validation on the configuration
func (c *Config) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}
	if c.Domain == "" {
		return fmt.Errorf("domain is required")
	}
	if c.Document == "" {
		return fmt.Errorf("document is required")
	}
	if c.Traces.Database == "" {
		return fmt.Errorf("traces.database is required")
	}
	if c.Traces.StoredTraces < 1 {
		return fmt.Errorf("traces.stored_traces must be at least 1, got %d", c.Traces.StoredTraces)
	}
	if c.BusEnabled() && c.Redis.Instance == "" {
		return fmt.Errorf("redis.instance is required when redis.url is set")
	}
	return nil
}

// Load reads a config file, filling unset fields from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}
