package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autoedit.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())
	assert.True(t, config.ShouldValidate())
	assert.False(t, config.BusEnabled())
	assert.Equal(t, DefaultStoredTraces, config.Traces.StoredTraces)
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `version: "1.0"
domain: automation
document: /config/automations.yaml
validate_bodies: false
traces:
  database: /data/traces.db
  stored_traces: 20
redis:
  url: redis://localhost:6379/0
  instance: home
`)

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/config/automations.yaml", config.Document)
	assert.False(t, config.ShouldValidate())
	assert.Equal(t, 20, config.Traces.StoredTraces)
	assert.True(t, config.BusEnabled())
	assert.Equal(t, "home", config.Redis.Instance)
}

func TestLoad_KeepsDefaults(t *testing.T) {
	path := writeConfig(t, "version: \"1.0\"\ndocument: mine.yaml\n")

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mine.yaml", config.Document)
	assert.Equal(t, "automation", config.Domain)
	assert.Equal(t, "traces.db", config.Traces.Database)
	assert.Equal(t, DefaultStoredTraces, config.Traces.StoredTraces)
	assert.True(t, config.ShouldValidate())
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/autoedit.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "version: \"1.0\"\ntraces: [unclosed\n")

	config, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"wrong version", func(c *Config) { c.Version = "2.0" }, "unsupported version"},
		{"no domain", func(c *Config) { c.Domain = "" }, "domain is required"},
		{"no document", func(c *Config) { c.Document = "" }, "document is required"},
		{"no database", func(c *Config) { c.Traces.Database = "" }, "traces.database"},
		{"zero retention", func(c *Config) { c.Traces.StoredTraces = 0 }, "stored_traces"},
		{"redis without instance", func(c *Config) {
			c.Redis.URL = "redis://localhost:6379"
			c.Redis.Instance = ""
		}, "redis.instance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_InvalidConfiguration(t *testing.T) {
	path := writeConfig(t, "version: \"1.0\"\ntraces:\n  stored_traces: -1\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
