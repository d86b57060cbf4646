package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:8950", cfg.Gateway.BaseURL)
	assert.Equal(t, "/api/feed", cfg.Gateway.Endpoint)
	assert.Equal(t, 15*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, float64(10), cfg.Gateway.RequestsPerSecond)
	assert.Equal(t, 8950, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "campusfeed", cfg.Observability.ServiceName)
	assert.Empty(t, cfg.Session.UserID, "default session is signed out")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing base url", func(c *Config) { c.Gateway.BaseURL = "" }, "base_url"},
		{"bad timeout", func(c *Config) { c.Gateway.Timeout = -time.Second }, "timeout"},
		{"bad rate", func(c *Config) { c.Gateway.RequestsPerSecond = 0 }, "requests_per_second"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "port"},
		{"bad shutdown", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "shutdown_timeout"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "log format"},
		{"telemetry without name", func(c *Config) {
			c.Observability.EnableTelemetry = true
			c.Observability.ServiceName = ""
		}, "service_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
