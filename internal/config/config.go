// Package config provides configuration loading for campusfeed.
//
// Configuration comes from a YAML file overridden by environment variables.
// The session section stands in for the web app's cookie-based auth: the
// terminal client acts as whatever user the config names.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete campusfeed configuration.
type Config struct {
	Gateway       GatewayConfig       `koanf:"gateway"`
	Session       SessionConfig       `koanf:"session"`
	Server        ServerConfig        `koanf:"server"`
	Logging       LoggingConfig       `koanf:"logging"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// GatewayConfig holds the backend RPC client settings.
type GatewayConfig struct {
	BaseURL           string        `koanf:"base_url"`
	Endpoint          string        `koanf:"endpoint"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// SessionConfig identifies the acting user. An empty user id is a valid
// signed-out session: browsing works, mutations no-op.
type SessionConfig struct {
	UserID   string `koanf:"user_id"`
	UserName string `koanf:"user_name"`
}

// ServerConfig holds the dev gateway's listen settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Endpoint        string        `koanf:"endpoint"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Seed            bool          `koanf:"seed"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ObservabilityConfig holds OpenTelemetry configuration.
type ObservabilityConfig struct {
	EnableTelemetry bool   `koanf:"enable_telemetry"`
	ServiceName     string `koanf:"service_name"`
	OTLPEndpoint    string `koanf:"otlp_endpoint"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		return errors.New("gateway base_url is required")
	}
	if c.Gateway.Timeout <= 0 {
		return errors.New("gateway timeout must be positive")
	}
	if c.Gateway.RequestsPerSecond <= 0 {
		return errors.New("gateway requests_per_second must be positive")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server shutdown_timeout must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("observability service_name is required when telemetry is enabled")
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = "http://localhost:8950"
	}
	if cfg.Gateway.Endpoint == "" {
		cfg.Gateway.Endpoint = "/api/feed"
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = 15 * time.Second
	}
	if cfg.Gateway.RequestsPerSecond == 0 {
		cfg.Gateway.RequestsPerSecond = 10
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8950
	}
	if cfg.Server.Endpoint == "" {
		cfg.Server.Endpoint = "/api/feed"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "campusfeed"
	}
	if cfg.Observability.OTLPEndpoint == "" {
		cfg.Observability.OTLPEndpoint = "localhost:4317"
	}
}

// Default returns the configuration with every default applied, for callers
// that skip file loading.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}
