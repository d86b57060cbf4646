package main

import (
	"context"
	"fmt"
	"time"

	"github.com/campuslink/campusfeed/internal/config"
	"github.com/campuslink/campusfeed/internal/gateway"
	"github.com/campuslink/campusfeed/internal/logging"
	"github.com/campuslink/campusfeed/internal/telemetry"
)

const shutdownGrace = 5 * time.Second

// app carries the wired dependencies every command needs: config, logger,
// telemetry and the gateway client.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	tel    *telemetry.Telemetry
	client gateway.Client
	userID string
}

// newApp loads configuration and wires the shared stack. The --user flag
// overrides the configured session user.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetryConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := gateway.NewHTTPClient(&gateway.Config{
		BaseURL:           cfg.Gateway.BaseURL,
		Endpoint:          cfg.Gateway.Endpoint,
		Timeout:           cfg.Gateway.Timeout,
		RequestsPerSecond: cfg.Gateway.RequestsPerSecond,
	}, logger.Underlying())
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create gateway client: %w", err)
	}

	uid := cfg.Session.UserID
	if userID != "" {
		uid = userID
	}

	return &app{cfg: cfg, logger: logger, tel: tel, client: client, userID: uid}, nil
}

// Close flushes the logger and telemetry pipelines.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	_ = a.logger.Sync()
	_ = a.tel.Shutdown(ctx)
}

// userName resolves the display name for the acting user.
func (a *app) userName() string {
	if userID != "" && userID != a.cfg.Session.UserID {
		return ""
	}
	return a.cfg.Session.UserName
}

func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	logCfg := logging.NewDefaultConfig()
	logCfg.Level = level
	logCfg.Format = cfg.Logging.Format
	return logging.NewLogger(logCfg, nil)
}

func telemetryConfig(cfg *config.Config) *telemetry.Config {
	telCfg := telemetry.NewDefaultConfig()
	telCfg.Enabled = cfg.Observability.EnableTelemetry
	if cfg.Observability.ServiceName != "" {
		telCfg.ServiceName = cfg.Observability.ServiceName
	}
	if cfg.Observability.OTLPEndpoint != "" {
		telCfg.Endpoint = cfg.Observability.OTLPEndpoint
	}
	return telCfg
}
