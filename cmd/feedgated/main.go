// Feedgated is the development gateway for the campus feed client.
//
// It serves the feed RPC over HTTP backed by an in-memory store, speaking
// the same envelope the production backend does. It exists for local
// development and integration tests; nothing it stores survives a restart.
//
// Usage:
//
//	# Start with seed data on the default port
//	feedgated
//
//	# Configure via environment
//	SERVER_PORT=8960 SERVER_SEED=false feedgated
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/campuslink/campusfeed/internal/config"
	"github.com/campuslink/campusfeed/internal/feedgate"
	"github.com/campuslink/campusfeed/internal/logging"
	"github.com/campuslink/campusfeed/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath = flag.String("config", "", "config file (default ~/.config/campusfeed/config.yaml)")

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  feedgated           Start the development gateway\n")
			fmt.Fprintf(os.Stderr, "  feedgated version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("feedgated by CampusLink\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the gateway and blocks until the context is cancelled.
func run(ctx context.Context) error {
	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	tel, err := telemetry.New(ctx, telemetryConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutCtx, shutCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutCancel()
		_ = tel.Shutdown(shutCtx)
	}()

	store := feedgate.NewStore()
	if cfg.Server.Seed {
		store.Seed()
		logger.Info(ctx, "seeded demo data")
	}

	srv, err := feedgate.NewServer(store, logger.Underlying(), &feedgate.Config{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		Endpoint: cfg.Server.Endpoint,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info(ctx, "starting feedgated",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("endpoint", cfg.Server.Endpoint),
		zap.Bool("seed", cfg.Server.Seed),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutCtx, shutCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutCancel()
	return srv.Shutdown(shutCtx)
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
	telCfg.ServiceName = "feedgated"
	if cfg.Observability.OTLPEndpoint != "" {
		telCfg.Endpoint = cfg.Observability.OTLPEndpoint
	}
	return telCfg
}
