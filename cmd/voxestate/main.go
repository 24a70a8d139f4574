// Voxestate is a real estate assistant daemon: it answers questions with an
// LLM, renders answers as speech with a local engine that falls back to a
// network engine, and surfaces the links found in each answer.
//
// Usage:
//
//	voxestate [flags]
//	voxestate --config /path/to/voxestate.yaml
//
//	@title			voxestate API
//	@version		1.0.0
//	@description	Real estate assistant: LLM answers, speech synthesis with local-to-network fallback, and URL extraction.
//	@BasePath		/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	_ "github.com/nadzzz/voxestate/docs"
	"github.com/nadzzz/voxestate/internal/app"
	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/health"
	"github.com/nadzzz/voxestate/internal/transport"
	grpctransport "github.com/nadzzz/voxestate/internal/transport/grpc"
	httptransport "github.com/nadzzz/voxestate/internal/transport/http"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/voxestate.local.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("voxestate %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("voxestate starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Build the pipeline. A missing credential stops start-up here rather
	// than failing every request.
	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Allocator.EnsureDir(); err != nil {
		slog.Error("cannot create audio output directory", "dir", a.Allocator.Dir(), "error", err)
		os.Exit(1)
	}

	// Initialize the local speech engine eagerly. Failure is not fatal:
	// requests fall back to the network engine and retry initialization.
	if err := a.Speech.Init(ctx); err != nil {
		slog.Warn("local speech engine unavailable, network fallback will be used", "error", err)
	}

	// Initialize enabled transports.
	var transports []transport.Transport

	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP, cfg.Media, version))
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port))
	}

	if len(transports) == 0 {
		slog.Error("no transports enabled, enable at least one in config")
		os.Exit(1)
	}

	healthServer := health.New(cfg.Server.HealthPort, a.Metrics.Registry(), a.Speech.PrimaryReady)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return healthServer.ListenAndServe(gctx)
	})
	for _, t := range transports {
		g.Go(func() error {
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(gctx, a.Pipeline); err != nil {
				return fmt.Errorf("transport %s: %w", t.Name(), err)
			}
			return nil
		})
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	slog.Info("voxestate ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort,
		"tts_primary_ready", a.Speech.PrimaryReady())

	<-gctx.Done()
	healthServer.SetReady(false)
	slog.Info("shutdown signal received, draining...")

	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	if err := g.Wait(); err != nil {
		slog.Error("voxestate stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("voxestate stopped")
}
