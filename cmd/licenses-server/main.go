// Package main is the entrypoint for the licenses HTTP server.
//
// The server exposes the same operations as the functions, for local development
// against DynamoDB Local and for deployments outside Lambda.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ivms-online/ivms-licenses-service/internal/api"
	"github.com/ivms-online/ivms-licenses-service/internal/config"
	"github.com/ivms-online/ivms-licenses-service/internal/db"
	"github.com/ivms-online/ivms-licenses-service/internal/handlers"
	"github.com/ivms-online/ivms-licenses-service/internal/logs"
	"github.com/ivms-online/ivms-licenses-service/internal/metrics"
	"github.com/ivms-online/ivms-licenses-service/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadServerConfig()
	logger := logs.New(logs.Options{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Version:     Version,
	})

	logger.Info().
		Str("version", Version).
		Str("commit", Commit).
		Str("build_date", BuildDate).
		Msg("Starting licenses server")

	if cfg.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := telemetry.Setup(telemetry.Config{
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TraceExporter,
		ServiceVersion: Version,
		Environment:    string(cfg.Environment),
	}, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize tracing")
		return 1
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics, err := metrics.NewStoreMetrics(registry)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to register store metrics")
		return 1
	}

	store, err := db.LoadFromEnv(ctx, logger, db.WithMetrics(storeMetrics))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to configure licenses table")
		return 1
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn().Err(err).Msg("Licenses table not reachable yet")
	}
	pingCancel()

	routerCfg := api.DefaultConfig()
	routerCfg.Gatherer = registry
	routerCfg.Version = Version
	routerCfg.Commit = Commit
	routerCfg.BuildDate = BuildDate

	router := api.NewRouter(routerCfg, handlers.NewLicenses(store, logger), store, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down server")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("HTTP server error")
		return 1
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
		return 1
	}

	logger.Info().Msg("Server stopped gracefully")
	return 0
}
