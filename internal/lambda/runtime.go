package lambda

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/ivms-online/ivms-licenses-service/internal/config"
	"github.com/ivms-online/ivms-licenses-service/internal/db"
	"github.com/ivms-online/ivms-licenses-service/internal/handlers"
	"github.com/ivms-online/ivms-licenses-service/internal/logs"
	"github.com/ivms-online/ivms-licenses-service/internal/telemetry"
	"github.com/rs/zerolog"
)

// Runtime is the state a function binary builds once per cold start.
type Runtime struct {
	Build    BuildInfo
	Logger   zerolog.Logger
	Licenses *handlers.Licenses
	shutdown telemetry.ShutdownFunc
}

// BuildInfo identifies the running binary. It carries the same fields the
// server reports on /version.
type BuildInfo struct {
	Function  string
	Version   string
	Commit    string
	BuildDate string
}

// NewRuntime loads configuration from the environment and connects to the licenses table.
// A missing LICENSES_TABLE fails here, before the first invocation is accepted.
func NewRuntime(ctx context.Context, info BuildInfo) (*Runtime, error) {
	cfg := config.LoadServerConfig()
	logger := logs.New(logs.Options{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Version:     info.Version,
	}).With().Str("function", info.Function).Logger()

	logger.Info().
		Str("version", info.Version).
		Str("commit", info.Commit).
		Str("build_date", info.BuildDate).
		Str("go_version", runtime.Version()).
		Msg("Starting licenses function")

	shutdown, err := telemetry.Setup(telemetry.Config{
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TraceExporter,
		ServiceVersion: info.Version,
		Environment:    string(cfg.Environment),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	store, err := db.LoadFromEnv(ctx, logger)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return &Runtime{
		Build:    info,
		Logger:   logger,
		Licenses: handlers.NewLicenses(store, logger),
		shutdown: shutdown,
	}, nil
}

// Close flushes pending spans.
func (r *Runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.shutdown(ctx); err != nil {
		r.Logger.Warn().Err(err).Msg("failed to flush traces")
	}
}
