// Package telemetry provides OpenTelemetry tracing for store calls.
//
// Tracing is opt-in. When disabled the global no-op tracer provider stays in place
// and every span created through a SpanFactory is discarded.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ServiceName is reported as the service.name resource attribute.
const ServiceName = "ivms-licenses-service"

// Config holds tracing configuration.
type Config struct {
	Enabled        bool
	Exporter       string // "stdout" or "none"
	ServiceVersion string
	Environment    string
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Setup installs the global tracer provider described by cfg.
// The returned ShutdownFunc is always non-nil.
func Setup(cfg Config, logger zerolog.Logger) (ShutdownFunc, error) {
	log := logger.With().Str("component", "telemetry").Logger()
	noop := func(context.Context) error { return nil }

	if !cfg.Enabled {
		log.Debug().Msg("tracing disabled")
		return noop, nil
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
			attribute.String("deployment.environment", cfg.Environment),
		)),
	}

	switch cfg.Exporter {
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
		if err != nil {
			return noop, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case "none":
		// spans are created and sampled but not exported
	default:
		return noop, fmt.Errorf("unsupported trace exporter: %s", cfg.Exporter)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().Str("exporter", cfg.Exporter).Msg("tracing initialized")
	return tp.Shutdown, nil
}
