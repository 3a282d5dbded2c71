package telemetry

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans produced by the store layer.
const TracerName = "github.com/ivms-online/ivms-licenses-service/internal/db"

// EndFunc closes a span, recording err when non-nil.
type EndFunc func(err error)

// SpanFactory creates one span around each store call.
// Failures inside the tracer are logged and swallowed; they never reach the caller.
type SpanFactory struct {
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewSpanFactory creates a SpanFactory. A nil provider means the global one.
func NewSpanFactory(tp trace.TracerProvider, logger zerolog.Logger) *SpanFactory {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &SpanFactory{
		tracer: tp.Tracer(TracerName),
		logger: logger.With().Str("component", "span_factory").Logger(),
	}
}

// StartStoreSpan opens a client span for a store operation against table.
// region is attached only when known.
func (f *SpanFactory) StartStoreSpan(ctx context.Context, operation, region, table string) (spanCtx context.Context, end EndFunc) {
	if f == nil {
		return ctx, func(error) {}
	}

	defer func() {
		if r := recover(); r != nil {
			f.logger.Warn().Interface("panic", r).Str("operation", operation).Msg("failed to start store span")
			spanCtx, end = ctx, func(error) {}
		}
	}()

	attrs := []attribute.KeyValue{
		attribute.String("rpc.system", "aws-api"),
		attribute.String("rpc.service", "DynamoDB"),
		attribute.String("rpc.method", operation),
		attribute.StringSlice("aws.dynamodb.table_names", []string{table}),
	}
	if region != "" {
		attrs = append(attrs, attribute.String("aws.region", region))
	}

	started, span := f.tracer.Start(ctx, "DynamoDB."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return started, func(err error) {
		defer func() {
			if r := recover(); r != nil {
				f.logger.Warn().Interface("panic", r).Str("operation", operation).Msg("failed to end store span")
			}
		}()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
