package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type ctxKey struct{}

type panickingTracerProvider struct {
	noop.TracerProvider
}

func (panickingTracerProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return panickingTracer{}
}

type panickingTracer struct {
	noop.Tracer
}

func (panickingTracer) Start(context.Context, string, ...trace.SpanStartOption) (context.Context, trace.Span) {
	panic("tracer exploded")
}

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	sr := tracetest.NewSpanRecorder()
	return sr, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(Config{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_NoExporter(t *testing.T) {
	shutdown, err := Setup(Config{Enabled: true, Exporter: "none", ServiceVersion: "test"}, zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_UnknownExporter(t *testing.T) {
	shutdown, err := Setup(Config{Enabled: true, Exporter: "carrier-pigeon"}, zerolog.Nop())
	require.Error(t, err)
	require.NotNil(t, shutdown)
}

func TestStartStoreSpan_Attributes(t *testing.T) {
	sr, tp := newRecorder()
	f := NewSpanFactory(tp, zerolog.Nop())

	ctx, end := f.StartStoreSpan(context.Background(), "PutItem", "eu-central-1", "Licenses")
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	end(nil)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "DynamoDB.PutItem", span.Name())
	assert.Equal(t, trace.SpanKindClient, span.SpanKind())
	assert.Equal(t, codes.Unset, span.Status().Code)

	attrs := attrMap(span.Attributes())
	assert.Equal(t, "eu-central-1", attrs["aws.region"].AsString())
	assert.Equal(t, []string{"Licenses"}, attrs["aws.dynamodb.table_names"].AsStringSlice())
	assert.Equal(t, "PutItem", attrs["rpc.method"].AsString())
}

func TestStartStoreSpan_UnknownRegion(t *testing.T) {
	sr, tp := newRecorder()
	f := NewSpanFactory(tp, zerolog.Nop())

	_, end := f.StartStoreSpan(context.Background(), "Query", "", "Licenses")
	end(nil)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	_, ok := attrMap(spans[0].Attributes())["aws.region"]
	assert.False(t, ok, "expected no region attribute")
}

func TestStartStoreSpan_RecordsError(t *testing.T) {
	sr, tp := newRecorder()
	f := NewSpanFactory(tp, zerolog.Nop())

	_, end := f.StartStoreSpan(context.Background(), "GetItem", "eu-central-1", "Licenses")
	end(errors.New("throttled"))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "throttled", spans[0].Status().Description)
	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestStartStoreSpan_TracerFailureIsIsolated(t *testing.T) {
	f := NewSpanFactory(panickingTracerProvider{}, zerolog.Nop())

	parent := context.WithValue(context.Background(), ctxKey{}, "parent")
	var (
		ctx context.Context
		end EndFunc
	)
	require.NotPanics(t, func() {
		ctx, end = f.StartStoreSpan(parent, "DeleteItem", "eu-central-1", "Licenses")
	})
	assert.Equal(t, parent, ctx)
	require.NotNil(t, end)
	assert.NotPanics(t, func() { end(errors.New("ignored")) })
}

func TestStartStoreSpan_NilFactory(t *testing.T) {
	var f *SpanFactory
	ctx, end := f.StartStoreSpan(context.Background(), "Query", "", "Licenses")
	assert.NotNil(t, ctx)
	assert.NotPanics(t, func() { end(nil) })
}
