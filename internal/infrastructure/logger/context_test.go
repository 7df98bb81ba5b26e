package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func contextWithSpan(t *testing.T) (context.Context, trace.Span) {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp.Tracer("logger-test").Start(context.Background(), "op")
}

func fieldMap(entry observer.LoggedEntry) map[string]any {
	return entry.ContextMap()
}

func TestFromContext(t *testing.T) {
	base := zap.NewExample()
	ctx := WithContext(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))

	assert.NotNil(t, FromContext(context.Background()))

	wrongType := context.WithValue(context.Background(), LoggerKey, "not a logger")
	assert.NotNil(t, FromContext(wrongType))
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, enriched := WithRequestID(context.Background(), zap.New(core), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Same(t, enriched, FromContext(ctx))

	enriched.Info("hello")
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "req-123", fieldMap(recorded.All()[0])["request_id"])
}

func TestWithCaptureID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, enriched := WithCaptureID(context.Background(), zap.New(core), "cap-1")
	assert.Equal(t, "cap-1", GetCaptureID(ctx))

	enriched.Info("hello")
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "cap-1", fieldMap(recorded.All()[0])["capture_id"])
}

func TestGetters_Missing(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetCaptureID(ctx))
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestTraceIDs_WithSpan(t *testing.T) {
	ctx, span := contextWithSpan(t)
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
	assert.Equal(t, span.SpanContext().SpanID().String(), GetSpanID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	assert.Same(t, base, WithTraceContext(context.Background(), base))

	ctx, span := contextWithSpan(t)
	defer span.End()
	WithTraceContext(ctx, base).Info("traced")

	require.Len(t, recorded.All(), 1)
	fields := fieldMap(recorded.All()[0])
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestContextLogger_EnrichesFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx, span := contextWithSpan(t)
	defer span.End()

	ctx = WithContext(ctx, zap.New(core))
	ctx = context.WithValue(ctx, RequestIDKey, "req-9")
	ctx = context.WithValue(ctx, CaptureIDKey, "cap-9")

	L(ctx).Debug("debug")
	L(ctx).Info("info")
	L(ctx).Warn("warn")
	L(ctx).Error("error")

	logs := recorded.All()
	require.Len(t, logs, 4)
	for _, entry := range logs {
		fields := fieldMap(entry)
		assert.Equal(t, "req-9", fields["request_id"])
		assert.Equal(t, "cap-9", fields["capture_id"])
		assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	}
	assert.Equal(t, zapcore.ErrorLevel, logs[3].Level)
}

func TestContextLogger_NoContextFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	WithLogger(context.Background(), zap.New(core)).Info("plain")

	require.Len(t, recorded.All(), 1)
	assert.Empty(t, recorded.All()[0].Context)
}

func TestContextLogger_With(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := context.WithValue(context.Background(), CaptureIDKey, "cap-2")

	WithLogger(ctx, zap.New(core)).
		With(zap.String("stage", "RENDERING")).
		With(zap.Int("width", 58)).
		Info("chained")

	require.Len(t, recorded.All(), 1)
	fields := fieldMap(recorded.All()[0])
	assert.Equal(t, "RENDERING", fields["stage"])
	assert.Equal(t, int64(58), fields["width"])
	assert.Equal(t, "cap-2", fields["capture_id"])
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := WithLogger(context.Background(), nil)
	assert.NotPanics(t, func() {
		cl.Info("nothing")
		cl.With(zap.String("k", "v")).Warn("nothing")
	})
	assert.NotNil(t, cl.Zap())
}
