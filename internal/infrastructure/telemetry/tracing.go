package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for spans started by this module.
const TracerName = "cameracapture"

// Span attribute keys for capture spans.
const (
	SpanAttrWidth  = "capture.width"
	SpanAttrHeight = "capture.height"
	SpanAttrTarget = "render.target"
)

// SpanOption adjusts a span before it starts.
type SpanOption func(*spanStart)

type spanStart struct {
	kind  trace.SpanKind
	attrs []attribute.KeyValue
}

// WithAttribute sets an attribute at span start.
func WithAttribute(key string, value any) SpanOption {
	return func(s *spanStart) { s.attrs = append(s.attrs, toAttribute(key, value)) }
}

// WithSpanKind overrides the default internal kind.
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(s *spanStart) { s.kind = kind }
}

// StartSpan opens a span from the global provider. End it in the caller:
//
//	ctx, span := telemetry.StartSpan(ctx, "render_target.render")
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	start := spanStart{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(&start)
	}
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithSpanKind(start.kind), trace.WithAttributes(start.attrs...))
}

// SetAttributes sets key/value pairs on span. Pairs whose key is not a
// string are dropped, as is a trailing key without a value.
func SetAttributes(span trace.Span, kv ...any) {
	if span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 1; i < len(kv); i += 2 {
		if key, ok := kv[i-1].(string); ok {
			attrs = append(attrs, toAttribute(key, kv[i]))
		}
	}
	span.SetAttributes(attrs...)
}

// RecordError attaches err to span and sets the error status. Nil errors
// leave the span untouched.
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK sets the ok status.
func SetOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

func toAttribute(key string, value any) attribute.KeyValue {
	k := attribute.Key(key)
	switch v := value.(type) {
	case string:
		return k.String(v)
	case bool:
		return k.Bool(v)
	case int:
		return k.Int(v)
	case int64:
		return k.Int64(v)
	case uint32:
		return k.Int64(int64(v))
	case float64:
		return k.Float64(v)
	case []string:
		return k.StringSlice(v)
	case fmt.Stringer:
		return k.String(v.String())
	}
	return k.String(fmt.Sprint(value))
}
