package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of statsevent spans.
const TracerName = "statsevent"

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer(TracerName)

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartSendSpan starts a span around delivering one event.
	StartSendSpan(ctx context.Context, atomID int32, numBytes int) (context.Context, trace.Span)

	// StartFlushSpan starts a span around re-sending spooled events.
	StartFlushSpan(ctx context.Context, pending int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartSendSpan(ctx context.Context, atomID int32, numBytes int) (context.Context, trace.Span) {
	return StartSendSpan(ctx, atomID, numBytes)
}

func (m *otelSpanManager) StartFlushSpan(ctx context.Context, pending int) (context.Context, trace.Span) {
	return StartFlushSpan(ctx, pending)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartSendSpan starts a span around delivering one event.
// Uses the global OTel tracer.
func StartSendSpan(ctx context.Context, atomID int32, numBytes int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "statsevent.send",
		trace.WithAttributes(
			attribute.Int("atom.id", int(atomID)),
			attribute.Int("event.size_bytes", numBytes),
		),
		trace.WithSpanKind(trace.SpanKindProducer),
	)
}

// StartFlushSpan starts a span around a spool flush.
// Uses the global OTel tracer.
func StartFlushSpan(ctx context.Context, pending int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "statsevent.flush",
		trace.WithAttributes(
			attribute.Int("spool.pending", pending),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
