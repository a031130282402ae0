package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/randalmurphal/statsevent/pkg/statsevent"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordSend does nothing.
func (NoopMetrics) RecordSend(_ context.Context, _ int32, _, _ int, _ error) {}

// RecordRetry does nothing.
func (NoopMetrics) RecordRetry(_ context.Context, _ int32) {}

// RecordSpooled does nothing.
func (NoopMetrics) RecordSpooled(_ context.Context, _ int32) {}

// RecordDropped does nothing.
func (NoopMetrics) RecordDropped(_ context.Context, _ int32, _ string) {}

// RecordFlush does nothing.
func (NoopMetrics) RecordFlush(_ context.Context, _, _ int, _ time.Duration) {}

// RecordEncodeErrors does nothing.
func (NoopMetrics) RecordEncodeErrors(_ context.Context, _ int32, _ statsevent.ErrorMask) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartSendSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartSendSpan(ctx context.Context, _ int32, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartFlushSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartFlushSpan(ctx context.Context, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
