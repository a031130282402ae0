package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/randalmurphal/statsevent/pkg/statsevent"
)

// MeterName is the instrumentation scope of statsevent metrics.
const MeterName = "statsevent"

// MetricsRecorder records event delivery metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordSend records one delivery attempt sequence for an event.
	RecordSend(ctx context.Context, atomID int32, numBytes, attempts int, err error)

	// RecordRetry records a failed attempt that will be retried.
	RecordRetry(ctx context.Context, atomID int32)

	// RecordSpooled records an event stored for a later flush.
	RecordSpooled(ctx context.Context, atomID int32)

	// RecordDropped records an event that was lost.
	RecordDropped(ctx context.Context, atomID int32, reason string)

	// RecordFlush records a spool flush.
	RecordFlush(ctx context.Context, sent, failed int, duration time.Duration)

	// RecordEncodeErrors records an event built with a non-zero error mask.
	RecordEncodeErrors(ctx context.Context, atomID int32, mask statsevent.ErrorMask)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsSent    metric.Int64Counter
	eventBytes    metric.Int64Histogram
	sendErrors    metric.Int64Counter
	sendAttempts  metric.Int64Histogram
	sendRetries   metric.Int64Counter
	eventsSpooled metric.Int64Counter
	eventsDropped metric.Int64Counter
	flushRuns     metric.Int64Counter
	flushLatency  metric.Float64Histogram
	flushResent   metric.Int64Counter
	encodeErrors  metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics(otel.Meter(MeterName))
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates the instruments on meter.
func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	m := &otelMetrics{}
	var err error

	if m.eventsSent, err = meter.Int64Counter("statsevent.events.sent",
		metric.WithDescription("Number of events delivered to the collector"),
	); err != nil {
		return nil, err
	}
	if m.eventBytes, err = meter.Int64Histogram("statsevent.events.size_bytes",
		metric.WithDescription("Encoded event payload size in bytes"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if m.sendErrors, err = meter.Int64Counter("statsevent.send.errors",
		metric.WithDescription("Number of events that failed delivery after retries"),
	); err != nil {
		return nil, err
	}
	if m.sendAttempts, err = meter.Int64Histogram("statsevent.send.attempts",
		metric.WithDescription("Delivery attempts per event"),
	); err != nil {
		return nil, err
	}
	if m.sendRetries, err = meter.Int64Counter("statsevent.send.retries",
		metric.WithDescription("Number of failed delivery attempts that were retried"),
	); err != nil {
		return nil, err
	}
	if m.eventsSpooled, err = meter.Int64Counter("statsevent.events.spooled",
		metric.WithDescription("Number of events stored for a later flush"),
	); err != nil {
		return nil, err
	}
	if m.eventsDropped, err = meter.Int64Counter("statsevent.events.dropped",
		metric.WithDescription("Number of events lost"),
	); err != nil {
		return nil, err
	}
	if m.flushRuns, err = meter.Int64Counter("statsevent.flush.runs",
		metric.WithDescription("Number of spool flushes"),
	); err != nil {
		return nil, err
	}
	if m.flushLatency, err = meter.Float64Histogram("statsevent.flush.latency_ms",
		metric.WithDescription("Spool flush latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.flushResent, err = meter.Int64Counter("statsevent.flush.resent",
		metric.WithDescription("Number of spooled events re-sent by flushes"),
	); err != nil {
		return nil, err
	}
	if m.encodeErrors, err = meter.Int64Counter("statsevent.encode.errors",
		metric.WithDescription("Number of events built with an error record"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderFromProvider returns a MetricsRecorder whose
// instruments come from provider instead of the global one.
func NewMetricsRecorderFromProvider(provider metric.MeterProvider) (MetricsRecorder, error) {
	m, err := newOtelMetrics(provider.Meter(MeterName))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func atomAttr(atomID int32) attribute.KeyValue {
	return attribute.Int("atom_id", int(atomID))
}

// RecordSend records a delivery.
func (m *otelMetrics) RecordSend(ctx context.Context, atomID int32, numBytes, attempts int, err error) {
	attrs := metric.WithAttributes(atomAttr(atomID))

	m.sendAttempts.Record(ctx, int64(attempts), attrs)
	if err != nil {
		m.sendErrors.Add(ctx, 1, attrs)
		return
	}
	m.eventsSent.Add(ctx, 1, attrs)
	m.eventBytes.Record(ctx, int64(numBytes), attrs)
}

// RecordRetry records a retried attempt.
func (m *otelMetrics) RecordRetry(ctx context.Context, atomID int32) {
	m.sendRetries.Add(ctx, 1, metric.WithAttributes(atomAttr(atomID)))
}

// RecordSpooled records a spooled event.
func (m *otelMetrics) RecordSpooled(ctx context.Context, atomID int32) {
	m.eventsSpooled.Add(ctx, 1, metric.WithAttributes(atomAttr(atomID)))
}

// RecordDropped records a lost event.
func (m *otelMetrics) RecordDropped(ctx context.Context, atomID int32, reason string) {
	m.eventsDropped.Add(ctx, 1, metric.WithAttributes(
		atomAttr(atomID),
		attribute.String("reason", reason),
	))
}

// RecordFlush records a spool flush.
func (m *otelMetrics) RecordFlush(ctx context.Context, sent, failed int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("success", failed == 0))
	m.flushRuns.Add(ctx, 1, attrs)
	m.flushLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.flushResent.Add(ctx, int64(sent))
}

// RecordEncodeErrors records an event carrying an error record.
func (m *otelMetrics) RecordEncodeErrors(ctx context.Context, atomID int32, mask statsevent.ErrorMask) {
	m.encodeErrors.Add(ctx, 1, metric.WithAttributes(
		atomAttr(atomID),
		attribute.String("errors", mask.String()),
	))
}
