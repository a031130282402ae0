// Package observability provides logging, metrics and tracing for event
// delivery: structured logging via slog, metrics and spans via
// OpenTelemetry.
//
// The encoder itself is never instrumented. These helpers are used by the
// delivery client around sends, spooling and flushes. Metrics and tracing
// have no-op implementations for when they are disabled.
package observability

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/statsevent/pkg/statsevent"
)

// EnrichLogger adds event context to a logger.
// Returns a new logger with the atom_id field.
//
// Example:
//
//	enriched := EnrichLogger(logger, 105)
//	enriched.Warn("dropping event") // includes atom_id
func EnrichLogger(logger *slog.Logger, atomID int32) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.Int("atom_id", int(atomID)))
}

// LogEventSent logs a delivered event.
func LogEventSent(logger *slog.Logger, atomID int32, numBytes, attempts int) {
	if logger == nil {
		return
	}
	logger.Debug("event sent",
		slog.Int("atom_id", int(atomID)),
		slog.Int("size_bytes", numBytes),
		slog.Int("attempts", attempts),
	)
}

// LogSendError logs a delivery failure after retries were exhausted.
func LogSendError(logger *slog.Logger, atomID int32, err error, attempts int) {
	if logger == nil {
		return
	}
	logger.Warn("event send failed",
		slog.Int("atom_id", int(atomID)),
		slog.String("error", err.Error()),
		slog.Int("attempts", attempts),
	)
}

// LogSendRetry logs a failed attempt that will be retried after backoff.
func LogSendRetry(logger *slog.Logger, atomID int32, attempt int, err error, backoff time.Duration) {
	if logger == nil {
		return
	}
	logger.Debug("event send retry",
		slog.Int("atom_id", int(atomID)),
		slog.Int("attempt", attempt),
		slog.String("error", err.Error()),
		slog.Int64("backoff_ms", backoff.Milliseconds()),
	)
}

// LogSpooled logs an event stored for a later flush.
func LogSpooled(logger *slog.Logger, atomID int32, recordID string) {
	if logger == nil {
		return
	}
	logger.Info("event spooled",
		slog.Int("atom_id", int(atomID)),
		slog.String("record_id", recordID),
	)
}

// LogEventDropped logs an event that was neither delivered nor spooled.
func LogEventDropped(logger *slog.Logger, atomID int32, reason string, err error) {
	if logger == nil {
		return
	}
	attrs := []any{
		slog.Int("atom_id", int(atomID)),
		slog.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.Error("event dropped", attrs...)
}

// LogFlush logs the outcome of re-sending spooled events.
func LogFlush(logger *slog.Logger, sent, failed, remaining int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("spool flushed",
		slog.Int("sent", sent),
		slog.Int("failed", failed),
		slog.Int("remaining", remaining),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEncodeErrors logs an event whose payload carries an error record
// instead of its fields.
func LogEncodeErrors(logger *slog.Logger, atomID int32, mask statsevent.ErrorMask) {
	if logger == nil {
		return
	}
	logger.Warn("event encoded with errors",
		slog.Int("atom_id", int(atomID)),
		slog.String("errors", mask.String()),
		slog.Uint64("error_mask", uint64(mask)),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
