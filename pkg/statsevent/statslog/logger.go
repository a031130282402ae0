// Package statslog is the client side of stats event delivery. A Logger
// encodes events, sends them to the collector with retry, and spools the
// ones that could not be delivered so Flush can re-send them later.
package statslog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/statsevent/pkg/statsevent"
	sterrors "github.com/randalmurphal/statsevent/pkg/statsevent/errors"
	"github.com/randalmurphal/statsevent/pkg/statsevent/observability"
	"github.com/randalmurphal/statsevent/pkg/statsevent/spool"
	"github.com/randalmurphal/statsevent/pkg/statsevent/transport"
)

// ErrClosed indicates use of a closed Logger.
var ErrClosed = errors.New("stats logger closed")

// DefaultFlushBatch is the number of spooled records read per batch.
const DefaultFlushBatch = 256

// Drop reasons reported to metrics and logs.
const (
	reasonPermanent   = "permanent_error"
	reasonNoSpool     = "no_spool"
	reasonSpoolFailed = "spool_failed"
	reasonClosed      = "closed"
)

// Logger sends events to a collector.
//
// A Logger owns its writer and spool: Close closes both when they
// implement io.Closer. Logger is safe for concurrent use.
type Logger struct {
	enc        *statsevent.Encoder
	writer     transport.Writer
	spool      spool.Store
	retry      sterrors.RetryConfig
	flushRetry sterrors.RetryConfig
	flushBatch int

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	flushMu sync.Mutex
	closed  atomic.Bool
}

// Option configures a Logger.
type Option func(*Logger)

// WithEncoder sets the encoder used by NewBuilder.
func WithEncoder(enc *statsevent.Encoder) Option {
	return func(l *Logger) {
		if enc != nil {
			l.enc = enc
		}
	}
}

// WithSpool stores undeliverable events in s. Without a spool they are
// dropped.
func WithSpool(s spool.Store) Option {
	return func(l *Logger) {
		l.spool = s
	}
}

// WithRetry sets the retry policy for Write.
func WithRetry(cfg sterrors.RetryConfig) Option {
	return func(l *Logger) {
		l.retry = cfg
	}
}

// WithFlushRetry sets the retry policy for each record re-sent by Flush.
func WithFlushRetry(cfg sterrors.RetryConfig) Option {
	return func(l *Logger) {
		l.flushRetry = cfg
	}
}

// WithFlushBatch sets how many spooled records Flush reads at a time.
func WithFlushBatch(n int) Option {
	return func(l *Logger) {
		if n > 0 {
			l.flushBatch = n
		}
	}
}

// WithLogger sets the structured logger. Nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) {
		l.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(l *Logger) {
		if m != nil {
			l.metrics = m
		}
	}
}

// WithSpanManager sets the span manager.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(l *Logger) {
		if sm != nil {
			l.spans = sm
		}
	}
}

// New creates a Logger sending through w.
func New(w transport.Writer, opts ...Option) *Logger {
	l := &Logger{
		enc:        statsevent.NewEncoder(),
		writer:     w,
		retry:      sterrors.DefaultRetry,
		flushRetry: sterrors.FlushRetry,
		flushBatch: DefaultFlushBatch,
		metrics:    observability.NoopMetrics{},
		spans:      observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewBuilder starts a new event using the Logger's encoder.
func (l *Logger) NewBuilder() *statsevent.Builder {
	return l.enc.NewBuilder()
}

// Outcome is what happened to an event handed to Send.
type Outcome int

const (
	// OutcomeSent means the collector accepted the event.
	OutcomeSent Outcome = iota
	// OutcomeSpooled means delivery failed and the event was stored for
	// a later Flush.
	OutcomeSpooled
	// OutcomeDropped means the event was lost.
	OutcomeDropped
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeSpooled:
		return "spooled"
	case OutcomeDropped:
		return "dropped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Write delivers ev and releases it, whatever the outcome.
//
// Transient failures that outlast the retry policy, and cancellation of
// ctx, spool the event and return nil. An error is returned only when
// the event is lost. Use Send to tell delivery and spooling apart.
func (l *Logger) Write(ctx context.Context, ev *statsevent.Event) error {
	_, err := l.Send(ctx, ev)
	return err
}

// Send delivers ev like Write and reports what happened to it. The error
// is non-nil exactly when the outcome is OutcomeDropped.
func (l *Logger) Send(ctx context.Context, ev *statsevent.Event) (Outcome, error) {
	defer ev.Release()

	atomID := ev.AtomID()
	if l.closed.Load() {
		l.drop(ctx, atomID, reasonClosed, ErrClosed)
		return OutcomeDropped, ErrClosed
	}

	if mask := ev.ErrorMask(); mask != 0 {
		observability.LogEncodeErrors(l.logger, atomID, mask)
		l.metrics.RecordEncodeErrors(ctx, atomID, mask)
	}

	payload := ev.Bytes()
	sendCtx, span := l.spans.StartSendSpan(ctx, atomID, len(payload))
	result := sterrors.WithRetryContext(sendCtx, l.observeRetries(sendCtx, l.retry, atomID),
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, l.writer.WriteEvent(ctx, atomID, payload)
		})
	l.metrics.RecordSend(ctx, atomID, len(payload), result.Attempts, result.Err)

	if result.Err == nil {
		observability.LogEventSent(l.logger, atomID, len(payload), result.Attempts)
		l.spans.EndSpanWithError(span, nil)
		return OutcomeSent, nil
	}

	observability.LogSendError(l.logger, atomID, result.Err, result.Attempts)
	err := l.spoolOrDrop(ctx, sendCtx, atomID, payload, result.Err)
	l.spans.EndSpanWithError(span, result.Err)
	if err != nil {
		return OutcomeDropped, err
	}
	return OutcomeSpooled, nil
}

// observeRetries returns cfg with an OnRetry hook that logs, counts and
// traces each retried attempt before calling any hook cfg already had.
func (l *Logger) observeRetries(ctx context.Context, cfg sterrors.RetryConfig, atomID int32) sterrors.RetryConfig {
	next := cfg.OnRetry
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		observability.LogSendRetry(l.logger, atomID, attempt, err, backoff)
		l.metrics.RecordRetry(ctx, atomID)
		l.spans.AddSpanEvent(ctx, "retry",
			attribute.Int("attempt", attempt),
			attribute.Int64("backoff_ms", backoff.Milliseconds()),
		)
		if next != nil {
			next(attempt, err, backoff)
		}
	}
	return cfg
}

// spoolOrDrop keeps a failed event for Flush when the failure may clear
// up. The payload is copied by the spool before ev is released.
func (l *Logger) spoolOrDrop(ctx, spanCtx context.Context, atomID int32, payload []byte, sendErr error) error {
	if !sterrors.IsRetryable(sendErr) && !isContextErr(sendErr) {
		l.drop(ctx, atomID, reasonPermanent, sendErr)
		return sendErr
	}
	if l.spool == nil {
		l.drop(ctx, atomID, reasonNoSpool, sendErr)
		return sendErr
	}

	id, err := l.spool.Append(atomID, payload)
	if err != nil {
		err = errors.Join(sendErr, fmt.Errorf("spool event: %w", err))
		l.drop(ctx, atomID, reasonSpoolFailed, err)
		return err
	}
	observability.LogSpooled(l.logger, atomID, id)
	l.metrics.RecordSpooled(ctx, atomID)
	l.spans.AddSpanEvent(spanCtx, "spooled")
	return nil
}

func (l *Logger) drop(ctx context.Context, atomID int32, reason string, err error) {
	observability.LogEventDropped(l.logger, atomID, reason, err)
	l.metrics.RecordDropped(ctx, atomID, reason)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Spool returns the Logger's spool, or nil.
func (l *Logger) Spool() spool.Store {
	return l.spool
}

// Close stops the Logger and closes its writer and spool. Spooled
// records are kept for the next process to flush.
func (l *Logger) Close() error {
	if l.closed.Swap(true) {
		return nil
	}

	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	var errs []error
	if c, ok := l.writer.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close writer: %w", err))
		}
	}
	if l.spool != nil {
		if err := l.spool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close spool: %w", err))
		}
	}
	return errors.Join(errs...)
}
