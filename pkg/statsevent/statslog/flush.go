package statslog

import (
	"context"
	"errors"
	"fmt"
	"time"

	sterrors "github.com/randalmurphal/statsevent/pkg/statsevent/errors"
	"github.com/randalmurphal/statsevent/pkg/statsevent/observability"
)

// FlushStats summarizes one Flush.
type FlushStats struct {
	// Sent is the number of spooled records delivered and removed.
	Sent int
	// Dropped is the number of records removed because they can never
	// be delivered.
	Dropped int
	// Failed is the number of records that failed transiently and stay
	// spooled.
	Failed int
	// Remaining is the number of records left in the spool.
	Remaining int
}

// Flush re-sends spooled records oldest first. It stops at the first
// transient failure, since the collector is most likely still
// unreachable, and returns that failure. Records failing permanently
// are removed and counted as dropped. Flush without a spool is a no-op.
func (l *Logger) Flush(ctx context.Context) (FlushStats, error) {
	var stats FlushStats
	if l.spool == nil {
		return stats, nil
	}
	if l.closed.Load() {
		return stats, ErrClosed
	}

	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	start := time.Now()

	pending, err := l.spool.Count()
	if err != nil {
		return stats, fmt.Errorf("count spool: %w", err)
	}
	ctx, span := l.spans.StartFlushSpan(ctx, pending)

	flushErr := l.drain(ctx, &stats)

	if remaining, err := l.spool.Count(); err == nil {
		stats.Remaining = remaining
	} else if flushErr == nil {
		flushErr = fmt.Errorf("count spool: %w", err)
	}

	elapsed := time.Since(start)
	l.metrics.RecordFlush(ctx, stats.Sent, stats.Failed, elapsed)
	observability.LogFlush(l.logger, stats.Sent, stats.Failed, stats.Remaining,
		float64(elapsed.Microseconds())/1000)
	l.spans.EndSpanWithError(span, flushErr)
	return stats, flushErr
}

func (l *Logger) drain(ctx context.Context, stats *FlushStats) error {
	for {
		records, err := l.spool.Pending(l.flushBatch)
		if err != nil {
			return fmt.Errorf("read spool: %w", err)
		}
		if len(records) == 0 {
			return nil
		}

		for _, r := range records {
			result := sterrors.WithRetryContext(ctx, l.observeRetries(ctx, l.flushRetry, r.AtomID), func(ctx context.Context) (struct{}, error) {
				return struct{}{}, l.writer.WriteEvent(ctx, r.AtomID, r.Payload)
			})
			l.metrics.RecordSend(ctx, r.AtomID, len(r.Payload), result.Attempts, result.Err)

			switch {
			case result.Err == nil:
				if err := l.spool.Ack(r.ID); err != nil {
					return fmt.Errorf("ack record %s: %w", r.ID, err)
				}
				stats.Sent++
				observability.LogEventSent(l.logger, r.AtomID, len(r.Payload), result.Attempts)

			case sterrors.IsRetryable(result.Err) || isContextErr(result.Err):
				stats.Failed++
				observability.LogSendError(l.logger, r.AtomID, result.Err, result.Attempts)
				if err := l.spool.Attempt(r.ID); err != nil {
					return errors.Join(result.Err, fmt.Errorf("record attempt %s: %w", r.ID, err))
				}
				return result.Err

			default:
				if err := l.spool.Ack(r.ID); err != nil {
					return fmt.Errorf("discard record %s: %w", r.ID, err)
				}
				stats.Dropped++
				l.drop(ctx, r.AtomID, reasonPermanent, result.Err)
			}
		}
	}
}
