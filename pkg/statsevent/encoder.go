package statsevent

import "github.com/randalmurphal/statsevent/pkg/statsevent/clock"

// Encoder hands out Builders that share a buffer pool and a time source.
// It is safe for concurrent use; the Builders it returns are not.
type Encoder struct {
	pool  *Pool
	clock clock.Clock
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithPool sets the buffer pool (default: a new pool owned by the encoder).
func WithPool(p *Pool) EncoderOption {
	return func(e *Encoder) {
		if p != nil {
			e.pool = p
		}
	}
}

// WithClock sets the timestamp source (default: clock.Monotonic()).
func WithClock(c clock.Clock) EncoderOption {
	return func(e *Encoder) {
		if c != nil {
			e.clock = c
		}
	}
}

// NewEncoder creates an Encoder.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{}
	for _, opt := range opts {
		opt(e)
	}
	if e.pool == nil {
		e.pool = NewPool()
	}
	if e.clock == nil {
		e.clock = clock.Monotonic()
	}
	return e
}

// Pool returns the encoder's buffer pool.
func (e *Encoder) Pool() *Pool {
	return e.pool
}

// NewBuilder starts a new event. The builder holds a pooled buffer
// until the built Event is released.
func (e *Encoder) NewBuilder() *Builder {
	return newBuilder(e.pool, e.clock.NowNanos())
}

var defaultEncoder = NewEncoder(WithPool(defaultPool))

// NewBuilder starts a new event using the process-wide pool and the
// monotonic clock.
func NewBuilder() *Builder {
	return defaultEncoder.NewBuilder()
}
