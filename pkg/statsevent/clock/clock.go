// Package clock provides the nanosecond time source events are stamped
// with.
//
// Production code uses Monotonic(), which reads elapsed time since boot
// (including suspend) so that timestamps from different processes on
// the same host are comparable. Tests inject Fixed() or a *Manual clock
// for deterministic payloads.
package clock

import "sync/atomic"

// Clock returns nanosecond timestamps. Implementations must be safe for
// concurrent use.
type Clock interface {
	// NowNanos returns the current reading in nanoseconds. Zero is
	// reserved to mean "no timestamp" and is never returned by
	// Monotonic.
	NowNanos() int64
}

// Func adapts a function to the Clock interface.
type Func func() int64

// NowNanos calls f.
func (f Func) NowNanos() int64 { return f() }

// Fixed returns a Clock that always reports ns.
func Fixed(ns int64) Clock {
	return Func(func() int64 { return ns })
}

// Manual is a Clock that only moves when told to.
type Manual struct {
	now atomic.Int64
}

// NewManual returns a Manual clock starting at ns.
func NewManual(ns int64) *Manual {
	m := &Manual{}
	m.now.Store(ns)
	return m
}

// NowNanos returns the current reading.
func (m *Manual) NowNanos() int64 { return m.now.Load() }

// Advance moves the clock forward by d nanoseconds and returns the new reading.
func (m *Manual) Advance(d int64) int64 { return m.now.Add(d) }

// Set replaces the current reading.
func (m *Manual) Set(ns int64) { m.now.Store(ns) }
