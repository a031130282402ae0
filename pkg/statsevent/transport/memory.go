package transport

import (
	"context"
	"sync"
)

// Sent is one event recorded by a MemoryWriter.
type Sent struct {
	AtomID int32
	// Frame is the full datagram including the event tag.
	Frame []byte
}

// Payload returns the event payload without the frame header.
func (s Sent) Payload() []byte {
	payload, _ := ParseFrame(s.Frame)
	return payload
}

// MemoryWriter records framed events in memory. Failures can be queued
// with FailNext to exercise retry and spooling paths.
// MemoryWriter is safe for concurrent use.
type MemoryWriter struct {
	mu       sync.Mutex
	sent     []Sent
	failures []error
	attempts int
	closed   bool
}

// NewMemoryWriter creates an empty in-memory writer.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

// WriteEvent copies the framed payload, or returns the next queued
// failure.
func (w *MemoryWriter) WriteEvent(ctx context.Context, atomID int32, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return &SendError{AtomID: atomID, Op: "write", Err: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.attempts++
	if w.closed {
		return &SendError{AtomID: atomID, Op: "write", Err: ErrClosed}
	}
	if len(w.failures) > 0 {
		err := w.failures[0]
		w.failures = w.failures[1:]
		return &SendError{AtomID: atomID, Op: "write", Err: err}
	}

	frame, err := AppendFrame(nil, payload)
	if err != nil {
		return &SendError{AtomID: atomID, Op: "frame", Err: err}
	}
	w.sent = append(w.sent, Sent{AtomID: atomID, Frame: frame})
	return nil
}

// FailNext makes the next n writes fail with err.
func (w *MemoryWriter) FailNext(n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := 0; i < n; i++ {
		w.failures = append(w.failures, err)
	}
}

// Sent returns a copy of the recorded events in send order.
func (w *MemoryWriter) Sent() []Sent {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Sent, len(w.sent))
	copy(out, w.sent)
	return out
}

// Attempts returns the number of WriteEvent calls, failed ones included.
func (w *MemoryWriter) Attempts() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attempts
}

// Reset clears recorded events, queued failures and the attempt count.
func (w *MemoryWriter) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sent = nil
	w.failures = nil
	w.attempts = 0
}

// Close marks the writer closed.
func (w *MemoryWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// Compile-time interface checks.
var (
	_ Writer = (*DatagramWriter)(nil)
	_ Writer = (*MemoryWriter)(nil)
)
