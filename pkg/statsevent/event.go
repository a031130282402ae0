package statsevent

// Event is a finished, immutable payload. It holds a pooled buffer until
// Release (or Close) returns it; after that the payload is gone.
//
// An Event is not safe for concurrent use.
type Event struct {
	atomID    int32
	buf       *Buffer
	pool      *Pool
	numBytes  int
	errorMask ErrorMask
}

// AtomID returns the atom id the event was built with.
func (e *Event) AtomID() int32 {
	return e.atomID
}

// Bytes returns the payload, exactly NumBytes long. The slice aliases
// the pooled buffer and must not be retained past Release. Returns nil
// once the event has been released.
func (e *Event) Bytes() []byte {
	if e.buf == nil {
		return nil
	}
	return e.buf.Bytes()[:e.numBytes]
}

// NumBytes returns the payload length.
func (e *Event) NumBytes() int {
	return e.numBytes
}

// ErrorMask returns the error flags embedded in the payload, or 0.
func (e *Event) ErrorMask() ErrorMask {
	return e.errorMask
}

// Released reports whether the buffer has been handed back.
func (e *Event) Released() bool {
	return e.buf == nil
}

// Release returns the buffer to its pool. Calling it more than once is
// a no-op.
func (e *Event) Release() {
	if e.buf == nil {
		return
	}
	buf := e.buf
	e.buf = nil
	if e.pool != nil {
		e.pool.Release(buf)
	}
}

// Close releases the event. It always returns nil.
func (e *Event) Close() error {
	e.Release()
	return nil
}
