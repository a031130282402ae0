package statsevent

import "sync"

// Pool recycles scratch buffers. It caches at most one idle buffer:
// releasing while the slot is taken drops the released buffer.
//
// Pool is safe for concurrent use. The zero value is ready to use.
type Pool struct {
	mu   sync.Mutex
	idle *Buffer
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

var defaultPool = NewPool()

// DefaultPool returns the process-wide pool used by the package-level
// NewBuilder.
func DefaultPool() *Pool {
	return defaultPool
}

// Acquire returns the cached buffer, or a new one if the slot is empty.
// The returned buffer has its overflow flag cleared.
func (p *Pool) Acquire() *Buffer {
	p.mu.Lock()
	b := p.idle
	p.idle = nil
	p.mu.Unlock()

	if b == nil {
		b = NewBuffer()
	}
	b.reset()
	return b
}

// Release offers b back to the pool. It is kept only if the slot is empty.
func (p *Pool) Release(b *Buffer) {
	if b == nil {
		return
	}
	p.mu.Lock()
	if p.idle == nil {
		p.idle = b
	}
	p.mu.Unlock()
}

// Idle reports whether the pool currently holds a cached buffer.
func (p *Pool) Idle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idle != nil
}
