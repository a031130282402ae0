package spool

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory spool for tests and processes that can
// afford to lose undelivered events on exit.
type MemoryStore struct {
	opts options

	mu      sync.RWMutex
	records []storedRecord // append order
	closed  bool
	dropped uint64
}

// storedRecord holds the at-rest form of a record.
type storedRecord struct {
	id          string
	atomID      int32
	data        []byte
	compression Compression
	size        int
	attempts    int
	createdAt   time.Time
}

// NewMemoryStore creates an empty in-memory spool.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{opts: applyOptions(opts)}
}

// Append implements Store.
func (m *MemoryStore) Append(atomID int32, payload []byte) (string, error) {
	data, compression, err := encode(payload, m.opts.compression)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", ErrStoreClosed
	}

	id := uuid.NewString()
	m.records = append(m.records, storedRecord{
		id:          id,
		atomID:      atomID,
		data:        data,
		compression: compression,
		size:        len(payload),
		createdAt:   m.opts.now(),
	})

	if limit := m.opts.maxRecords; limit > 0 && len(m.records) > limit {
		excess := len(m.records) - limit
		m.dropped += uint64(excess)
		m.records = append(m.records[:0:0], m.records[excess:]...)
	}
	return id, nil
}

// Pending implements Store.
func (m *MemoryStore) Pending(limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	n := len(m.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, 0, n)
	for _, r := range m.records[:n] {
		payload, err := decode(r.data, r.compression, r.size)
		if err != nil {
			return nil, err
		}
		out = append(out, Record{
			ID:        r.id,
			AtomID:    r.atomID,
			Payload:   payload,
			Attempts:  r.attempts,
			CreatedAt: r.createdAt,
		})
	}
	return out, nil
}

// Ack implements Store.
func (m *MemoryStore) Ack(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if i := m.indexOf(id); i >= 0 {
		m.records = append(m.records[:i], m.records[i+1:]...)
	}
	return nil
}

// Attempt implements Store.
func (m *MemoryStore) Attempt(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	m.records[i].attempts++
	return nil
}

// Count implements Store.
func (m *MemoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.records), nil
}

// Dropped returns the number of records evicted by the record cap.
func (m *MemoryStore) Dropped() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dropped
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.records = nil
	return nil
}

// indexOf returns the position of id, or -1. Caller holds m.mu.
func (m *MemoryStore) indexOf(id string) int {
	for i := range m.records {
		if m.records[i].id == id {
			return i
		}
	}
	return -1
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)
