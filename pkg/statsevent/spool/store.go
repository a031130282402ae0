// Package spool keeps events the transport could not deliver so they can
// be re-sent later.
//
// Records are kept in append order. A store may be capped with
// WithMaxRecords, in which case appending to a full store drops the
// oldest record. Payloads can be compressed at rest with lz4 or zstd.
package spool

import (
	"errors"
	"time"
)

// Store persists undelivered events.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores a copy of payload and returns the new record's id.
	Append(atomID int32, payload []byte) (string, error)

	// Pending returns up to limit records, oldest first. A limit of
	// zero or less returns every record.
	Pending(limit int) ([]Record, error)

	// Ack removes a delivered record.
	// Returns nil if the record doesn't exist.
	Ack(id string) error

	// Attempt increments a record's failed delivery count.
	// Returns ErrNotFound if the record doesn't exist.
	Attempt(id string) error

	// Count returns the number of stored records.
	Count() (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Record is one spooled event.
type Record struct {
	ID        string
	AtomID    int32
	Payload   []byte
	Attempts  int
	CreatedAt time.Time
}

// Sentinel errors for spool operations.
var (
	// ErrNotFound indicates a record doesn't exist.
	ErrNotFound = errors.New("spool record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("spool store closed")
)

// Option configures a store.
type Option func(*options)

type options struct {
	maxRecords  int
	compression Compression
	now         func() time.Time
}

func defaultOptions() options {
	return options{
		compression: CompressionNone,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithMaxRecords caps the store at n records. Appending to a full store
// drops the oldest record. Zero means unlimited.
func WithMaxRecords(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRecords = n
		}
	}
}

// WithCompression compresses payloads at rest.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithNow overrides the clock used for CreatedAt.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
