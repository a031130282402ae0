package spool

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists spooled events to SQLite so they survive a
// restart. It is suitable for single-process production use.
type SQLiteStore struct {
	db   *sql.DB
	opts options

	mu      sync.RWMutex
	closed  bool
	dropped uint64
}

// NewSQLiteStore creates a SQLite spool.
// The path should be a file path (e.g., "./spool.db") or ":memory:" for testing.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS spool (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			atom_id INTEGER NOT NULL,
			payload BLOB NOT NULL,
			compression INTEGER NOT NULL,
			size INTEGER NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db, opts: applyOptions(opts)}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(atomID int32, payload []byte) (string, error) {
	data, compression, err := encode(payload, s.opts.compression)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	id := uuid.NewString()
	if _, err := tx.Exec(`
		INSERT INTO spool (id, atom_id, payload, compression, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, atomID, data, int(compression), len(payload),
		s.opts.now().Format(time.RFC3339Nano)); err != nil {
		return "", fmt.Errorf("append record: %w", err)
	}

	var dropped int64
	if limit := s.opts.maxRecords; limit > 0 {
		res, err := tx.Exec(`
			DELETE FROM spool WHERE seq IN (
				SELECT seq FROM spool ORDER BY seq DESC LIMIT -1 OFFSET ?
			)
		`, limit)
		if err != nil {
			return "", fmt.Errorf("trim spool: %w", err)
		}
		dropped, _ = res.RowsAffected()
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit append: %w", err)
	}
	s.dropped += uint64(dropped)
	return id, nil
}

// Pending implements Store.
func (s *SQLiteStore) Pending(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, atom_id, payload, compression, size, attempts, created_at
		FROM spool
		ORDER BY seq
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r           Record
			data        []byte
			compression int
			size        int
			createdAt   string
		)
		if err := rows.Scan(&r.ID, &r.AtomID, &data, &compression, &size, &r.Attempts, &createdAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Payload, err = decode(data, Compression(compression), size)
		if err != nil {
			return nil, fmt.Errorf("decode record %s: %w", r.ID, err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Ack implements Store.
func (s *SQLiteStore) Ack(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM spool WHERE id = ?`, id); err != nil {
		return fmt.Errorf("ack record: %w", err)
	}
	return nil
}

// Attempt implements Store.
func (s *SQLiteStore) Attempt(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	res, err := s.db.Exec(`UPDATE spool SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count implements Store.
func (s *SQLiteStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM spool`).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Dropped returns the number of records evicted by the record cap since
// the store was opened.
func (s *SQLiteStore) Dropped() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)
