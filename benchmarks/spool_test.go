package benchmarks

import (
	"bytes"
	"os"
	"testing"

	"github.com/randalmurphal/statsevent/pkg/statsevent/spool"
)

// samplePayload is a header followed by forty int fields.
var samplePayload = append(
	[]byte{0x07, 40, 0x01, 1, 0, 0, 0, 0, 0, 0, 0, 0x00, 105, 0, 0, 0},
	bytes.Repeat([]byte{0x00, 0x01, 0x00, 0x00, 0x00}, 40)...,
)

func BenchmarkMemoryStore_Append(b *testing.B) {
	store := spool.NewMemoryStore(spool.WithMaxRecords(1000))
	defer store.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Append(105, samplePayload)
	}
}

// BenchmarkSQLiteStore_Append measures durable spooling per compression.
func BenchmarkSQLiteStore_Append(b *testing.B) {
	for _, c := range []spool.Compression{spool.CompressionNone, spool.CompressionLZ4, spool.CompressionZstd} {
		b.Run(c.String(), func(b *testing.B) {
			store, cleanup := createSQLiteStore(b, spool.WithCompression(c), spool.WithMaxRecords(1000))
			defer cleanup()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = store.Append(105, samplePayload)
			}
		})
	}
}

// BenchmarkSQLiteStore_PendingAck measures draining one record at a time.
func BenchmarkSQLiteStore_PendingAck(b *testing.B) {
	store, cleanup := createSQLiteStore(b, spool.WithCompression(spool.CompressionLZ4))
	defer cleanup()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		_, _ = store.Append(105, samplePayload)
		b.StartTimer()

		records, _ := store.Pending(1)
		for _, r := range records {
			_ = store.Ack(r.ID)
		}
	}
}

func createSQLiteStore(b *testing.B, opts ...spool.Option) (*spool.SQLiteStore, func()) {
	b.Helper()
	tmpFile, err := os.CreateTemp("", "bench-*.db")
	if err != nil {
		b.Fatal(err)
	}
	tmpFile.Close()

	store, err := spool.NewSQLiteStore(tmpFile.Name(), opts...)
	if err != nil {
		os.Remove(tmpFile.Name())
		b.Fatal(err)
	}

	return store, func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}
}
