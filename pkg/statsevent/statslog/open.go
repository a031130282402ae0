package statslog

import (
	"fmt"

	"github.com/randalmurphal/statsevent/pkg/statsevent/config"
	"github.com/randalmurphal/statsevent/pkg/statsevent/observability"
	"github.com/randalmurphal/statsevent/pkg/statsevent/spool"
	"github.com/randalmurphal/statsevent/pkg/statsevent/transport"
)

// Open builds a Logger from settings: a datagram writer for the
// configured socket, a SQLite spool when a spool path is set (in-memory
// otherwise), the retry policy, and OTel metrics and tracing when
// enabled. opts are applied last and override those choices.
func Open(settings config.Settings, opts ...Option) (*Logger, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	writer, err := transport.NewDatagramWriter(settings.SocketNetwork, settings.SocketAddress)
	if err != nil {
		return nil, fmt.Errorf("create writer: %w", err)
	}

	store, err := OpenSpool(settings)
	if err != nil {
		_ = writer.Close()
		return nil, err
	}

	base := []Option{
		WithSpool(store),
		WithRetry(settings.Retry()),
	}
	if settings.Metrics {
		base = append(base, WithMetrics(observability.NewMetricsRecorder()))
	}
	if settings.Tracing {
		base = append(base, WithSpanManager(observability.NewSpanManager()))
	}
	return New(writer, append(base, opts...)...), nil
}

// OpenSpool opens the spool described by settings.
func OpenSpool(settings config.Settings) (spool.Store, error) {
	compression, err := spool.ParseCompression(settings.SpoolCompression)
	if err != nil {
		return nil, err
	}
	opts := []spool.Option{
		spool.WithCompression(compression),
		spool.WithMaxRecords(settings.SpoolMaxRecords),
	}

	if settings.SpoolPath == "" {
		return spool.NewMemoryStore(opts...), nil
	}
	store, err := spool.NewSQLiteStore(settings.SpoolPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("open spool %s: %w", settings.SpoolPath, err)
	}
	return store, nil
}
