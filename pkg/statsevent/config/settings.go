package config

import (
	"fmt"
	"log/slog"
	"time"

	sterrors "github.com/randalmurphal/statsevent/pkg/statsevent/errors"
)

// Settings is the resolved configuration of a statsevent client.
type Settings struct {
	SocketNetwork string
	SocketAddress string

	// SpoolPath is the SQLite spool file. Empty keeps the spool in memory.
	SpoolPath        string
	SpoolCompression string
	SpoolMaxRecords  int

	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryBackoffFactor  float64
	RetryJitter         float64

	Metrics bool
	Tracing bool

	LogLevel  slog.Level
	LogFormat string

	// AtomsFile is an optional atom catalog.
	AtomsFile string
}

// Defaults.
const (
	DefaultSocketNetwork   = "unixgram"
	DefaultSocketAddress   = "/dev/socket/statsdw"
	DefaultSpoolMaxRecords = 10000
	DefaultLogFormat       = "text"
)

// DefaultSettings returns the settings used for keys that are not set.
func DefaultSettings() Settings {
	return Settings{
		SocketNetwork:       DefaultSocketNetwork,
		SocketAddress:       DefaultSocketAddress,
		SpoolCompression:    "none",
		SpoolMaxRecords:     DefaultSpoolMaxRecords,
		RetryMaxAttempts:    sterrors.DefaultRetry.MaxAttempts,
		RetryInitialBackoff: sterrors.DefaultRetry.InitialBackoff,
		RetryMaxBackoff:     sterrors.DefaultRetry.MaxBackoff,
		RetryBackoffFactor:  sterrors.DefaultRetry.BackoffFactor,
		RetryJitter:         sterrors.DefaultRetry.Jitter,
		LogLevel:            slog.LevelInfo,
		LogFormat:           DefaultLogFormat,
	}
}

// LoadSettings resolves Settings from cfg, using DefaultSettings for
// missing keys, and validates the result.
func LoadSettings(cfg Config) (Settings, error) {
	d := DefaultSettings()
	s := Settings{
		SocketNetwork:       cfg.String("socket.network", d.SocketNetwork),
		SocketAddress:       cfg.String("socket.address", d.SocketAddress),
		SpoolPath:           cfg.String("spool.path", d.SpoolPath),
		SpoolCompression:    cfg.String("spool.compression", d.SpoolCompression),
		SpoolMaxRecords:     cfg.Int("spool.max_records", d.SpoolMaxRecords),
		RetryMaxAttempts:    cfg.Int("retry.max_attempts", d.RetryMaxAttempts),
		RetryInitialBackoff: cfg.Duration("retry.initial_backoff", d.RetryInitialBackoff),
		RetryMaxBackoff:     cfg.Duration("retry.max_backoff", d.RetryMaxBackoff),
		RetryBackoffFactor:  cfg.Float("retry.backoff_factor", d.RetryBackoffFactor),
		RetryJitter:         cfg.Float("retry.jitter", d.RetryJitter),
		Metrics:             cfg.Bool("observability.metrics", d.Metrics),
		Tracing:             cfg.Bool("observability.tracing", d.Tracing),
		LogLevel:            d.LogLevel,
		LogFormat:           cfg.String("log.format", d.LogFormat),
		AtomsFile:           cfg.String("atoms.file", d.AtomsFile),
	}

	if level := cfg.String("log.level", ""); level != "" {
		if err := s.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return Settings{}, fmt.Errorf("log.level: %w", err)
		}
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	switch s.SocketNetwork {
	case "unixgram", "udp", "udp4", "udp6":
	default:
		return fmt.Errorf("socket.network: unsupported network %q", s.SocketNetwork)
	}
	if s.SocketAddress == "" {
		return fmt.Errorf("socket.address: must not be empty")
	}
	switch s.SpoolCompression {
	case "", "none", "lz4", "zstd":
	default:
		return fmt.Errorf("spool.compression: unknown compression %q", s.SpoolCompression)
	}
	if s.SpoolMaxRecords < 0 {
		return fmt.Errorf("spool.max_records: must not be negative, got %d", s.SpoolMaxRecords)
	}
	if s.RetryMaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts: must be at least 1, got %d", s.RetryMaxAttempts)
	}
	if s.RetryInitialBackoff < 0 || s.RetryMaxBackoff < 0 {
		return fmt.Errorf("retry: backoff must not be negative")
	}
	if s.RetryMaxBackoff > 0 && s.RetryMaxBackoff < s.RetryInitialBackoff {
		return fmt.Errorf("retry.max_backoff %s is below retry.initial_backoff %s",
			s.RetryMaxBackoff, s.RetryInitialBackoff)
	}
	if s.RetryBackoffFactor < 1 {
		return fmt.Errorf("retry.backoff_factor: must be at least 1, got %g", s.RetryBackoffFactor)
	}
	if s.RetryJitter < 0 || s.RetryJitter > 1 {
		return fmt.Errorf("retry.jitter: must be between 0 and 1, got %g", s.RetryJitter)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: must be text or json, got %q", s.LogFormat)
	}
	return nil
}

// Retry returns the retry policy described by the settings.
func (s Settings) Retry() sterrors.RetryConfig {
	return sterrors.NewRetryConfig(
		sterrors.WithMaxAttempts(s.RetryMaxAttempts),
		sterrors.WithInitialBackoff(s.RetryInitialBackoff),
		sterrors.WithMaxBackoff(s.RetryMaxBackoff),
		sterrors.WithBackoffFactor(s.RetryBackoffFactor),
		sterrors.WithJitter(s.RetryJitter),
	)
}
