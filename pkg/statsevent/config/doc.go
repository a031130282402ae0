/*
Package config provides type-safe configuration extraction from map[string]any
and the resolved Settings of a statsevent client.

# Overview

Config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches by returning default values. Keys may be
dotted paths into nested maps, so a YAML file like

	socket:
	  network: udp
	  address: 127.0.0.1:9125
	spool:
	  path: /var/lib/stats/spool.db
	  compression: zstd

is read with cfg.String("socket.address", "") or cfg.Sub("spool").

# Settings

LoadSettings resolves every client setting with its default and validates
the result:

	cfg, err := config.FromFile("statslog.yaml")
	if err != nil {
	    return err
	}
	settings, err := config.LoadSettings(cfg)
	if err != nil {
	    return err
	}

Recognized keys: socket.network, socket.address, spool.path,
spool.compression, spool.max_records, retry.max_attempts,
retry.initial_backoff, retry.max_backoff, observability.metrics,
observability.tracing, log.level, log.format and atoms.file.

# Type Coercion

Duration accepts a time.ParseDuration string, a time.Duration, or a number
of seconds. Int accepts a float64 only when it has no fractional part.

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
