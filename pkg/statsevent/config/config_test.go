package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/statsevent/pkg/statsevent/config"
)

func TestNew(t *testing.T) {
	assert.NotNil(t, config.New(nil).Raw())
	assert.Equal(t, "v", config.New(map[string]any{"k": "v"}).String("k", ""))
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		key  string
		want string
	}{
		{"key exists", map[string]any{"name": "statsd"}, "name", "statsd"},
		{"key missing", map[string]any{"other": "value"}, "name", "default"},
		{"empty string", map[string]any{"name": ""}, "name", ""},
		{"wrong type", map[string]any{"name": 123}, "name", "default"},
		{"nested", map[string]any{"socket": map[string]any{"address": "/tmp/s"}}, "socket.address", "/tmp/s"},
		{"nested missing leaf", map[string]any{"socket": map[string]any{}}, "socket.address", "default"},
		{"nested through scalar", map[string]any{"socket": "x"}, "socket.address", "default"},
		{"literal dotted key wins", map[string]any{"a.b": "flat", "a": map[string]any{"b": "nested"}}, "a.b", "flat"},
		{"yaml any-keyed map", map[string]any{"a": map[any]any{"b": "v"}}, "a.b", "v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, config.New(tt.data).String(tt.key, "default"))
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want time.Duration
	}{
		{"string", "250ms", 250 * time.Millisecond},
		{"invalid string", "soon", time.Minute},
		{"int seconds", 2, 2 * time.Second},
		{"int64 seconds", int64(3), 3 * time.Second},
		{"float seconds", 0.5, 500 * time.Millisecond},
		{"duration", 7 * time.Millisecond, 7 * time.Millisecond},
		{"wrong type", true, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(map[string]any{"retry": map[string]any{"max_backoff": tt.val}})
			assert.Equal(t, tt.want, cfg.Duration("retry.max_backoff", time.Minute))
		})
	}
}

func TestIntFloatBool(t *testing.T) {
	cfg := config.New(map[string]any{
		"int":      5,
		"int64":    int64(6),
		"whole":    7.0,
		"fraction": 7.5,
		"flag":     true,
		"str":      "x",
	})

	assert.Equal(t, 5, cfg.Int("int", 0))
	assert.Equal(t, 6, cfg.Int("int64", 0))
	assert.Equal(t, 7, cfg.Int("whole", 0))
	assert.Equal(t, -1, cfg.Int("fraction", -1))
	assert.Equal(t, -1, cfg.Int("str", -1))

	assert.Equal(t, 7.5, cfg.Float("fraction", 0))
	assert.Equal(t, 5.0, cfg.Float("int", 0))
	assert.Equal(t, 6.0, cfg.Float("int64", 0))
	assert.Equal(t, 1.5, cfg.Float("str", 1.5))

	assert.True(t, cfg.Bool("flag", false))
	assert.True(t, cfg.Bool("missing", true))
	assert.False(t, cfg.Bool("str", false))
}

func TestStringSlice(t *testing.T) {
	cfg := config.New(map[string]any{
		"typed": []string{"a", "b"},
		"any":   []any{"c", "d"},
		"mixed": []any{"e", 1},
	})

	assert.Equal(t, []string{"a", "b"}, cfg.StringSlice("typed", nil))
	assert.Equal(t, []string{"c", "d"}, cfg.StringSlice("any", nil))
	assert.Equal(t, []string{"z"}, cfg.StringSlice("mixed", []string{"z"}))
	assert.Nil(t, cfg.StringSlice("missing", nil))
}

func TestSubAndHas(t *testing.T) {
	cfg := config.New(map[string]any{
		"spool": map[string]any{"path": "/tmp/spool.db", "max_records": 10},
		"flat":  1,
	})

	spool := cfg.Sub("spool")
	assert.Equal(t, "/tmp/spool.db", spool.String("path", ""))
	assert.Equal(t, 10, spool.Int("max_records", 0))

	assert.Empty(t, cfg.Sub("missing").Raw())
	assert.Empty(t, cfg.Sub("flat").Raw())

	assert.True(t, cfg.Has("spool.path"))
	assert.False(t, cfg.Has("spool.compression"))
	assert.Equal(t, "fallback", cfg.Any("nope", "fallback"))
}

func TestFromYAML(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
socket:
  network: udp
  address: 127.0.0.1:9125
retry:
  max_attempts: 5
  initial_backoff: 20ms
`))
	require.NoError(t, err)

	assert.Equal(t, "udp", cfg.String("socket.network", ""))
	assert.Equal(t, 5, cfg.Int("retry.max_attempts", 0))
	assert.Equal(t, 20*time.Millisecond, cfg.Duration("retry.initial_backoff", 0))

	_, err = config.FromYAML([]byte("a: [unclosed"))
	assert.Error(t, err)
}

func TestFromJSON(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"spool": {"max_records": 100, "compression": "lz4"}}`))
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Int("spool.max_records", 0))
	assert.Equal(t, "lz4", cfg.String("spool.compression", ""))

	_, err = config.FromJSON([]byte(`{`))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "statslog.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("log:\n  level: debug\n"), 0o600))
	cfg, err := config.FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.String("log.level", ""))

	jsonPath := filepath.Join(dir, "statslog.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"log": {"format": "json"}}`), 0o600))
	cfg, err = config.FromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.String("log.format", ""))

	_, err = config.FromFile(filepath.Join(dir, "statslog.toml"))
	assert.Error(t, err)

	tomlPath := filepath.Join(dir, "statslog.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("x = 1"), 0o600))
	_, err = config.FromFile(tomlPath)
	assert.ErrorContains(t, err, "unsupported config file extension")
}
