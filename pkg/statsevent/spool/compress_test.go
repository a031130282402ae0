package spool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompression(t *testing.T) {
	tests := []struct {
		name string
		want Compression
	}{
		{"", CompressionNone},
		{"none", CompressionNone},
		{"lz4", CompressionLZ4},
		{"zstd", CompressionZstd},
	}
	for _, tt := range tests {
		got, err := ParseCompression(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseCompression("gzip")
	assert.Error(t, err)
	assert.Equal(t, "unknown(9)", Compression(9).String())
}

func TestEncode_FallsBackWhenIncompressible(t *testing.T) {
	for _, c := range []Compression{CompressionLZ4, CompressionZstd} {
		data := []byte{0x01, 0xfe, 0x33}
		stored, applied, err := encode(data, c)
		require.NoError(t, err)
		assert.Equal(t, CompressionNone, applied, c.String())
		assert.Equal(t, data, stored)

		data[0] = 0
		assert.Equal(t, byte(0x01), stored[0], "stored bytes must not alias input")
	}
}

func TestEncodeDecode(t *testing.T) {
	data := bytes.Repeat([]byte{0x07, 0x00, 0x01, 0x00}, 512)
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			stored, applied, err := encode(data, c)
			require.NoError(t, err)
			assert.Equal(t, c, applied)
			if c != CompressionNone {
				assert.Less(t, len(stored), len(data))
			}

			got, err := decode(stored, applied, len(data))
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestDecode_SizeMismatch(t *testing.T) {
	_, err := decode([]byte{1, 2}, CompressionNone, 3)
	assert.Error(t, err)

	stored, applied, err := encode(bytes.Repeat([]byte("a"), 256), CompressionLZ4)
	require.NoError(t, err)
	_, err = decode(stored, applied, 100)
	assert.Error(t, err)
}

func TestEncode_Unsupported(t *testing.T) {
	_, _, err := encode([]byte("x"), Compression(7))
	assert.Error(t, err)
	_, err = decode([]byte("x"), Compression(7), 1)
	assert.Error(t, err)
}
