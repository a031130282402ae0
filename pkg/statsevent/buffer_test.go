package statsevent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_PutPrimitives(t *testing.T) {
	b := NewBuffer()

	assert.Equal(t, 1, b.PutByte(0, 0xAB))
	assert.Equal(t, 1, b.PutBool(1, true))
	assert.Equal(t, 1, b.PutBool(2, false))
	assert.Equal(t, 4, b.PutInt32(3, -2))
	assert.Equal(t, 8, b.PutInt64(7, 0x1122334455667788))
	assert.Equal(t, 4, b.PutFloat32(15, 1.5))
	assert.Equal(t, 3, b.PutBytes(19, []byte("abc")))

	want := []byte{
		0xAB, 0x01, 0x00,
		0xFE, 0xFF, 0xFF, 0xFF,
		0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11,
	}
	assert.Equal(t, want, b.Bytes()[:15])

	r := newPayloadReader(t, b.Bytes(), 15)
	assert.Equal(t, math.Float32bits(1.5), math.Float32bits(r.float32()))
	assert.Equal(t, []byte("abc"), b.Bytes()[19:22])
	assert.False(t, b.HasOverflowed())
}

func TestBuffer_Capacity(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, MaxPayloadSize, b.Cap())
	assert.Len(t, b.Bytes(), MaxPayloadSize)
	assert.Equal(t, 4064, MaxPayloadSize)
}

func TestBuffer_BoundaryIsStrict(t *testing.T) {
	tests := []struct {
		name  string
		write func(b *Buffer, offset int) int
		width int
	}{
		{"byte", func(b *Buffer, o int) int { return b.PutByte(o, 1) }, 1},
		{"bool", func(b *Buffer, o int) int { return b.PutBool(o, true) }, 1},
		{"int32", func(b *Buffer, o int) int { return b.PutInt32(o, 1) }, 4},
		{"int64", func(b *Buffer, o int) int { return b.PutInt64(o, 1) }, 8},
		{"float32", func(b *Buffer, o int) int { return b.PutFloat32(o, 1) }, 4},
		{"bytes", func(b *Buffer, o int) int { return b.PutBytes(o, []byte{1, 2, 3}) }, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer()
			// Last offset that still leaves one spare byte.
			ok := MaxPayloadSize - tt.width - 1
			assert.Equal(t, tt.width, tt.write(b, ok))
			assert.False(t, b.HasOverflowed())

			// Filling the buffer exactly is rejected.
			assert.Equal(t, 0, tt.write(b, ok+1))
			assert.True(t, b.HasOverflowed())
		})
	}
}

func TestBuffer_OverflowDoesNotPartiallyWrite(t *testing.T) {
	b := NewBuffer()
	offset := MaxPayloadSize - 4
	for i := offset; i < MaxPayloadSize; i++ {
		b.PutByte(i, 0x5A) // the last byte is rejected, the rest land
	}
	require.True(t, b.HasOverflowed())
	before := append([]byte(nil), b.Bytes()[offset:]...)

	assert.Equal(t, 0, b.PutInt64(offset, -1))
	assert.Equal(t, 0, b.PutInt32(offset, -1))
	assert.Equal(t, 0, b.PutBytes(offset, []byte{1, 2, 3, 4}))
	assert.Equal(t, before, b.Bytes()[offset:])
}

func TestBuffer_OverflowIsSticky(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, 0, b.PutBytes(0, make([]byte, MaxPayloadSize)))
	assert.True(t, b.HasOverflowed())

	// A later write that fits succeeds but does not clear the flag.
	assert.Equal(t, 4, b.PutInt32(0, 7))
	assert.True(t, b.HasOverflowed())
}

func TestBuffer_NegativeOffset(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, 0, b.PutByte(-1, 1))
	assert.True(t, b.HasOverflowed())
}

func TestBuffer_EmptyBytes(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, 0, b.PutBytes(10, nil))
	assert.False(t, b.HasOverflowed())
}
