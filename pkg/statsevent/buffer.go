package statsevent

import (
	"encoding/binary"
	"math"
)

// Buffer is a fixed-capacity scratch region one event is serialized
// into. Every write is bounds-checked: a write that does not fit is
// dropped whole, sets the overflow flag and reports 0 bytes written.
//
// A Buffer is owned by exactly one Builder or Event at a time and is
// not safe for concurrent use.
type Buffer struct {
	bytes    [MaxPayloadSize]byte
	overflow bool
}

// NewBuffer allocates a buffer outside of any pool.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Cap returns the buffer capacity in bytes.
func (b *Buffer) Cap() int {
	return len(b.bytes)
}

// HasOverflowed reports whether any write since the last reset was
// dropped for lack of space.
func (b *Buffer) HasOverflowed() bool {
	return b.overflow
}

// Bytes returns the whole backing array. Callers slice it to the
// length they wrote.
func (b *Buffer) Bytes() []byte {
	return b.bytes[:]
}

func (b *Buffer) reset() {
	b.overflow = false
}

// hasEnoughSpace keeps one trailing byte in reserve: a write of width n
// at offset succeeds only if offset+n is strictly below capacity.
func (b *Buffer) hasEnoughSpace(offset, n int) bool {
	if offset < 0 || offset+n >= len(b.bytes) {
		b.overflow = true
		return false
	}
	return true
}

// PutByte writes v at offset.
func (b *Buffer) PutByte(offset int, v byte) int {
	if !b.hasEnoughSpace(offset, 1) {
		return 0
	}
	b.bytes[offset] = v
	return 1
}

// PutBool writes v as a single 0 or 1 byte.
func (b *Buffer) PutBool(offset int, v bool) int {
	if v {
		return b.PutByte(offset, 1)
	}
	return b.PutByte(offset, 0)
}

// PutInt32 writes v as 4 little-endian bytes.
func (b *Buffer) PutInt32(offset int, v int32) int {
	if !b.hasEnoughSpace(offset, 4) {
		return 0
	}
	binary.LittleEndian.PutUint32(b.bytes[offset:], uint32(v))
	return 4
}

// PutInt64 writes v as 8 little-endian bytes.
func (b *Buffer) PutInt64(offset int, v int64) int {
	if !b.hasEnoughSpace(offset, 8) {
		return 0
	}
	binary.LittleEndian.PutUint64(b.bytes[offset:], uint64(v))
	return 8
}

// PutFloat32 writes the IEEE-754 bit pattern of v as 4 little-endian bytes.
func (b *Buffer) PutFloat32(offset int, v float32) int {
	return b.PutInt32(offset, int32(math.Float32bits(v)))
}

// PutBytes copies v to offset.
func (b *Buffer) PutBytes(offset int, v []byte) int {
	if !b.hasEnoughSpace(offset, len(v)) {
		return 0
	}
	return copy(b.bytes[offset:], v)
}
