package statsevent

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/randalmurphal/statsevent/pkg/statsevent/clock"
	"github.com/stretchr/testify/require"
)

// testTimestamp is the fixed timestamp stamped by newTestEncoder.
const testTimestamp int64 = 0x0102030405060708

// newTestEncoder returns an encoder with its own pool and a fixed clock.
func newTestEncoder() *Encoder {
	return NewEncoder(WithPool(NewPool()), WithClock(clock.Fixed(testTimestamp)))
}

// payloadReader reads a payload positionally for assertions.
type payloadReader struct {
	t    *testing.T
	data []byte
	pos  int
}

func newPayloadReader(t *testing.T, data []byte, pos int) *payloadReader {
	return &payloadReader{t: t, data: data, pos: pos}
}

func (r *payloadReader) need(n int) {
	r.t.Helper()
	require.LessOrEqual(r.t, r.pos+n, len(r.data), "read past end of payload at %d", r.pos)
}

func (r *payloadReader) byte() byte {
	r.t.Helper()
	r.need(1)
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *payloadReader) int32() int32 {
	r.t.Helper()
	r.need(4)
	v := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v
}

func (r *payloadReader) int64() int64 {
	r.t.Helper()
	r.need(8)
	v := int64(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v
}

func (r *payloadReader) float32() float32 {
	r.t.Helper()
	return math.Float32frombits(uint32(r.int32()))
}

func (r *payloadReader) string() string {
	r.t.Helper()
	n := int(r.int32())
	r.need(n)
	v := string(r.data[r.pos : r.pos+n])
	r.pos += n
	return v
}

// tag builds the expected tag byte.
func tag(typeID TypeID, annotations int) byte {
	return byte(annotations)<<4 | byte(typeID)
}

// requireHeader checks the fixed header and returns a reader positioned
// at the first user field.
func requireHeader(t *testing.T, payload []byte, count byte, timestampNs int64, atomID int32) *payloadReader {
	t.Helper()
	r := newPayloadReader(t, payload, 0)
	require.Equal(t, tag(TypeObject, 0), r.byte(), "object tag")
	require.Equal(t, count, r.byte(), "element count")
	require.Equal(t, tag(TypeInt64, 0), r.byte(), "timestamp tag")
	require.Equal(t, timestampNs, r.int64(), "timestamp")
	require.Equal(t, tag(TypeInt32, 0), r.byte(), "atom id tag")
	require.Equal(t, atomID, r.int32(), "atom id")
	require.Equal(t, HeaderSize, r.pos)
	return r
}

// requireErrorRecord checks a payload cut back to header + errors field.
func requireErrorRecord(t *testing.T, ev *Event, timestampNs int64, atomID int32, mask ErrorMask) {
	t.Helper()
	require.Equal(t, HeaderSize+5, ev.NumBytes())
	r := requireHeader(t, ev.Bytes(), errorRecordNumElements, timestampNs, atomID)
	require.Equal(t, tag(TypeErrors, 0), r.byte(), "errors tag")
	require.Equal(t, int32(mask), r.int32(), "error mask %s", mask)
	require.Equal(t, mask, ev.ErrorMask())
}
