// Package transport delivers encoded event payloads to the stats
// collector.
//
// Each payload travels as one datagram prefixed with a 4 byte
// little-endian EventTag. The framed datagram may not exceed
// statsevent.LoggerEntryMaxPayload bytes, which is why the encoder caps
// payloads at statsevent.MaxPayloadSize.
package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/randalmurphal/statsevent/pkg/statsevent"
	sterrors "github.com/randalmurphal/statsevent/pkg/statsevent/errors"
)

// EventTag identifies a stats event datagram.
const EventTag uint32 = 1937006964

// Writer sends one encoded event. Implementations must not retain
// payload after returning; the caller releases it to the pool.
type Writer interface {
	WriteEvent(ctx context.Context, atomID int32, payload []byte) error
}

// Sentinel errors.
var (
	// ErrClosed indicates a write on a closed writer.
	ErrClosed = errors.New("transport closed")

	// ErrShortFrame indicates a datagram too small to hold the event tag.
	ErrShortFrame = errors.New("datagram shorter than frame header")

	// ErrBadTag indicates a datagram whose tag is not EventTag.
	ErrBadTag = errors.New("unexpected datagram tag")
)

// SendError wraps a failed delivery with the event it carried.
type SendError struct {
	// AtomID is the atom of the event being sent.
	AtomID int32
	// Op is the step that failed ("frame", "dial", "write").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SendError) Error() string {
	return fmt.Sprintf("send atom %d: %s: %v", e.AtomID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SendError) Unwrap() error {
	return e.Err
}

// AppendFrame appends the framed datagram for payload to dst.
// A frame larger than LoggerEntryMaxPayload is rejected with a
// *errors.PayloadTooLargeError.
func AppendFrame(dst, payload []byte) ([]byte, error) {
	size := statsevent.FrameHeaderSize + len(payload)
	if size > statsevent.LoggerEntryMaxPayload {
		return dst, &sterrors.PayloadTooLargeError{Size: size, Max: statsevent.LoggerEntryMaxPayload}
	}
	dst = binary.LittleEndian.AppendUint32(dst, EventTag)
	return append(dst, payload...), nil
}

// ParseFrame returns the payload carried by a framed datagram. The
// result aliases datagram.
func ParseFrame(datagram []byte) ([]byte, error) {
	if len(datagram) < statsevent.FrameHeaderSize {
		return nil, ErrShortFrame
	}
	if tag := binary.LittleEndian.Uint32(datagram); tag != EventTag {
		return nil, fmt.Errorf("%w: %d", ErrBadTag, tag)
	}
	return datagram[statsevent.FrameHeaderSize:], nil
}
