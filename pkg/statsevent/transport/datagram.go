package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/randalmurphal/statsevent/pkg/statsevent"
	sterrors "github.com/randalmurphal/statsevent/pkg/statsevent/errors"
)

// DefaultWriteTimeout bounds a single datagram write when the context
// carries no earlier deadline.
const DefaultWriteTimeout = 100 * time.Millisecond

// DatagramWriter sends framed events over a connectionless socket.
//
// The socket is dialed on first use and re-dialed after a failed write,
// so a writer can be created before the collector is listening.
// DatagramWriter is safe for concurrent use.
type DatagramWriter struct {
	network string
	address string
	timeout time.Duration
	dialer  net.Dialer

	mu     sync.Mutex
	conn   net.Conn
	frame  []byte
	closed bool
}

// DatagramOption configures a DatagramWriter.
type DatagramOption func(*DatagramWriter)

// WithWriteTimeout sets the per-write timeout. Zero disables it.
func WithWriteTimeout(d time.Duration) DatagramOption {
	return func(w *DatagramWriter) {
		w.timeout = d
	}
}

// NewDatagramWriter creates a writer for network ("unixgram", "udp",
// "udp4" or "udp6") and address. No connection is made until the first
// write.
func NewDatagramWriter(network, address string, opts ...DatagramOption) (*DatagramWriter, error) {
	switch network {
	case "unixgram", "udp", "udp4", "udp6":
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
	if address == "" {
		return nil, errors.New("address is required")
	}

	w := &DatagramWriter{
		network: network,
		address: address,
		timeout: DefaultWriteTimeout,
		frame:   make([]byte, 0, statsevent.LoggerEntryMaxPayload),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Network returns the socket network.
func (w *DatagramWriter) Network() string { return w.network }

// Address returns the socket address.
func (w *DatagramWriter) Address() string { return w.address }

// WriteEvent frames payload and sends it as one datagram.
func (w *DatagramWriter) WriteEvent(ctx context.Context, atomID int32, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return &SendError{AtomID: atomID, Op: "write", Err: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return &SendError{AtomID: atomID, Op: "write", Err: ErrClosed}
	}

	frame, err := AppendFrame(w.frame[:0], payload)
	if err != nil {
		return &SendError{AtomID: atomID, Op: "frame", Err: err}
	}
	w.frame = frame

	if w.conn == nil {
		conn, err := w.dialer.DialContext(ctx, w.network, w.address)
		if err != nil {
			return &SendError{AtomID: atomID, Op: "dial", Err: err}
		}
		w.conn = conn
	}

	if deadline, ok := w.deadline(ctx); ok {
		if err := w.conn.SetWriteDeadline(deadline); err != nil {
			w.dropConn()
			return &SendError{AtomID: atomID, Op: "write", Err: err}
		}
	}

	if _, err := w.conn.Write(frame); err != nil {
		w.dropConn()
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			err = &sterrors.TimeoutError{Operation: "write datagram", Duration: w.timeout}
		}
		return &SendError{AtomID: atomID, Op: "write", Err: err}
	}
	return nil
}

func (w *DatagramWriter) deadline(ctx context.Context) (time.Time, bool) {
	ctxDeadline, hasCtx := ctx.Deadline()
	if w.timeout <= 0 {
		return ctxDeadline, hasCtx
	}
	deadline := time.Now().Add(w.timeout)
	if hasCtx && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	return deadline, true
}

// dropConn discards the connection so the next write re-dials.
// Caller holds w.mu.
func (w *DatagramWriter) dropConn() {
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
}

// Close closes the socket. Further writes fail with ErrClosed.
func (w *DatagramWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}
