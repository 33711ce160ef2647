package usbtrace

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/moffa90/go-goodixtls/transport"
)

// ErrDiverged is returned by a Replayer when the host does something other
// than what the trace recorded.
var ErrDiverged = errors.New("transfer diverges from trace")

// Recorder is a transport.Device that records every transfer of the device
// it wraps.
type Recorder struct {
	dev transport.Device

	mu    sync.Mutex
	trace Trace
}

// NewRecorder wraps dev. variant names the sensor in the trace.
func NewRecorder(dev transport.Device, variant string) *Recorder {
	if dev == nil {
		panic("device cannot be nil")
	}
	return &Recorder{dev: dev, trace: Trace{Variant: variant}}
}

// BulkWrite implements transport.Device.
func (r *Recorder) BulkWrite(endpoint uint8, data []byte, timeout time.Duration) error {
	err := r.dev.BulkWrite(endpoint, data, timeout)
	r.record(OpWrite, endpoint, data, err)
	return err
}

// BulkRead implements transport.Device.
func (r *Recorder) BulkRead(endpoint uint8, maxLen int, timeout time.Duration) ([]byte, error) {
	data, err := r.dev.BulkRead(endpoint, maxLen, timeout)
	r.record(OpRead, endpoint, data, err)
	return data, err
}

// IsOpen implements transport.Device.
func (r *Recorder) IsOpen() bool {
	return r.dev.IsOpen()
}

// Close closes the wrapped device if it implements io.Closer.
func (r *Recorder) Close() error {
	if c, ok := r.dev.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Trace returns a copy of the transfers recorded so far.
func (r *Recorder) Trace() *Trace {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &Trace{Variant: r.trace.Variant}
	t.Transfers = append(t.Transfers, r.trace.Transfers...)
	return t
}

func (r *Recorder) record(op string, endpoint uint8, data []byte, err error) {
	tr := Transfer{Op: op, Endpoint: endpoint, Data: append([]byte(nil), data...)}
	if err != nil {
		if transport.IsTimeout(err) {
			tr.Timeout = true
		} else {
			tr.Err = err.Error()
		}
	}

	r.mu.Lock()
	r.trace.Transfers = append(r.trace.Transfers, tr)
	r.mu.Unlock()
}

// Replayer is a transport.Device answering from a recorded trace. Writes must
// match the trace byte for byte; reads return the recorded data.
type Replayer struct {
	mu     sync.Mutex
	trace  *Trace
	next   int
	closed bool
}

// NewReplayer creates a replayer positioned at the first transfer of t.
func NewReplayer(t *Trace) *Replayer {
	return &Replayer{trace: t}
}

// BulkWrite implements transport.Device.
func (p *Replayer) BulkWrite(endpoint uint8, data []byte, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	tr, err := p.advance(OpWrite, endpoint)
	if err != nil {
		return err
	}
	if !bytes.Equal(tr.Data, data) {
		return fmt.Errorf("%w: transfer %d wrote % X, recorded % X", ErrDiverged, p.next-1, data, tr.Data)
	}
	return tr.err()
}

// BulkRead implements transport.Device.
func (p *Replayer) BulkRead(endpoint uint8, maxLen int, timeout time.Duration) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tr, err := p.advance(OpRead, endpoint)
	if err != nil {
		return nil, err
	}
	if len(tr.Data) > maxLen {
		return nil, fmt.Errorf("%w: transfer %d read %d bytes into a %d byte buffer", ErrDiverged, p.next-1, len(tr.Data), maxLen)
	}
	if err := tr.err(); err != nil {
		return nil, err
	}
	return append([]byte(nil), tr.Data...), nil
}

// IsOpen implements transport.Device.
func (p *Replayer) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

// Close marks the replayer closed.
func (p *Replayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Remaining returns the number of transfers not yet replayed.
func (p *Replayer) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.trace.Transfers) - p.next
}

func (p *Replayer) advance(op string, endpoint uint8) (Transfer, error) {
	if p.closed {
		return Transfer{}, transport.ErrClosed
	}
	if p.next >= len(p.trace.Transfers) {
		return Transfer{}, fmt.Errorf("%w: unexpected %s after end of trace", ErrDiverged, op)
	}

	tr := p.trace.Transfers[p.next]
	if tr.Op != op || tr.Endpoint != endpoint {
		return Transfer{}, fmt.Errorf("%w: transfer %d is a %s on endpoint 0x%02X, got %s on 0x%02X",
			ErrDiverged, p.next, tr.Op, tr.Endpoint, op, endpoint)
	}
	p.next++
	return tr, nil
}

// err rebuilds the recorded failure.
func (t Transfer) err() error {
	switch {
	case t.Timeout:
		return fmt.Errorf("replayed: %w", transport.ErrTimeout)
	case t.Err != "":
		return errors.New(t.Err)
	default:
		return nil
	}
}
