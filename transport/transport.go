package transport

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/moffa90/go-goodixtls/protocol"
)

// Default transfer parameters of the 5395 family.
const (
	DefaultMaxChunkIn  = 0x2000
	DefaultMaxChunkOut = 0x40
	DefaultReadTimeout = 2000 * time.Millisecond
)

// Device is a claimed USB interface able to perform bulk transfers.
//
// BulkRead returns at most maxLen bytes. A zero-length result is valid and
// means the device sent an empty packet.
type Device interface {
	BulkWrite(endpoint uint8, data []byte, timeout time.Duration) error
	BulkRead(endpoint uint8, maxLen int, timeout time.Duration) ([]byte, error)
	IsOpen() bool
}

// Logger receives transfer traces. It has the same method set as
// sensor.Logger, so either one can be passed where the other is expected.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Config holds the endpoint layout of a claimed interface.
type Config struct {
	// EndpointIn is the bulk IN endpoint address
	EndpointIn uint8

	// EndpointOut is the bulk OUT endpoint address
	EndpointOut uint8

	// MaxChunkIn is the read buffer size of one bulk IN transfer
	MaxChunkIn int

	// MaxChunkOut is the exact size of every bulk OUT transfer
	MaxChunkOut int

	// ReadTimeout is the per-chunk timeout used by ReceiveMessageBytes
	ReadTimeout time.Duration

	// Logger traces every transfer at debug level (optional)
	Logger Logger
}

// Transport sends and receives chunked frames over a Device.
//
// A Transport is not safe for concurrent use; one goroutine owns it together
// with its device.
type Transport struct {
	dev Device
	cfg Config
}

// New creates a Transport. Zero chunk sizes and read timeout are replaced
// with the defaults.
func New(dev Device, cfg Config) *Transport {
	if dev == nil {
		panic("device cannot be nil")
	}

	if cfg.MaxChunkIn <= 0 {
		cfg.MaxChunkIn = DefaultMaxChunkIn
	}
	if cfg.MaxChunkOut <= 0 {
		cfg.MaxChunkOut = DefaultMaxChunkOut
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	return &Transport{dev: dev, cfg: cfg}
}

// Config returns the effective configuration.
func (t *Transport) Config() Config {
	return t.cfg
}

// Send writes an encoded frame as a sequence of fixed-size chunks.
// Any failure aborts the remaining chunks; nothing is retried.
func (t *Transport) Send(ctx context.Context, frame []byte, timeout time.Duration) error {
	chunks, err := protocol.SplitChunks(frame, t.cfg.MaxChunkOut)
	if err != nil {
		return err
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("send cancelled after %d of %d chunks: %w", i, len(chunks), err)
		}
		if !t.dev.IsOpen() {
			return &TransferError{Op: "write", Endpoint: t.cfg.EndpointOut, Err: ErrClosed}
		}

		t.logDebug("tx", "endpoint", fmt.Sprintf("0x%02X", t.cfg.EndpointOut), "data", hex.EncodeToString(chunk))

		if err := t.dev.BulkWrite(t.cfg.EndpointOut, chunk, timeout); err != nil {
			t.logError("bulk write failed", "chunk", i, "error", err)
			return &TransferError{Op: "write", Endpoint: t.cfg.EndpointOut, Err: err}
		}
	}

	return nil
}

// ReceiveChunk performs one bulk read of up to MaxChunkIn bytes.
// Zero-length reads are re-issued with the same timeout until data arrives,
// a transfer fails or ctx ends.
func (t *Transport) ReceiveChunk(ctx context.Context, timeout time.Duration) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("receive cancelled: %w", err)
		}
		if !t.dev.IsOpen() {
			return nil, &TransferError{Op: "read", Endpoint: t.cfg.EndpointIn, Err: ErrClosed}
		}

		data, err := t.dev.BulkRead(t.cfg.EndpointIn, t.cfg.MaxChunkIn, timeout)
		if err != nil {
			return nil, &TransferError{Op: "read", Endpoint: t.cfg.EndpointIn, Err: err}
		}
		if len(data) == 0 {
			t.logDebug("empty packet, reading again")
			continue
		}

		t.logDebug("rx", "endpoint", fmt.Sprintf("0x%02X", t.cfg.EndpointIn), "data", hex.EncodeToString(data))
		return data, nil
	}
}

// ReceiveMessageBytes reads chunks until one whole frame has been received
// and returns it without padding.
//
// Returns a *protocol.FramingError if the first chunk is shorter than a
// header or a continuation chunk does not belong to the message.
func (t *Transport) ReceiveMessageBytes(ctx context.Context) ([]byte, error) {
	var r protocol.Reassembler
	for {
		chunk, err := t.ReceiveChunk(ctx, t.cfg.ReadTimeout)
		if err != nil {
			return nil, err
		}

		done, err := r.Add(chunk)
		if err != nil {
			return nil, err
		}
		if done {
			return r.Frame()
		}
	}
}

// Drain reads and discards chunks until a read fails, usually on timeout,
// and returns the number of discarded chunks. Only cancellation is reported
// as an error.
func (t *Transport) Drain(ctx context.Context, timeout time.Duration) (int, error) {
	discarded := 0
	for {
		if err := ctx.Err(); err != nil {
			return discarded, fmt.Errorf("drain cancelled: %w", err)
		}
		if !t.dev.IsOpen() {
			return discarded, nil
		}

		data, err := t.dev.BulkRead(t.cfg.EndpointIn, t.cfg.MaxChunkIn, timeout)
		if err != nil {
			if discarded > 0 {
				t.logDebug("drained stale chunks", "count", discarded)
			}
			return discarded, nil
		}
		if len(data) > 0 {
			discarded++
		}
	}
}

func (t *Transport) logDebug(msg string, keysAndValues ...interface{}) {
	if t.cfg.Logger != nil {
		t.cfg.Logger.Debug(msg, keysAndValues...)
	}
}

func (t *Transport) logError(msg string, keysAndValues ...interface{}) {
	if t.cfg.Logger != nil {
		t.cfg.Logger.Error(msg, keysAndValues...)
	}
}
