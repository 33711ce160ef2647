package usbtrace

import (
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// Transfer directions.
const (
	OpWrite = "write"
	OpRead  = "read"
)

// Transfer is one recorded bulk transfer.
type Transfer struct {
	Op       string `cbor:"op"`
	Endpoint uint8  `cbor:"ep"`
	Data     []byte `cbor:"data,omitempty"`

	// Timeout marks a transfer that timed out; Err holds any other failure
	Timeout bool   `cbor:"timeout,omitempty"`
	Err     string `cbor:"err,omitempty"`
}

// Trace is a recorded session.
type Trace struct {
	Variant   string     `cbor:"variant"`
	Transfers []Transfer `cbor:"transfers"`
}

// WriteTo encodes the trace as CBOR.
func (t *Trace) WriteTo(w io.Writer) (int64, error) {
	data, err := cbor.Marshal(t)
	if err != nil {
		return 0, fmt.Errorf("encode trace: %w", err)
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Save writes the trace to path.
func (t *Trace) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace: %w", err)
	}
	if _, err := t.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load decodes a trace written by WriteTo. Unknown fields are rejected.
func Load(r io.Reader) (*Trace, error) {
	decMode, err := cbor.DecOptions{ExtraReturnErrors: cbor.ExtraDecErrorUnknownField}.DecMode()
	if err != nil {
		return nil, err
	}

	var t Trace
	if err := decMode.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	return &t, nil
}

// LoadFile decodes the trace stored at path.
func LoadFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	return Load(f)
}
