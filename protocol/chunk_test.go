package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitChunks(t *testing.T) {
	frame := []byte{0xA0, 0x01, 0x06, 0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66}

	chunks, err := SplitChunks(frame, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]byte{
		{0xA0, 0x01, 0x06, 0x00},
		{0xA1, 0x11, 0x22, 0x33},
		{0xA1, 0x44, 0x55, 0x66},
	}
	if diff := cmp.Diff(want, chunks); diff != "" {
		t.Errorf("SplitChunks() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitChunksPadding(t *testing.T) {
	frame := []byte{0x0A, 0x01, 0x03, 0x00, 0x01}

	chunks, err := SplitChunks(frame, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if diff := cmp.Diff([]byte{0x0A, 0x01, 0x03, 0x00, 0x01, 0x00, 0x00, 0x00}, chunks[0]); diff != "" {
		t.Errorf("chunk mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitChunksInvalid(t *testing.T) {
	if _, err := SplitChunks([]byte{0x01, 0x02, 0x03, 0x04}, 3); err == nil {
		t.Error("expected error for chunk size below header size")
	}
	if _, err := SplitChunks(nil, 64); err == nil {
		t.Error("expected error for empty frame")
	}
}

func reassemble(t *testing.T, chunks [][]byte) ([]byte, error) {
	t.Helper()

	var r Reassembler
	for i, chunk := range chunks {
		done, err := r.Add(chunk)
		if err != nil {
			return nil, err
		}
		if done && i != len(chunks)-1 {
			t.Fatalf("reassembly finished after chunk %d of %d", i+1, len(chunks))
		}
	}
	return r.Frame()
}

func TestReassembleLengths(t *testing.T) {
	const chunkSize = 64

	for _, n := range []int{0, chunkSize - 1, chunkSize, chunkSize + 1, 5*chunkSize + 3} {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i * 7)
		}

		msg := NewMessage(CategoryMCU, CmdMCU, payload)
		frame, err := msg.Encode(true)
		if err != nil {
			t.Fatalf("Encode() error: %v", err)
		}

		chunks, err := SplitChunks(frame, chunkSize)
		if err != nil {
			t.Fatalf("SplitChunks() error: %v", err)
		}

		got, err := reassemble(t, chunks)
		if err != nil {
			t.Fatalf("len %d: reassemble error: %v", n, err)
		}
		if !bytes.Equal(got, frame) {
			t.Fatalf("len %d: reassembled frame differs from original", n)
		}

		decoded, err := DecodeMessage(got, true)
		if err != nil {
			t.Fatalf("len %d: DecodeMessage() error: %v", n, err)
		}
		if len(decoded.Payload) != n || !bytes.Equal(decoded.Payload, payload) {
			t.Errorf("len %d: payload mismatch, got %d bytes", n, len(decoded.Payload))
		}
	}
}

func TestReassembleContinuationMismatch(t *testing.T) {
	msg := NewMessage(CategoryConfig, CmdUploadConfig, make([]byte, 200))
	frame, err := msg.Encode(true)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	chunks, err := SplitChunks(frame, 64)
	if err != nil {
		t.Fatalf("SplitChunks() error: %v", err)
	}

	for corrupt := 1; corrupt < len(chunks); corrupt++ {
		bad := make([][]byte, len(chunks))
		for i := range chunks {
			bad[i] = append([]byte(nil), chunks[i]...)
		}
		bad[corrupt][0] = 0x0B

		_, err := reassemble(t, bad)
		var framingErr *FramingError
		if !errors.As(err, &framingErr) {
			t.Fatalf("chunk %d: error = %v, want *FramingError", corrupt, err)
		}
		if framingErr.Actual != 0x0B {
			t.Errorf("chunk %d: Actual = 0x%02X, want 0x0B", corrupt, framingErr.Actual)
		}
	}
}

func TestContinuationMatches(t *testing.T) {
	tests := []struct {
		first, b byte
		want     bool
	}{
		{0x0A, 0x0B, true},
		{0x0A, 0x0A, true},
		{0x0D, 0x0D, true}, // odd category: flag already set
		{0x0D, 0x0C, true},
		{0x0A, 0x09, false},
		{0x03, 0x0B, false},
	}

	for _, tt := range tests {
		if got := ContinuationMatches(tt.first, tt.b); got != tt.want {
			t.Errorf("ContinuationMatches(0x%02X, 0x%02X) = %v, want %v", tt.first, tt.b, got, tt.want)
		}
	}
}

func TestReassemblerIncomplete(t *testing.T) {
	var r Reassembler
	done, err := r.Add([]byte{0x0A, 0x01, 0x10, 0x00, 0x01})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done {
		t.Fatal("reassembly reported done for a partial message")
	}
	if _, err := r.Frame(); !IsFramingError(err) {
		t.Errorf("Frame() error = %v, want FramingError", err)
	}

	r.Reset()
	if r.Done() {
		t.Error("Done() = true after Reset")
	}
}
