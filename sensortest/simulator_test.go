package sensortest

import (
	"context"
	"errors"
	"testing"

	"github.com/moffa90/go-goodixtls/calibration"
	"github.com/moffa90/go-goodixtls/protocol"
	"github.com/moffa90/go-goodixtls/transport"
)

func newTransport(sim *Simulator) *transport.Transport {
	return transport.New(sim, sim.Variant.TransportConfig())
}

func exchange(t *testing.T, tr *transport.Transport, msg *protocol.Message) *protocol.Message {
	t.Helper()
	frame, err := msg.Encode(true)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := tr.Send(context.Background(), frame, 0); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	reply, err := tr.ReceiveMessageBytes(context.Background())
	if err != nil {
		t.Fatalf("ReceiveMessageBytes() error = %v", err)
	}
	decoded, err := protocol.DecodeMessage(reply, true)
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	return decoded
}

func TestSimulatorAcksAndReplies(t *testing.T) {
	sim := New()
	sim.ChunkIn = 0x10
	tr := newTransport(sim)

	ack := exchange(t, tr, protocol.BuildReadOTPCmd())
	if err := protocol.CheckReply(protocol.CategoryDevice, protocol.CmdReadOTP, ack); err != nil {
		t.Fatalf("ack: %v", err)
	}

	frame, err := tr.ReceiveMessageBytes(context.Background())
	if err != nil {
		t.Fatalf("receive reply: %v", err)
	}
	reply, err := protocol.DecodeMessage(frame, true)
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	otp, err := protocol.ParseOTPReply(reply)
	if err != nil {
		t.Fatalf("ParseOTPReply() error = %v", err)
	}
	if len(otp) != 64 || otp[17] != 0x4A {
		t.Errorf("unexpected otp % X", otp)
	}

	if sim.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", sim.Pending())
	}
	if got := len(sim.Received()); got != 1 {
		t.Errorf("Received() has %d messages, want 1", got)
	}
}

func TestSimulatorTimeoutWhenIdle(t *testing.T) {
	sim := New()
	_, err := sim.BulkRead(sim.Variant.EndpointIn, 0x2000, 0)
	if !errors.Is(err, transport.ErrTimeout) {
		t.Errorf("error = %v, want ErrTimeout", err)
	}
}

func TestSimulatorRejectsUnpaddedChunk(t *testing.T) {
	sim := New()
	err := sim.BulkWrite(sim.Variant.EndpointOut, []byte{0x0A, 0x03, 0x04, 0x00}, 0)
	if err == nil {
		t.Fatal("expected error for short chunk")
	}
}

func TestSimulatorRejectsBadChecksum(t *testing.T) {
	sim := New()
	frame, _ := protocol.BuildReadOTPCmd().Encode(true)
	frame[len(frame)-1] ^= 0xFF

	chunk := make([]byte, sim.Variant.MaxChunkOut)
	copy(chunk, frame)
	err := sim.BulkWrite(sim.Variant.EndpointOut, chunk, 0)
	if !protocol.IsFramingError(err) {
		t.Errorf("error = %v, want FramingError", err)
	}
}

func TestSimulatorClosed(t *testing.T) {
	sim := New()
	sim.Close()
	if sim.IsOpen() {
		t.Error("IsOpen() = true after Close")
	}
	if _, err := sim.BulkRead(sim.Variant.EndpointIn, 64, 0); !errors.Is(err, transport.ErrClosed) {
		t.Errorf("error = %v, want ErrClosed", err)
	}
}

func TestSampleConfig(t *testing.T) {
	cfg := SampleConfig()
	if !cfg.ChecksumValid() {
		t.Error("sample config checksum invalid")
	}
	for _, n := range []int{4, 6, 8} {
		if _, _, err := cfg.Section(n); err != nil {
			t.Errorf("Section(%d) error = %v", n, err)
		}
	}

	params, err := calibration.Derive(SampleOTP())
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	if params.TCode != 0x13 || params.DeltaDown != 0x0A || params.DACL != 0x156 {
		t.Errorf("unexpected params %+v", params)
	}
}
