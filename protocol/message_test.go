package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name         string
		msg          *Message
		withChecksum bool
		want         []byte
	}{
		{
			name:         "reset with checksum",
			msg:          NewMessage(CategoryDevice, CmdReset, []byte{0x01, 0x15}),
			withChecksum: true,
			want:         []byte{0x0A, 0x01, 0x04, 0x00, 0x01, 0x15, 0x4C, 0x44},
		},
		{
			name:         "odd frame stores trailer high byte first",
			msg:          NewMessage(CategoryDevice, CmdECControl, []byte{0x01, 0x01, 0x00}),
			withChecksum: true,
			want:         []byte{0x0A, 0x07, 0x05, 0x00, 0x01, 0x01, 0x00, 0x52, 0x4B},
		},
		{
			name:         "reset without checksum",
			msg:          NewMessage(CategoryDevice, CmdReset, []byte{0x01, 0x15}),
			withChecksum: false,
			want:         []byte{0x0A, 0x01, 0x02, 0x00, 0x01, 0x15},
		},
		{
			name:         "empty payload",
			msg:          NewMessage(CategorySleep, CmdSleepMode, nil),
			withChecksum: false,
			want:         []byte{0x06, 0x00, 0x00, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := tt.msg.Encode(tt.withChecksum)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, frame); diff != "" {
				t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeTooLarge(t *testing.T) {
	msg := &Message{Category: CategoryConfig, Payload: make([]byte, MaxPayloadSize+1)}
	if _, err := msg.Encode(true); err == nil {
		t.Fatal("expected error for oversized payload, got nil")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		{0x00},
		{0x01, 0x02, 0x03},
		bytes.Repeat([]byte{0xEE}, 255),
		bytes.Repeat([]byte{0xA5, 0x5A}, 700),
	}
	pairs := [][2]uint8{
		{CategoryDevice, CmdReset},
		{CategoryMCU, CmdMCU},
		{CategoryFingerDetection, uint8(FingerManual)},
		{0xFF, 0xFF},
	}

	for _, pair := range pairs {
		for _, payload := range payloads {
			for _, withChecksum := range []bool{true, false} {
				msg := NewMessage(pair[0], pair[1], payload)
				frame, err := msg.Encode(withChecksum)
				if err != nil {
					t.Fatalf("Encode() error: %v", err)
				}

				got, err := DecodeMessage(frame, withChecksum)
				if err != nil {
					t.Fatalf("DecodeMessage() error: %v", err)
				}
				if got.Category != pair[0] || got.Command != pair[1] {
					t.Errorf("category/command = 0x%02X/0x%02X, want 0x%02X/0x%02X",
						got.Category, got.Command, pair[0], pair[1])
				}
				if !bytes.Equal(got.Payload, payload) {
					t.Errorf("payload mismatch for len %d (checksum=%v)", len(payload), withChecksum)
				}
				if withChecksum && !ChecksumValid(frame) {
					t.Errorf("frame checksum does not validate")
				}
			}
		}
	}
}

func TestDecodeMessage(t *testing.T) {
	valid := []byte{0x0A, 0x01, 0x04, 0x00, 0x01, 0x15, 0x4C, 0x44}

	tests := []struct {
		name    string
		frame   []byte
		wantErr string
	}{
		{
			name:  "valid frame",
			frame: valid,
		},
		{
			name:  "trailing padding ignored",
			frame: append(append([]byte(nil), valid...), 0x00, 0x00, 0x00),
		},
		{
			name:    "header too short",
			frame:   []byte{0x0A, 0x01},
			wantErr: "header too short",
		},
		{
			name:    "truncated payload",
			frame:   valid[:6],
			wantErr: "frame truncated",
		},
		{
			name:    "bad checksum",
			frame:   []byte{0x0A, 0x01, 0x04, 0x00, 0x01, 0x15, 0x4C, 0x45},
			wantErr: "checksum mismatch",
		},
		{
			name:    "length shorter than checksum",
			frame:   []byte{0x0A, 0x01, 0x01, 0x00, 0x01},
			wantErr: "length too small for checksum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMessage(tt.frame, true)

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				var framingErr *FramingError
				if !errors.As(err, &framingErr) {
					t.Errorf("error type = %T, want *FramingError", err)
				}
				if !bytes.Contains([]byte(err.Error()), []byte(tt.wantErr)) {
					t.Errorf("error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff([]byte{0x01, 0x15}, msg.Payload); diff != "" {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
			if msg.Checksum != 0x444C {
				t.Errorf("Checksum = 0x%04X, want 0x444C", msg.Checksum)
			}
		})
	}
}

func TestDecodeOddFrame(t *testing.T) {
	frame := []byte{0x0A, 0x07, 0x05, 0x00, 0x01, 0x01, 0x00, 0x52, 0x4B}

	msg, err := DecodeMessage(frame, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Checksum != 0x524B {
		t.Errorf("Checksum = 0x%04X, want 0x524B", msg.Checksum)
	}
	if diff := cmp.Diff([]byte{0x01, 0x01, 0x00}, msg.Payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	swapped := []byte{0x0A, 0x07, 0x05, 0x00, 0x01, 0x01, 0x00, 0x4B, 0x52}
	_, err = DecodeMessage(swapped, true)
	var framingErr *FramingError
	if !errors.As(err, &framingErr) {
		t.Fatalf("error = %v, want *FramingError", err)
	}
	if framingErr.Expected != 0x524B || framingErr.Actual != 0x4B52 {
		t.Errorf("FramingError = %+v, want expected 0x524B actual 0x4B52", framingErr)
	}
}

func TestCheckReply(t *testing.T) {
	reply := NewMessage(CategoryDevice, CmdECControl, nil)

	if err := CheckReply(CategoryDevice, CmdECControl, reply); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := CheckReply(CategoryDevice, CmdReset, reply)
	if !IsAckMismatch(err) {
		t.Fatalf("error = %v, want AckMismatchError", err)
	}
	if !bytes.Contains([]byte(err.Error()), []byte("command 0x07")) {
		t.Errorf("error = %v, want received command in message", err)
	}
}

func BenchmarkEncode(b *testing.B) {
	msg := NewMessage(CategoryConfig, CmdUploadConfig, make([]byte, 256))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = msg.Encode(true)
	}
}
