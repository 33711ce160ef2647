package protocol

import (
	"encoding/binary"
	"fmt"
)

// NewMessage creates a message with a copy of payload.
func NewMessage(category, command uint8, payload []byte) *Message {
	return &Message{
		Category: category,
		Command:  command,
		Payload:  append([]byte(nil), payload...),
	}
}

// Encode serializes the message.
//
// Frame structure:
//
//	[CATEGORY][COMMAND][LEN_L][LEN_H][PAYLOAD...][CHECKSUM_L][CHECKSUM_H]
//
// The checksum trailer is only present when withChecksum is set; LEN counts it.
func (m *Message) Encode(withChecksum bool) ([]byte, error) {
	if len(m.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload length %d exceeds maximum %d bytes", len(m.Payload), MaxPayloadSize)
	}

	length := len(m.Payload)
	if withChecksum {
		length += ChecksumSize
	}

	frame := make([]byte, 0, HeaderSize+length)
	frame = append(frame, m.Category, m.Command)
	frame = binary.LittleEndian.AppendUint16(frame, uint16(length))
	frame = append(frame, m.Payload...)

	if withChecksum {
		frame = AppendChecksum(frame)
	}
	return frame, nil
}

// FrameLength returns the total frame size declared by a message header.
func FrameLength(header []byte) (int, error) {
	if len(header) < HeaderSize {
		return 0, &FramingError{Reason: "header too short", Expected: HeaderSize, Actual: len(header)}
	}
	return HeaderSize + int(binary.LittleEndian.Uint16(header[2:4])), nil
}

// DecodeMessage parses a frame produced by Encode.
// Bytes beyond the declared length (USB padding) are ignored.
//
// Returns a FramingError if the buffer is shorter than the header plus the
// declared length, or if withChecksum is set and the trailer does not validate.
func DecodeMessage(frame []byte, withChecksum bool) (*Message, error) {
	total, err := FrameLength(frame)
	if err != nil {
		return nil, err
	}
	if len(frame) < total {
		return nil, &FramingError{Reason: "frame truncated", Expected: total, Actual: len(frame)}
	}
	frame = frame[:total]

	msg := &Message{
		Category: frame[0],
		Command:  frame[1],
	}

	body := frame[HeaderSize:]
	if withChecksum {
		if len(body) < ChecksumSize {
			return nil, &FramingError{Reason: "length too small for checksum", Expected: ChecksumSize, Actual: len(body)}
		}
		if !ChecksumValid(frame) {
			return nil, &FramingError{
				Reason:   "checksum mismatch",
				Expected: int(Checksum(frame[:total-ChecksumSize])),
				Actual:   int(storedChecksum(frame)),
			}
		}
		msg.Checksum = storedChecksum(frame)
		body = body[:len(body)-ChecksumSize]
	}

	msg.Payload = append([]byte(nil), body...)
	return msg, nil
}

// CheckReply verifies that reply answers a request with the given category
// and command.
func CheckReply(category, command uint8, reply *Message) error {
	if reply.Category != category || reply.Command != command {
		return &AckMismatchError{
			Category:    category,
			Command:     command,
			GotCategory: reply.Category,
			GotCommand:  reply.Command,
		}
	}
	return nil
}

func (m *Message) String() string {
	return fmt.Sprintf("category=0x%02X command=0x%02X len=%d", m.Category, m.Command, len(m.Payload))
}
