package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildMCU constructs an MCU sub-protocol message.
//
// Payload structure:
//
//	[DATA_TYPE(4)][TOTAL_LEN(4)][DATA...]
//
// TOTAL_LEN is len(data) + MCUHeaderSize. The result is wrapped in a message
// with category CategoryMCU and command CmdMCU.
func BuildMCU(dataType uint32, data []byte) (*Message, error) {
	total := len(data) + MCUHeaderSize
	if total > MaxPayloadSize {
		return nil, fmt.Errorf("mcu data length %d exceeds maximum %d bytes", len(data), MaxPayloadSize-MCUHeaderSize)
	}

	payload := make([]byte, 0, total)
	payload = binary.LittleEndian.AppendUint32(payload, dataType)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(total))
	payload = append(payload, data...)

	return &Message{
		Category: CategoryMCU,
		Command:  CmdMCU,
		Payload:  payload,
	}, nil
}

// ParseMCU validates an MCU sub-protocol message and returns its data with the
// sub-header stripped.
//
// Returns an AckMismatchError if msg is not an MCU message and a
// ProtocolError if the data type differs from expected or the declared total
// length differs from the received payload length.
func ParseMCU(msg *Message, expected uint32) ([]byte, error) {
	if err := CheckReply(CategoryMCU, CmdMCU, msg); err != nil {
		return nil, err
	}

	payload := msg.Payload
	if len(payload) < MCUHeaderSize {
		return nil, &ProtocolError{Field: "header length", Expected: MCUHeaderSize, Received: uint32(len(payload))}
	}

	dataType := binary.LittleEndian.Uint32(payload[0:4])
	if dataType != expected {
		return nil, &ProtocolError{Field: "data type", Expected: expected, Received: dataType}
	}

	total := binary.LittleEndian.Uint32(payload[4:8])
	if total != uint32(len(payload)) {
		return nil, &ProtocolError{Field: "length", Expected: total, Received: uint32(len(payload))}
	}

	return append([]byte(nil), payload[MCUHeaderSize:]...), nil
}
