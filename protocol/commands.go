package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildResetCmd constructs a Reset command.
//
// Payload structure (16-bit little-endian):
//
//	bits 0-2: reset mode (kind + 1)
//	bit  8:   IRQ status request (ResetSoft only)
//	bits 8-15: reset delay, added on top of the IRQ bit
//
// ResetSoft with irqStatus encodes 0x0001 | 0x0100 | 20<<8 = [0x01, 0x15].
func BuildResetCmd(kind ResetKind, irqStatus bool) (*Message, error) {
	var value uint16
	switch kind {
	case ResetSoft:
		value = 0x0001
		if irqStatus {
			value |= 0x0100
		}
		value |= ResetSoftDelay << 8
	case ResetHard:
		value = 0x0002
		value |= ResetHardDelay << 8
	case ResetFactory:
		value = 0x0003
	default:
		return nil, fmt.Errorf("unknown reset kind %d", uint8(kind))
	}

	payload := binary.LittleEndian.AppendUint16(nil, value)
	return NewMessage(CategoryDevice, CmdReset, payload), nil
}

// BuildSleepModeCmd constructs a Set Sleep Mode command.
//
// Payload structure:
//
//	[0x01][0x00]
func BuildSleepModeCmd() *Message {
	return NewMessage(CategorySleep, CmdSleepMode, []byte{0x01, 0x00})
}

// BuildECControlCmd constructs an EC Control command.
//
// Payload structure:
//
//	[STATE][STATE][0x00]
//
// STATE is 1 to enable the EC rail and 0 to disable it.
func BuildECControlCmd(enable bool) *Message {
	var state byte
	if enable {
		state = 1
	}
	return NewMessage(CategoryDevice, CmdECControl, []byte{state, state, 0x00})
}

// BuildReadOTPCmd constructs a Read OTP command.
//
// Payload structure:
//
//	[0x00][0x00]
func BuildReadOTPCmd() *Message {
	return NewMessage(CategoryDevice, CmdReadOTP, []byte{0x00, 0x00})
}

// BuildFingerDetectionCmd constructs a finger detection trigger.
// The operation is also used as the command byte.
//
// Payload structure:
//
//	[OP_CODE][0x01][FDT_BASE(24)]
func BuildFingerDetectionCmd(op FingerOperation, fdtBase []byte) (*Message, error) {
	code, err := op.opCode()
	if err != nil {
		return nil, err
	}
	if len(fdtBase) != FDTBaseSize {
		return nil, fmt.Errorf("fdt base must be exactly %d bytes, got %d", FDTBaseSize, len(fdtBase))
	}

	payload := make([]byte, 0, 2+FDTBaseSize)
	payload = append(payload, code, fdtEnable)
	payload = append(payload, fdtBase...)

	return NewMessage(CategoryFingerDetection, uint8(op), payload), nil
}

// BuildUploadConfigCmd constructs an Upload Config command carrying the whole
// configuration blob as payload.
func BuildUploadConfigCmd(config []byte) (*Message, error) {
	if len(config) == 0 {
		return nil, fmt.Errorf("config cannot be empty")
	}
	if len(config) > MaxPayloadSize {
		return nil, fmt.Errorf("config length %d exceeds maximum %d bytes", len(config), MaxPayloadSize)
	}
	return NewMessage(CategoryConfig, CmdUploadConfig, config), nil
}
