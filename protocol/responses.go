package protocol

import "encoding/binary"

// ParseStatusReply validates a one-byte status reply to a command identified
// by category and command.
//
// Data format:
//
//	[STATUS][...]
//
// The command succeeded iff STATUS equals StatusOK. Used by EC Control and
// Upload Config.
func ParseStatusReply(operation string, category, command uint8, reply *Message) error {
	if err := CheckReply(category, command, reply); err != nil {
		return err
	}
	if len(reply.Payload) == 0 {
		return &CommandError{Operation: operation, Reason: "empty status reply"}
	}
	if reply.Payload[0] != StatusOK {
		return &CommandError{Operation: operation, Status: reply.Payload[0]}
	}
	return nil
}

// ParseOTPReply validates a Read OTP reply and returns the OTP dump.
func ParseOTPReply(reply *Message) ([]byte, error) {
	if err := CheckReply(CategoryDevice, CmdReadOTP, reply); err != nil {
		return nil, err
	}
	if len(reply.Payload) < OTPMinSize {
		return nil, &CommandError{Operation: "read otp", Reason: "otp dump too short"}
	}
	return append([]byte(nil), reply.Payload...), nil
}

// ParseFingerDetectionReply parses the reply to a finger detection trigger.
//
// Data format (FingerDetectionReplySize bytes):
//
//	[TOUCH_FLAGS(2)][IRQ_STATUS(1)][RESERVED(1)][FDT_BASE(24)]
func ParseFingerDetectionReply(reply *Message, op FingerOperation) (*FingerDetection, error) {
	if err := CheckReply(CategoryFingerDetection, uint8(op), reply); err != nil {
		return nil, err
	}
	if len(reply.Payload) != FingerDetectionReplySize {
		return nil, &CommandError{Operation: "finger detection", Reason: "reply has wrong length"}
	}

	fdt := &FingerDetection{
		Operation:  op,
		TouchFlags: binary.LittleEndian.Uint16(reply.Payload[0:2]),
		IRQStatus:  reply.Payload[2],
	}
	copy(fdt.FDTBase[:], reply.Payload[4:])
	return fdt, nil
}
