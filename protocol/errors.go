package protocol

import (
	"errors"
	"fmt"
)

// FramingError indicates a frame that cannot be decoded: a truncated buffer,
// a bad checksum or a continuation byte that does not belong to the message.
type FramingError struct {
	// Reason describes what is wrong with the frame
	Reason string

	// Expected and Actual carry the compared values, if any
	Expected int
	Actual   int
}

func (e *FramingError) Error() string {
	if e.Expected == 0 && e.Actual == 0 {
		return fmt.Sprintf("framing error: %s", e.Reason)
	}
	return fmt.Sprintf("framing error: %s (expected 0x%02X, got 0x%02X)", e.Reason, e.Expected, e.Actual)
}

// AckMismatchError indicates a reply whose category or command differs from
// the request it answers.
type AckMismatchError struct {
	Category    uint8
	Command     uint8
	GotCategory uint8
	GotCommand  uint8
}

func (e *AckMismatchError) Error() string {
	return fmt.Sprintf("reply mismatch: sent category 0x%02X command 0x%02X, received category 0x%02X command 0x%02X",
		e.Category, e.Command, e.GotCategory, e.GotCommand)
}

// ProtocolError indicates an MCU sub-protocol message that does not match the
// expected data type or declares a length different from what was received.
type ProtocolError struct {
	// Field is the mismatching MCU header field
	Field string

	Expected uint32
	Received uint32
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("mcu %s mismatch: expected 0x%02X, received 0x%02X", e.Field, e.Expected, e.Received)
}

// CommandError indicates that the device rejected a command or returned a
// failure status.
type CommandError struct {
	// Operation is the command that failed
	Operation string

	// Status is the status byte returned by the device
	Status uint8

	// Reason optionally replaces the status in the message
	Reason string
}

func (e *CommandError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s failed: %s", e.Operation, e.Reason)
	}
	return fmt.Sprintf("%s failed: status 0x%02X", e.Operation, e.Status)
}

// IsFramingError returns true if err is or wraps a FramingError.
func IsFramingError(err error) bool {
	var e *FramingError
	return errors.As(err, &e)
}

// IsAckMismatch returns true if err is or wraps an AckMismatchError.
func IsAckMismatch(err error) bool {
	var e *AckMismatchError
	return errors.As(err, &e)
}

// IsProtocolError returns true if err is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var e *ProtocolError
	return errors.As(err, &e)
}

// IsCommandError returns true if err is or wraps a CommandError.
func IsCommandError(err error) bool {
	var e *CommandError
	return errors.As(err, &e)
}
