package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is wrapped by Device implementations when a bulk transfer
	// does not complete within its timeout.
	ErrTimeout = errors.New("transfer timed out")

	// ErrClosed is returned when the device handle is no longer open.
	ErrClosed = errors.New("device closed")
)

// TransferError indicates a failed bulk transfer.
type TransferError struct {
	// Op is "write" or "read"
	Op string

	// Endpoint is the USB endpoint address
	Endpoint uint8

	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("bulk %s on endpoint 0x%02X: %v", e.Op, e.Endpoint, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if err is or wraps ErrTimeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
