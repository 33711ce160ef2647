package protocol

import "fmt"

// Message is one unit of the outer protocol.
// A Message lives for a single request/response cycle.
type Message struct {
	// Category is the command family
	Category uint8

	// Command is the command within the family
	Command uint8

	// Payload is the message body
	Payload []byte

	// Checksum is the trailer read from the wire; zero when the frame had none
	Checksum uint16
}

// ResetKind selects one of the reset modes understood by the sensor.
type ResetKind uint8

const (
	// ResetSoft resets the sensor core, optionally reporting IRQ status
	ResetSoft ResetKind = iota

	// ResetHard power-cycles the sensor
	ResetHard

	// ResetFactory restores the boot defaults without a delay
	ResetFactory
)

func (k ResetKind) String() string {
	switch k {
	case ResetSoft:
		return "soft"
	case ResetHard:
		return "hard"
	case ResetFactory:
		return "factory"
	default:
		return fmt.Sprintf("reset(%d)", uint8(k))
	}
}

// FingerOperation is a finger detection mode. Its value is also the command
// byte of the finger detection message.
type FingerOperation uint8

const (
	// FingerDown waits for a finger to touch the sensor
	FingerDown FingerOperation = 1

	// FingerUp waits for the finger to leave the sensor
	FingerUp FingerOperation = 2

	// FingerManual samples the sensor once
	FingerManual FingerOperation = 3
)

// opCode returns the operation code sent as the first payload byte.
func (op FingerOperation) opCode() (uint8, error) {
	switch op {
	case FingerDown:
		return 0x0C, nil
	case FingerUp:
		return 0x0E, nil
	case FingerManual:
		return 0x0D, nil
	default:
		return 0, fmt.Errorf("unknown finger detection operation %d", uint8(op))
	}
}

func (op FingerOperation) String() string {
	switch op {
	case FingerDown:
		return "down"
	case FingerUp:
		return "up"
	case FingerManual:
		return "manual"
	default:
		return fmt.Sprintf("fdt(%d)", uint8(op))
	}
}

// FingerDetection is the decoded finger detection reply.
type FingerDetection struct {
	// Operation is the operation this reply answers
	Operation FingerOperation

	// TouchFlags is the per-zone touch bitmap
	TouchFlags uint16

	// IRQStatus is the interrupt status reported by the sensor
	IRQStatus uint8

	// FDTBase is the new finger detection base measured by the sensor
	FDTBase [FDTBaseSize]byte
}
