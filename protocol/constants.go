package protocol

// Frame structure constants.
const (
	// HeaderSize is the message header size in bytes:
	// CATEGORY(1) + COMMAND(1) + LEN(2)
	HeaderSize = 4

	// ChecksumSize is the size of the optional checksum trailer
	ChecksumSize = 2

	// ContinuationFlag marks every chunk after the first one
	ContinuationFlag = 0x01

	// MaxPayloadSize is the largest payload a 16-bit length field can describe
	// together with its checksum trailer
	MaxPayloadSize = 0xFFFF - ChecksumSize
)

// Checksum constants.
const (
	// ChecksumSeed is the initial value of the 16-bit word sum
	ChecksumSeed = 0xA5A5

	// ChecksumModulus is the modulus of the 16-bit word sum
	ChecksumModulus = 0x10000
)

// Message categories.
const (
	// CategoryFingerDetection covers finger detection (FDT) operations
	CategoryFingerDetection = 0x3

	// CategorySleep covers power management
	CategorySleep = 0x6

	// CategoryConfig covers configuration upload
	CategoryConfig = 0x9

	// CategoryDevice covers reset, OTP and EC control
	CategoryDevice = 0xA

	// CategoryMCU carries the MCU sub-protocol used by the GTLS handshake
	CategoryMCU = 0xD
)

// Commands per category.
const (
	// CmdSleepMode enters sleep mode (CategorySleep)
	CmdSleepMode = 0x0

	// CmdUploadConfig uploads a configuration blob (CategoryConfig)
	CmdUploadConfig = 0x0

	// CmdReset resets the sensor (CategoryDevice)
	CmdReset = 0x1

	// CmdReadOTP reads the one-time-programmable memory (CategoryDevice)
	CmdReadOTP = 0x3

	// CmdECControl switches the EC power rail (CategoryDevice)
	CmdECControl = 0x7

	// CmdMCU wraps one MCU sub-protocol message (CategoryMCU)
	CmdMCU = 0x1
)

// MCU sub-protocol constants.
const (
	// MCUHeaderSize is the MCU sub-header size: DATA_TYPE(4) + TOTAL_LEN(4)
	MCUHeaderSize = 8

	// MCUClientHello carries the client random
	MCUClientHello = 0xFF01

	// MCUServerIdentify carries the server random and server identity
	MCUServerIdentify = 0xFF02

	// MCUClientIdentify echoes the server identity back to the device
	MCUClientIdentify = 0xFF03

	// MCUServerDone carries the handshake status byte
	MCUServerDone = 0xFF04
)

// Reset delays in device time units.
const (
	// ResetSoftDelay is the delay encoded for ResetSoft
	ResetSoftDelay = 20

	// ResetHardDelay is the delay encoded for ResetHard
	ResetHardDelay = 50
)

// Finger detection constants.
const (
	// FDTBaseSize is the size of one finger detection base buffer
	FDTBaseSize = 24

	// FingerDetectionReplySize is the payload size of a finger detection reply
	FingerDetectionReplySize = 28

	// fdtEnable is the second byte of every finger detection request
	fdtEnable = 0x01
)

// Reply status bytes.
const (
	// StatusOK is the success status of EC control and config upload replies
	StatusOK = 0x01

	// HandshakeStatusOK is the success status carried by MCUServerDone
	HandshakeStatusOK = 0x00
)

// Response sizes.
const (
	// OTPMinSize is the smallest OTP dump calibration can work with
	OTPMinSize = 32

	// ServerIdentifySize is the MCUServerIdentify payload size:
	// server random(32) + server identity(32)
	ServerIdentifySize = 64
)
