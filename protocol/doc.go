// Package protocol implements the Goodix TLS sensor message protocol.
//
// This package provides pure functions to build and parse the frames exchanged
// with Goodix 53x5 fingerprint sensors over USB bulk endpoints. It performs no
// I/O; see the transport and sensor packages for that.
//
// # Protocol Overview
//
// Every application message uses the same envelope:
//
//	Message: [CATEGORY][COMMAND][LEN_L][LEN_H][PAYLOAD...][CHECKSUM_L][CHECKSUM_H]
//
// Where:
//   - CATEGORY = command family (0x3 finger detection, 0xA device control, ...)
//   - COMMAND  = command within the family
//   - LEN      = 16-bit little-endian length of PAYLOAD plus the checksum, if any
//   - CHECKSUM = 16-bit little-endian trailer, see Checksum
//
// Messages larger than one USB packet are split into chunks. The first chunk
// carries the beginning of the frame verbatim; every following chunk starts
// with the first frame byte with its low bit set:
//
//	Chunk 0: [CATEGORY][COMMAND][LEN_L][LEN_H][PAYLOAD...]
//	Chunk n: [CATEGORY|0x01][PAYLOAD...]
//
// # MCU Sub-Protocol
//
// The secure handshake runs inside messages with category CategoryMCU and
// command CmdMCU. Their payload carries a second header:
//
//	MCU: [DATA_TYPE(4)][TOTAL_LEN(4)][DATA...]
//
// TOTAL_LEN counts the 8 header bytes. Use BuildMCU and ParseMCU.
//
// # Command Builders
//
// Use the Build* functions to create command messages:
//
//	msg, err := protocol.BuildResetCmd(protocol.ResetSoft, true)
//	msg := protocol.BuildECControlCmd(true)
//	frame, err := msg.Encode(true)
//
// # Response Parsers
//
// Use DecodeMessage to validate a reassembled frame, then the Parse*
// functions for command-specific payloads:
//
//	msg, err := protocol.DecodeMessage(frame, true)
//	fdt, err := protocol.ParseFingerDetectionReply(msg, protocol.FingerManual)
//
// # Error Handling
//
// Decoding failures are returned as typed errors:
//   - FramingError: truncated frame, bad checksum, continuation mismatch
//   - AckMismatchError: reply category/command differs from the request
//   - ProtocolError: MCU data type or length mismatch
//   - CommandError: the device reported a failure status
package protocol
