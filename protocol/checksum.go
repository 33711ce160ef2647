package protocol

import "encoding/binary"

// wordSum adds the little-endian 16-bit words of data to sum, modulo
// ChecksumModulus. An odd trailing byte is treated as a word with a zero high
// byte.
func wordSum(sum uint16, data []byte) uint16 {
	for i := 0; i+1 < len(data); i += 2 {
		sum += binary.LittleEndian.Uint16(data[i:])
	}
	if len(data)%2 == 1 {
		sum += uint16(data[len(data)-1])
	}
	return sum
}

// trailerOrder returns the byte order of a checksum trailer that follows n
// bytes. After an odd body the trailer straddles a word boundary: its high
// byte completes the body's last word and its low byte starts a new one, so
// it is stored big-endian.
func trailerOrder(n int) interface {
	binary.ByteOrder
	binary.AppendByteOrder
} {
	if n%2 == 1 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Checksum computes the 16-bit trailer for data.
//
// The words of data are summed starting from ChecksumSeed, dropping carries
// out of bit 15, and the trailer is ChecksumModulus minus that sum. Adding the
// trailer to the same sum therefore yields zero.
func Checksum(data []byte) uint16 {
	sum := wordSum(ChecksumSeed, data)
	return uint16(ChecksumModulus - uint32(sum))
}

// storedChecksum reads the trailer value from the last ChecksumSize bytes of
// frame. The caller ensures frame holds at least ChecksumSize bytes.
func storedChecksum(frame []byte) uint16 {
	n := len(frame) - ChecksumSize
	return trailerOrder(n).Uint16(frame[n:])
}

// ChecksumValid reports whether the last ChecksumSize bytes of frame are a
// valid trailer for the bytes before them, that is, whether the words of the
// whole frame sum to zero from ChecksumSeed.
func ChecksumValid(frame []byte) bool {
	if len(frame) < ChecksumSize {
		return false
	}
	return wordSum(ChecksumSeed, frame) == 0
}

// AppendChecksum appends the checksum trailer of data to data.
func AppendChecksum(data []byte) []byte {
	return trailerOrder(len(data)).AppendUint16(data, Checksum(data))
}
