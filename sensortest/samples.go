package sensortest

import (
	"encoding/binary"

	"github.com/moffa90/go-goodixtls/calibration"
)

// SampleOTP returns a 64 byte OTP dump. It derives:
//
//	TCode 0x13, DeltaDown 0x0A, DeltaUp 0x08, DACL 0x156
func SampleOTP() []byte {
	otp := make([]byte, 64)
	for i := range otp {
		otp[i] = byte(0xA0 + i)
	}
	otp[17] = 0x4A
	otp[22] = 0x34
	otp[23] = 0x12
	otp[31] = 0x56
	return otp
}

// Offsets of the tagged entries in SampleConfig.
const (
	SampleTCodeEntry     = 16
	SampleDACLEntry      = 20
	SampleDeltaDownEntry = 24
)

// SampleConfig returns a small configuration blob with a valid checksum.
// Section 4 holds one TCode, one DAC L and one delta down entry; sections 6
// and 8 hold one TCode entry each.
func SampleConfig() *calibration.Config {
	data := make([]byte, 48)
	data[5], data[6] = 16, 8  // section 4: entries 16, 20, 24
	data[7], data[8] = 28, 4  // section 6: entries 28, 32
	data[9], data[10] = 36, 4 // section 8: entries 36, 40

	entries := []struct {
		offset int
		tag    uint16
	}{
		{SampleTCodeEntry, calibration.TagTCode},
		{SampleDACLEntry, calibration.TagDACL},
		{SampleDeltaDownEntry, calibration.TagDeltaDown},
		{28, calibration.TagTCode},
		{36, calibration.TagTCode},
	}
	for _, e := range entries {
		binary.LittleEndian.PutUint16(data[e.offset:], e.tag)
		binary.LittleEndian.PutUint16(data[e.offset+2:], 0xFFFF)
	}

	cfg, err := calibration.NewConfig(data)
	if err != nil {
		panic(err)
	}
	cfg.FixChecksum()
	return cfg
}
