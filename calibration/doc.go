// Package calibration derives per-device tuning from the sensor OTP and
// patches it into the configuration blob uploaded at initialisation.
//
// # OTP Derivation
//
// Derive reads bytes 17, 22, 23 and 31 of the OTP dump:
//
//	TCode = otp[23] + 1 (0 when otp[23] is 0)
//	DACH  = (otp[17]<<8 ^ otp[22]) & 0x1FF
//	DACL  = (otp[17]&0x40)<<2 ^ otp[31]
//
// Bits 1-5 of otp[17] select a second set of finger detection deltas. When
// any of otp[17], otp[22] or otp[31] is zero the DAC values fall back to
// 0x97/0xD0.
//
// # Configuration Blob
//
// The blob starts with a section table: section n begins at data[n+1] and
// spans data[n+2] bytes. Sections are lists of 4-byte entries:
//
//	[TAG_L][TAG_H][VALUE_L][VALUE_H]
//
// The last two bytes are a checksum computed like a protocol frame checksum
// over the rest of the blob.
//
// # Usage
//
//	params, err := calibration.Derive(otp)
//	if err != nil {
//	    return err
//	}
//	cfg, err := calibration.ParseConfig("goodix5395.cfg")
//	if err != nil {
//	    return err
//	}
//	patched, err := calibration.Patch(cfg, params)
//
// Patch leaves its input untouched; Config.Apply patches in place.
//
// # File Format
//
// ParseConfig reads hex text. Whitespace is ignored and '#' starts a comment:
//
//	# section table
//	00 0c 20 2c 20 4c 08 ...
package calibration
