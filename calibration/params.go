package calibration

import (
	"fmt"

	"github.com/moffa90/go-goodixtls/protocol"
)

// OTP byte offsets used by Derive.
const (
	otpDiff  = 17 // 0x11, also the high DAC bits
	otpDACH  = 22
	otpTCode = 23
	otpDACL  = 31
)

// Default calibration values.
const (
	DefaultDeltaDown = 0x0D
	DefaultDeltaUp   = 0x0B
	DefaultDeltaImg  = 0xC8
	DefaultDeltaNav  = 0x28
	DefaultDACH      = 0x97
	DefaultDACL      = 0xD0

	dacDeltaNumerator = 0xC83
)

// Params holds the per-device tuning derived from the OTP dump.
type Params struct {
	TCode uint16

	DeltaFDT  uint8
	DeltaDown uint8
	DeltaUp   uint8
	DeltaImg  uint8
	DeltaNav  uint8

	DACH     uint16
	DACL     uint16
	DACDelta uint16

	// Finger detection bases, one per operation. They start zeroed and are
	// refreshed from finger detection replies.
	FDTBaseDown   [protocol.FDTBaseSize]byte
	FDTBaseUp     [protocol.FDTBaseSize]byte
	FDTBaseManual [protocol.FDTBaseSize]byte
}

// Derive computes calibration parameters from an OTP dump of at least
// protocol.OTPMinSize bytes.
//
// DACDelta is 0 when the OTP carries no TCode.
func Derive(otp []byte) (*Params, error) {
	if len(otp) < protocol.OTPMinSize {
		return nil, fmt.Errorf("otp dump too short: got %d bytes, minimum is %d", len(otp), protocol.OTPMinSize)
	}

	p := &Params{
		DeltaDown: DefaultDeltaDown,
		DeltaUp:   DefaultDeltaUp,
		DeltaImg:  DefaultDeltaImg,
		DeltaNav:  DefaultDeltaNav,
	}

	if otp[otpTCode] != 0 {
		p.TCode = uint16(otp[otpTCode]) + 1
	}

	p.DACH = (uint16(otp[otpDiff])<<8 ^ uint16(otp[otpDACH])) & 0x1FF
	p.DACL = uint16(otp[otpDiff]&0x40)<<2 ^ uint16(otp[otpDACL])

	if diff := otp[otpDiff] >> 1 & 0x1F; diff != 0 {
		t := uint16(diff) + 5
		t2 := t * 0x32 >> 4

		p.DeltaFDT = uint8(t2 / 5)
		p.DeltaDown = uint8(t2 / 3)
		p.DeltaUp = p.DeltaDown - 2
		p.DeltaImg = DefaultDeltaImg
		p.DeltaNav = uint8(t * 4)
	}

	if otp[otpDiff] == 0 || otp[otpDACH] == 0 || otp[otpDACL] == 0 {
		p.DACH = DefaultDACH
		p.DACL = DefaultDACL
	}

	if p.TCode != 0 {
		p.DACDelta = dacDeltaNumerator / p.TCode
	}

	return p, nil
}

// FDTBase returns the finger detection base of op. The returned slice aliases
// the buffer held by p.
func (p *Params) FDTBase(op protocol.FingerOperation) ([]byte, error) {
	switch op {
	case protocol.FingerDown:
		return p.FDTBaseDown[:], nil
	case protocol.FingerUp:
		return p.FDTBaseUp[:], nil
	case protocol.FingerManual:
		return p.FDTBaseManual[:], nil
	default:
		return nil, fmt.Errorf("unknown finger detection operation %d", uint8(op))
	}
}

// SetFDTBase stores a new finger detection base for op.
func (p *Params) SetFDTBase(op protocol.FingerOperation, base [protocol.FDTBaseSize]byte) error {
	dst, err := p.FDTBase(op)
	if err != nil {
		return err
	}
	copy(dst, base[:])
	return nil
}
