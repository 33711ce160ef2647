package sensor

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-goodixtls/calibration"
	"github.com/moffa90/go-goodixtls/protocol"
)

// Reset resets the sensor. The device only acknowledges the command.
//
// Example:
//
//	err := s.Reset(ctx, protocol.ResetSoft, true)
func (s *Sensor) Reset(ctx context.Context, kind protocol.ResetKind, irqStatus bool) error {
	msg, err := protocol.BuildResetCmd(kind, irqStatus)
	if err != nil {
		return err
	}
	if err := s.SendAndAwaitAck(ctx, msg, s.config.ResetTimeout); err != nil {
		return fmt.Errorf("reset %s: %w", kind, err)
	}
	return nil
}

// SetSleepMode puts the sensor to sleep. The device only acknowledges the
// command.
func (s *Sensor) SetSleepMode(ctx context.Context) error {
	if err := s.SendAndAwaitAck(ctx, protocol.BuildSleepModeCmd(), s.config.SleepTimeout); err != nil {
		return fmt.Errorf("set sleep mode: %w", err)
	}
	return nil
}

// ECControl switches the EC power rail. The sensor answers with a status
// reply whose first byte is 1 on success; any other value is returned as a
// *protocol.CommandError.
func (s *Sensor) ECControl(ctx context.Context, enable bool) error {
	msg := protocol.BuildECControlCmd(enable)
	if err := s.SendAndAwaitAck(ctx, msg, s.config.CommandTimeout); err != nil {
		return fmt.Errorf("ec control: %w", err)
	}

	reply, err := s.ReceiveMessage(ctx)
	if err != nil {
		return fmt.Errorf("ec control: receive reply: %w", err)
	}
	return protocol.ParseStatusReply("ec control", protocol.CategoryDevice, protocol.CmdECControl, reply)
}

// ReadOTP reads the one-time-programmable memory of the sensor.
func (s *Sensor) ReadOTP(ctx context.Context) ([]byte, error) {
	if err := s.SendAndAwaitAck(ctx, protocol.BuildReadOTPCmd(), s.config.CommandTimeout); err != nil {
		return nil, fmt.Errorf("read otp: %w", err)
	}

	reply, err := s.ReceiveMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("read otp: receive reply: %w", err)
	}
	return protocol.ParseOTPReply(reply)
}

// Calibrate reads the OTP and derives the calibration used by finger
// detection and PrepareConfig.
func (s *Sensor) Calibrate(ctx context.Context) (*calibration.Params, error) {
	otp, err := s.ReadOTP(ctx)
	if err != nil {
		return nil, err
	}

	params, err := calibration.Derive(otp)
	if err != nil {
		return nil, fmt.Errorf("derive calibration: %w", err)
	}

	s.logDebug("calibration derived",
		"tcode", fmt.Sprintf("0x%02X", params.TCode),
		"delta_down", fmt.Sprintf("0x%02X", params.DeltaDown),
		"delta_up", fmt.Sprintf("0x%02X", params.DeltaUp),
		"delta_nav", fmt.Sprintf("0x%02X", params.DeltaNav),
		"dac_h", fmt.Sprintf("0x%02X", params.DACH),
		"dac_l", fmt.Sprintf("0x%02X", params.DACL),
		"dac_delta", fmt.Sprintf("0x%02X", params.DACDelta),
	)

	s.params = params
	return params, nil
}

// PrepareConfig returns cfg patched with the calibration of this sensor.
func (s *Sensor) PrepareConfig(cfg *calibration.Config) (*calibration.Config, error) {
	if s.params == nil {
		return nil, ErrNotCalibrated
	}
	return calibration.Patch(cfg, s.params)
}

// UploadConfig uploads a configuration blob. The sensor acknowledges the
// command, then answers with a config reply whose first byte is 1 on success.
func (s *Sensor) UploadConfig(ctx context.Context, config []byte, timeout time.Duration) error {
	msg, err := protocol.BuildUploadConfigCmd(config)
	if err != nil {
		return err
	}
	if err := s.SendAndAwaitAck(ctx, msg, timeout); err != nil {
		return fmt.Errorf("upload config: %w", err)
	}

	reply, err := s.ReceiveMessage(ctx)
	if err != nil {
		return fmt.Errorf("upload config: receive reply: %w", err)
	}
	return protocol.ParseStatusReply("upload config", protocol.CategoryConfig, protocol.CmdUploadConfig, reply)
}

// FingerDetectionTrigger starts a finger detection operation using the
// operation's calibrated base. The result arrives later and is read with
// FingerDetectionPoll.
func (s *Sensor) FingerDetectionTrigger(ctx context.Context, op protocol.FingerOperation) error {
	if s.params == nil {
		return ErrNotCalibrated
	}

	base, err := s.params.FDTBase(op)
	if err != nil {
		return err
	}
	msg, err := protocol.BuildFingerDetectionCmd(op, base)
	if err != nil {
		return err
	}

	if err := s.SendAndAwaitAck(ctx, msg, s.config.CommandTimeout); err != nil {
		return fmt.Errorf("finger detection %s: %w", op, err)
	}
	return nil
}

// FingerDetectionPoll reads the reply of a triggered finger detection and
// stores the new base it reports for op.
func (s *Sensor) FingerDetectionPoll(ctx context.Context, op protocol.FingerOperation) (*protocol.FingerDetection, error) {
	reply, err := s.ReceiveMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("finger detection %s: receive reply: %w", op, err)
	}

	fdt, err := protocol.ParseFingerDetectionReply(reply, op)
	if err != nil {
		return nil, err
	}

	if s.params != nil {
		if err := s.params.SetFDTBase(op, fdt.FDTBase); err != nil {
			return nil, err
		}
	}

	s.logDebug("finger detection",
		"operation", op.String(),
		"touch_flags", fmt.Sprintf("0x%04X", fdt.TouchFlags),
		"irq_status", fmt.Sprintf("0x%02X", fdt.IRQStatus),
	)
	return fdt, nil
}
