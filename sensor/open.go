package sensor

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-goodixtls/calibration"
)

// openSteps is the number of phases reported by Open, ready included.
const openSteps = 6

// Open performs the complete initialisation sequence:
//  1. Drain stale data (unless disabled with WithDrain)
//  2. Reset the sensor
//  3. Read the OTP and derive calibration
//  4. Establish the GTLS session
//  5. Patch cfg with the calibration and upload it
//
// The operation can be cancelled via context; cancellation is checked
// between phases and between transfers.
//
// Example:
//
//	cfg, _ := calibration.ParseConfig("goodix5395.cfg")
//	if err := s.Open(ctx, cfg); err != nil {
//	    log.Fatal(err)
//	}
func (s *Sensor) Open(ctx context.Context, cfg *calibration.Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	startTime := time.Now()
	report := func(step int, phase string) {
		s.reportProgress(Progress{
			Phase:       phase,
			Step:        step,
			TotalSteps:  openSteps,
			Percentage:  float64(step-1) / float64(openSteps-1) * 100,
			ElapsedTime: time.Since(startTime),
		})
	}

	// Phase 1: Drain
	if s.config.Drain {
		report(1, PhaseDraining)
		n, err := s.Drain(ctx)
		if err != nil {
			return fmt.Errorf("drain: %w", err)
		}
		if n > 0 {
			s.logDebug("discarded stale chunks", "count", n)
		}
	}

	// Phase 2: Reset
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}
	report(2, PhaseResetting)
	if err := s.Reset(ctx, s.config.ResetKind, s.config.ResetIRQStatus); err != nil {
		s.logError("reset failed", "error", err)
		return err
	}

	// Phase 3: Calibrate
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}
	report(3, PhaseCalibrating)
	if _, err := s.Calibrate(ctx); err != nil {
		s.logError("calibration failed", "error", err)
		return fmt.Errorf("calibrate: %w", err)
	}

	// Phase 4: Handshake
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}
	report(4, PhaseHandshaking)
	if _, err := s.EstablishSession(ctx); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}

	// Phase 5: Configure
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}
	report(5, PhaseConfiguring)
	patched, err := s.PrepareConfig(cfg)
	if err != nil {
		return fmt.Errorf("prepare config: %w", err)
	}
	if err := s.UploadConfig(ctx, patched.Bytes(), s.config.CommandTimeout); err != nil {
		s.logError("config upload failed", "error", err)
		return err
	}

	report(6, PhaseReady)
	s.logInfo("sensor ready",
		"variant", s.config.Variant.Name,
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}
