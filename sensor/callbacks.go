package sensor

import "time"

// Phases reported by Open.
const (
	PhaseDraining    = "draining"
	PhaseResetting   = "resetting"
	PhaseCalibrating = "calibrating"
	PhaseHandshaking = "handshaking"
	PhaseConfiguring = "configuring"
	PhaseReady       = "ready"
)

// Progress contains information about the initialisation progress.
// Passed to ProgressCallback by Open.
type Progress struct {
	// Phase describes the current operation phase:
	//   "draining"    - Discarding stale data left in the device
	//   "resetting"   - Resetting the sensor
	//   "calibrating" - Reading the OTP and deriving calibration
	//   "handshaking" - Running the GTLS handshake
	//   "configuring" - Uploading the patched configuration
	//   "ready"       - Sensor initialised
	Phase string

	// Step is the index of the phase (1-based)
	Step int

	// TotalSteps is the number of phases Open runs
	TotalSteps int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since Open started
	ElapsedTime time.Duration
}

// ProgressCallback is called by Open when a phase starts.
// Implementations should return quickly to avoid blocking the sensor.
//
// Example:
//
//	s := sensor.New(dev,
//	    sensor.WithProgressCallback(func(p sensor.Progress) {
//	        fmt.Printf("[%s] %.0f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the sensor.
// This allows integration with any logging framework; *slog.Logger satisfies
// it as is.
//
// Example with log/slog:
//
//	s := sensor.New(dev, sensor.WithLogger(slog.Default()))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
