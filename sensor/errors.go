package sensor

import "errors"

var (
	// ErrNotCalibrated is returned by operations that need calibration
	// before Calibrate has succeeded.
	ErrNotCalibrated = errors.New("sensor not calibrated")

	// ErrHandshakeInProgress is returned when a handshake is started while
	// another one runs on the same sensor.
	ErrHandshakeInProgress = errors.New("handshake already in progress")

	// ErrNoSession is returned when no GTLS session is established.
	ErrNoSession = errors.New("no gtls session established")
)
