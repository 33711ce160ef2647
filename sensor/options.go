package sensor

import (
	"time"

	"github.com/moffa90/go-goodixtls/driver"
	"github.com/moffa90/go-goodixtls/gtls"
	"github.com/moffa90/go-goodixtls/protocol"
)

// Config holds the sensor configuration.
type Config struct {
	// ProgressCallback is called by Open to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Variant describes the endpoint layout and chunk sizes
	Variant driver.Variant

	// ReadTimeout is the per-chunk timeout for replies
	ReadTimeout time.Duration

	// ResetTimeout is the write timeout of reset commands
	ResetTimeout time.Duration

	// MCUTimeout is the write timeout of MCU messages
	MCUTimeout time.Duration

	// SleepTimeout is the write timeout of the sleep mode command
	SleepTimeout time.Duration

	// CommandTimeout is the write timeout of every other command
	CommandTimeout time.Duration

	// Primitives performs the GTLS key derivation
	Primitives gtls.Primitives

	// ResetKind is the reset Open issues
	ResetKind protocol.ResetKind

	// ResetIRQStatus requests IRQ status with a soft reset
	ResetIRQStatus bool

	// Drain discards stale device data before Open resets the sensor
	Drain bool

	// DrainTimeout is the per-read timeout while draining
	DrainTimeout time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Variant:        driver.Goodix5395,
		ReadTimeout:    2000 * time.Millisecond,
		ResetTimeout:   500 * time.Millisecond,
		MCUTimeout:     500 * time.Millisecond,
		SleepTimeout:   200 * time.Millisecond,
		CommandTimeout: 2000 * time.Millisecond,
		ResetKind:      protocol.ResetSoft,
		ResetIRQStatus: true,
		Drain:          true,
		DrainTimeout:   100 * time.Millisecond,
	}
}

// Option is a functional option for configuring the Sensor.
type Option func(*Config)

// WithProgressCallback sets a callback function to track Open progress.
//
// Example:
//
//	s := sensor.New(dev,
//	    sensor.WithProgressCallback(func(p sensor.Progress) {
//	        fmt.Printf("%s %.0f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the sensor, its transport and its handshakes.
//
// Example:
//
//	s := sensor.New(dev, sensor.WithLogger(slog.Default()))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithVariant selects the sensor variant. Default is driver.Goodix5395.
//
// Example:
//
//	s := sensor.New(dev, sensor.WithVariant(variant))
func WithVariant(v driver.Variant) Option {
	return func(c *Config) {
		c.Variant = v
	}
}

// WithReadTimeout sets the per-chunk read timeout.
//
// Example:
//
//	s := sensor.New(dev, sensor.WithReadTimeout(5*time.Second))
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReadTimeout = timeout
		}
	}
}

// WithCommandTimeout sets the write timeout of EC control, OTP, finger
// detection and config upload commands.
func WithCommandTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.CommandTimeout = timeout
		}
	}
}

// WithPrimitives replaces the default PSK key derivation.
//
// Example:
//
//	s := sensor.New(dev, sensor.WithPrimitives(&gtls.PSK{Key: key}))
func WithPrimitives(p gtls.Primitives) Option {
	return func(c *Config) {
		c.Primitives = p
	}
}

// WithResetKind sets the reset issued by Open. irqStatus only applies to
// protocol.ResetSoft. Default is a soft reset with IRQ status.
func WithResetKind(kind protocol.ResetKind, irqStatus bool) Option {
	return func(c *Config) {
		c.ResetKind = kind
		c.ResetIRQStatus = irqStatus
	}
}

// WithDrain enables or disables draining stale data in Open.
// Default is true.
func WithDrain(drain bool) Option {
	return func(c *Config) {
		c.Drain = drain
	}
}
