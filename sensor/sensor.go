package sensor

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/moffa90/go-goodixtls/calibration"
	"github.com/moffa90/go-goodixtls/gtls"
	"github.com/moffa90/go-goodixtls/protocol"
	"github.com/moffa90/go-goodixtls/transport"
)

// Sensor drives one Goodix TLS sensor: commands, calibration and the GTLS
// session.
//
// A Sensor is confined to the goroutine that owns its device; operations must
// not interleave. Starting a second handshake while one runs fails with
// ErrHandshakeInProgress.
type Sensor struct {
	dev    transport.Device
	tr     *transport.Transport
	config Config

	params  *calibration.Params
	session *gtls.Session

	handshaking atomic.Bool
}

// New creates a new Sensor with the given device and options.
//
// Example:
//
//	dev, _ := usb.Open(driver.Goodix5395)
//	s := sensor.New(dev,
//	    sensor.WithLogger(slog.Default()),
//	    sensor.WithProgressCallback(progressFunc),
//	)
func New(dev transport.Device, opts ...Option) *Sensor {
	if dev == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	tcfg := cfg.Variant.TransportConfig()
	tcfg.ReadTimeout = cfg.ReadTimeout
	tcfg.Logger = cfg.Logger

	return &Sensor{
		dev:    dev,
		tr:     transport.New(dev, tcfg),
		config: cfg,
	}
}

// SendAndAwaitAck encodes msg with a checksum, sends it and waits for the
// acknowledgement, which must carry the category and command of msg.
//
// Commands that answer with data need a ReceiveMessage call afterwards.
func (s *Sensor) SendAndAwaitAck(ctx context.Context, msg *protocol.Message, timeout time.Duration) error {
	frame, err := msg.Encode(true)
	if err != nil {
		return err
	}

	s.logDebug("running command",
		"category", fmt.Sprintf("0x%02X", msg.Category),
		"command", fmt.Sprintf("0x%02X", msg.Command),
	)

	if err := s.tr.Send(ctx, frame, timeout); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	ack, err := s.ReceiveMessage(ctx)
	if err != nil {
		return fmt.Errorf("receive ack: %w", err)
	}
	return protocol.CheckReply(msg.Category, msg.Command, ack)
}

// ReceiveMessage reads and decodes one message from the sensor.
// Device messages always carry a checksum.
func (s *Sensor) ReceiveMessage(ctx context.Context) (*protocol.Message, error) {
	frame, err := s.tr.ReceiveMessageBytes(ctx)
	if err != nil {
		return nil, err
	}
	return protocol.DecodeMessage(frame, true)
}

// SendMCU sends one MCU sub-protocol message and waits for its
// acknowledgement.
func (s *Sensor) SendMCU(ctx context.Context, dataType uint32, data []byte) error {
	msg, err := protocol.BuildMCU(dataType, data)
	if err != nil {
		return err
	}
	return s.SendAndAwaitAck(ctx, msg, s.config.MCUTimeout)
}

// RecvMCU receives one MCU sub-protocol message of the given data type and
// returns its data.
func (s *Sensor) RecvMCU(ctx context.Context, dataType uint32) ([]byte, error) {
	msg, err := s.ReceiveMessage(ctx)
	if err != nil {
		return nil, err
	}
	return protocol.ParseMCU(msg, dataType)
}

// Drain discards data left in the device and returns the number of chunks
// dropped.
func (s *Sensor) Drain(ctx context.Context) (int, error) {
	return s.tr.Drain(ctx, s.config.DrainTimeout)
}

// Calibration returns the parameters derived by Calibrate, or nil.
func (s *Sensor) Calibration() *calibration.Params {
	return s.params
}

// Session returns the established GTLS session.
func (s *Sensor) Session() (*gtls.Session, error) {
	if s.session == nil || !s.session.Established() {
		return nil, ErrNoSession
	}
	return s.session, nil
}

// EstablishSession runs a GTLS handshake and keeps the resulting session.
// A previous session is discarded first.
func (s *Sensor) EstablishSession(ctx context.Context) (*gtls.Session, error) {
	if !s.handshaking.CompareAndSwap(false, true) {
		return nil, ErrHandshakeInProgress
	}
	defer s.handshaking.Store(false)

	s.dropSession()

	opts := []gtls.Option{gtls.WithPrimitives(s.config.Primitives)}
	if s.config.Logger != nil {
		opts = append(opts, gtls.WithLogger(s.config.Logger))
	}

	hs := gtls.NewHandshake(s, opts...)
	if err := hs.Run(ctx); err != nil {
		return nil, err
	}

	s.session = hs.Session()
	return s.session, nil
}

// Close zeroes the GTLS session and closes the device if it implements
// io.Closer.
func (s *Sensor) Close() error {
	s.dropSession()
	s.params = nil

	if c, ok := s.dev.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Sensor) dropSession() {
	if s.session != nil {
		s.session.Zero()
		s.session = nil
	}
}

// reportProgress calls the progress callback if configured.
func (s *Sensor) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (s *Sensor) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Sensor) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Sensor) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
