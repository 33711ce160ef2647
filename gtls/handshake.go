package gtls

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/moffa90/go-goodixtls/protocol"
)

// identityTrailer follows the server identity in CLIENT_IDENTIFY.
var identityTrailer = []byte{0xEE, 0xEE, 0xEE, 0xEE}

var (
	// ErrIdentityMismatch is returned when the client identity derived from
	// the session keys differs from the identity reported by the sensor.
	ErrIdentityMismatch = errors.New("client and server identity do not match")

	// ErrServerStatus is returned when SERVER_DONE does not carry a single
	// zero status byte.
	ErrServerStatus = errors.New("server rejected handshake")
)

// HandshakeError is the terminal error of a failed handshake.
type HandshakeError struct {
	// State is the state whose handler failed
	State State

	Err error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("gtls handshake failed in %s: %v", e.State, e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// Channel carries MCU sub-protocol messages to and from the sensor.
// It is implemented by sensor.Sensor.
type Channel interface {
	SendMCU(ctx context.Context, dataType uint32, data []byte) error
	RecvMCU(ctx context.Context, dataType uint32) ([]byte, error)
}

// Logger has the same method set as sensor.Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Option configures a Handshake.
type Option func(*Handshake)

// WithPrimitives replaces the default PSK primitives.
func WithPrimitives(p Primitives) Option {
	return func(h *Handshake) {
		if p != nil {
			h.prims = p
		}
	}
}

// WithLogger sets a logger. Key material is only logged at debug level.
func WithLogger(logger Logger) Option {
	return func(h *Handshake) {
		h.logger = logger
	}
}

// Handshake is the GTLS state machine. Each call to Step runs the handler of
// the current state once, so an external executor can drive it state by
// state; Run drives it to completion.
//
// A Handshake is single use. Any failure is terminal: the session is zeroed
// and every later Step returns the same *HandshakeError.
type Handshake struct {
	ch      Channel
	prims   Primitives
	logger  Logger
	session Session
	err     error
}

// NewHandshake creates a handshake in StateClientHello.
func NewHandshake(ch Channel, opts ...Option) *Handshake {
	if ch == nil {
		panic("channel cannot be nil")
	}

	h := &Handshake{
		ch:    ch,
		prims: DefaultPSK(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// State returns the state whose handler runs next.
func (h *Handshake) State() State {
	return h.session.State
}

// Err returns the terminal error, if any.
func (h *Handshake) Err() error {
	return h.err
}

// Session returns the negotiated session. Its key material is only valid
// once State returns StateEstablished.
func (h *Handshake) Session() *Session {
	return &h.session
}

// Run steps the handshake until it is established or fails.
func (h *Handshake) Run(ctx context.Context) error {
	for h.State() != StateEstablished {
		if err := h.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step runs the handler of the current state and advances on success.
// Stepping an established handshake is a no-op.
func (h *Handshake) Step(ctx context.Context) error {
	if h.err != nil {
		return h.err
	}

	state := h.session.State
	if state == StateEstablished {
		return nil
	}

	var err error
	if err = ctx.Err(); err == nil {
		switch state {
		case StateClientHello:
			err = h.clientHello(ctx)
		case StateServerIdentify:
			err = h.serverIdentify(ctx)
		case StateServerDone:
			err = h.serverDone(ctx)
		default:
			err = fmt.Errorf("unknown state %d", uint8(state))
		}
	}

	if err != nil {
		h.session.Zero()
		h.err = &HandshakeError{State: state, Err: err}
		h.logError("handshake failed", "state", state.String(), "error", err)
		return h.err
	}
	return nil
}

func (h *Handshake) clientHello(ctx context.Context) error {
	random, err := h.prims.ClientRandom()
	if err != nil {
		return err
	}
	h.session.ClientRandom = random
	h.logDebug("client hello", "client_random", hex.EncodeToString(random))

	if err := h.ch.SendMCU(ctx, protocol.MCUClientHello, random); err != nil {
		return fmt.Errorf("send client hello: %w", err)
	}

	h.session.State = StateServerIdentify
	return nil
}

func (h *Handshake) serverIdentify(ctx context.Context) error {
	hello, err := h.ch.RecvMCU(ctx, protocol.MCUServerIdentify)
	if err != nil {
		return fmt.Errorf("receive server identify: %w", err)
	}
	if len(hello) != ServerHelloSize {
		return fmt.Errorf("wrong length: expected 0x%02X, received 0x%02X", ServerHelloSize, len(hello))
	}

	if err := h.prims.DecodeServerHello(&h.session, hello); err != nil {
		return fmt.Errorf("decode server hello: %w", err)
	}
	h.logDebug("server identify",
		"server_random", hex.EncodeToString(h.session.ServerRandom),
		"server_identity", hex.EncodeToString(h.session.ServerIdentity),
	)

	if err := h.prims.DeriveSessionKeys(&h.session); err != nil {
		return fmt.Errorf("derive session keys: %w", err)
	}
	if len(h.session.ClientIdentity) != IdentitySize || len(h.session.ServerIdentity) != IdentitySize {
		return fmt.Errorf("%w: identities must be %d bytes, got client %d and server %d",
			ErrIdentityMismatch, IdentitySize, len(h.session.ClientIdentity), len(h.session.ServerIdentity))
	}
	if subtle.ConstantTimeCompare(h.session.ClientIdentity, h.session.ServerIdentity) != 1 {
		h.logDebug("identity mismatch",
			"client_identity", hex.EncodeToString(h.session.ClientIdentity),
			"server_identity", hex.EncodeToString(h.session.ServerIdentity),
		)
		return ErrIdentityMismatch
	}
	h.logDebug("session keys derived",
		"session_key", hex.EncodeToString(h.session.SymmetricKey),
		"session_iv", hex.EncodeToString(h.session.SymmetricIV),
		"hmac_key", hex.EncodeToString(h.session.HMACKey),
		"hmac_client_counter_init", h.session.HMACClientCounterInit,
		"hmac_server_counter_init", h.session.HMACServerCounterInit,
	)

	identify := make([]byte, 0, len(h.session.ServerIdentity)+len(identityTrailer))
	identify = append(identify, h.session.ServerIdentity...)
	identify = append(identify, identityTrailer...)
	if err := h.ch.SendMCU(ctx, protocol.MCUClientIdentify, identify); err != nil {
		return fmt.Errorf("send client identify: %w", err)
	}

	h.session.State = StateServerDone
	return nil
}

func (h *Handshake) serverDone(ctx context.Context) error {
	status, err := h.ch.RecvMCU(ctx, protocol.MCUServerDone)
	if err != nil {
		return fmt.Errorf("receive server done: %w", err)
	}
	if len(status) != 1 || status[0] != protocol.HandshakeStatusOK {
		return fmt.Errorf("%w: status %s", ErrServerStatus, hex.EncodeToString(status))
	}

	h.session.HMACClientCounter = h.session.HMACClientCounterInit
	h.session.HMACServerCounter = h.session.HMACServerCounterInit
	h.session.State = StateEstablished
	h.logInfo("gtls handshake successful")
	return nil
}

func (h *Handshake) logDebug(msg string, keysAndValues ...interface{}) {
	if h.logger != nil {
		h.logger.Debug(msg, keysAndValues...)
	}
}

func (h *Handshake) logInfo(msg string, keysAndValues ...interface{}) {
	if h.logger != nil {
		h.logger.Info(msg, keysAndValues...)
	}
}

func (h *Handshake) logError(msg string, keysAndValues ...interface{}) {
	if h.logger != nil {
		h.logger.Error(msg, keysAndValues...)
	}
}
