// Package gtls implements the GTLS handshake of Goodix TLS sensors.
//
// # Overview
//
// GTLS is a pre-shared key handshake carried over the MCU sub-protocol:
//
//	host                              sensor
//	 | -- 0xFF01 client random ---------> |
//	 | <- 0xFF02 server random|identity - |
//	 | -- 0xFF03 server identity|EEEEEEEE>|
//	 | <- 0xFF04 status (0x00) ---------- |
//
// After SERVER_IDENTIFY both sides hold the session key, IV and HMAC key.
// The host proves it derived the same keys by checking that its client
// identity equals the identity reported by the sensor.
//
// # Usage
//
// A Handshake runs over any Channel, usually a sensor.Sensor:
//
//	hs := gtls.NewHandshake(s, gtls.WithLogger(logger))
//	if err := hs.Run(ctx); err != nil {
//	    return err
//	}
//	session := hs.Session()
//
// An executor that drives its own state machine can call Step once per state
// instead of Run.
//
// # Key Derivation
//
// Key derivation sits behind the Primitives interface. PSK is the default:
// the key block is the TLS 1.2 PRF with SHA-256 over the two randoms, keyed
// with the pre-shared key.
//
// # Errors
//
// Every failure is a *HandshakeError naming the failed state. It wraps the
// cause, so errors.Is(err, gtls.ErrIdentityMismatch) and errors.As with
// *protocol.ProtocolError or *transport.TransferError work through it.
package gtls
