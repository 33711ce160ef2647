package gtls

import "fmt"

// State is a handshake state. States only ever move forward.
type State uint8

const (
	// StateClientHello sends the client random
	StateClientHello State = iota

	// StateServerIdentify receives the server hello, derives the session keys
	// and echoes the server identity
	StateServerIdentify

	// StateServerDone receives the final handshake status
	StateServerDone

	// StateEstablished is reached once the session keys are usable
	StateEstablished
)

func (s State) String() string {
	switch s {
	case StateClientHello:
		return "CLIENT_HELLO"
	case StateServerIdentify:
		return "SERVER_IDENTIFY"
	case StateServerDone:
		return "SERVER_DONE"
	case StateEstablished:
		return "ESTABLISHED"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Session holds the material negotiated by one handshake.
//
// The HMAC counters are only meaningful once State is StateEstablished.
type Session struct {
	State State

	ClientRandom   []byte
	ServerRandom   []byte
	ServerIdentity []byte
	ClientIdentity []byte

	SymmetricKey []byte
	SymmetricIV  []byte
	HMACKey      []byte

	// Initial counter values produced by key derivation
	HMACClientCounterInit uint16
	HMACServerCounterInit uint16

	HMACClientCounter uint16
	HMACServerCounter uint16
}

// Established reports whether the handshake completed.
func (s *Session) Established() bool {
	return s.State == StateEstablished
}

// Zero overwrites all key material and randoms. State is kept so that a
// failed session still reports where it stopped.
func (s *Session) Zero() {
	for _, b := range [][]byte{
		s.ClientRandom, s.ServerRandom, s.ServerIdentity, s.ClientIdentity,
		s.SymmetricKey, s.SymmetricIV, s.HMACKey,
	} {
		clear(b)
	}

	state := s.State
	*s = Session{State: state}
}
