package gtls

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/moffa90/go-goodixtls/protocol"
)

// Sizes of the handshake values exchanged with the sensor.
const (
	// RandomSize is the size of the client and server randoms
	RandomSize = 32

	// IdentitySize is the size of the client and server identities
	IdentitySize = 32

	// ServerHelloSize is the SERVER_IDENTIFY payload size, a server random
	// followed by a server identity
	ServerHelloSize = protocol.ServerIdentifySize

	// keyBlockSize covers key(16) + IV(16) + HMAC key(32) + two counters(2+2)
	keyBlockSize = 0x44
)

// masterSecretLabel is the PRF label of the key block.
const masterSecretLabel = "master secret"

// Primitives is the key derivation used by a Handshake.
//
// Implementations fill in the Session fields they are responsible for; the
// Handshake compares the derived ClientIdentity with the ServerIdentity.
type Primitives interface {
	// ClientRandom returns a fresh client random.
	ClientRandom() ([]byte, error)

	// DecodeServerHello stores the server random and server identity carried
	// by the SERVER_IDENTIFY payload.
	DecodeServerHello(s *Session, hello []byte) error

	// DeriveSessionKeys fills SymmetricKey, SymmetricIV, HMACKey, the counter
	// initial values and ClientIdentity.
	DeriveSessionKeys(s *Session) error
}

// PSK derives the session from a pre-shared key. It is the default
// primitive set of the 5395 family.
type PSK struct {
	// Key is the pre-shared key
	Key []byte

	// Rand is the entropy source for ClientRandom; crypto/rand when nil
	Rand io.Reader
}

// DefaultPSK returns the primitive set using the factory pre-shared key of
// 32 zero bytes.
func DefaultPSK() *PSK {
	return &PSK{Key: make([]byte, 32)}
}

// ClientRandom implements Primitives.
func (p *PSK) ClientRandom() ([]byte, error) {
	r := p.Rand
	if r == nil {
		r = rand.Reader
	}

	random := make([]byte, RandomSize)
	if _, err := io.ReadFull(r, random); err != nil {
		return nil, fmt.Errorf("generate client random: %w", err)
	}
	return random, nil
}

// DecodeServerHello implements Primitives.
//
// Data format:
//
//	[SERVER_RANDOM(32)][SERVER_IDENTITY(32)]
func (p *PSK) DecodeServerHello(s *Session, hello []byte) error {
	if len(hello) != ServerHelloSize {
		return fmt.Errorf("server hello must be %d bytes, got %d", ServerHelloSize, len(hello))
	}
	s.ServerRandom = append([]byte(nil), hello[:RandomSize]...)
	s.ServerIdentity = append([]byte(nil), hello[RandomSize:]...)
	return nil
}

// DeriveSessionKeys implements Primitives.
//
// The key block is PRF(psk, "master secret", clientRandom || serverRandom):
//
//	[KEY(16)][IV(16)][HMAC_KEY(32)][CLIENT_COUNTER(2)][SERVER_COUNTER(2)]
//
// The client identity is HMAC-SHA256(hmacKey, clientRandom || serverRandom).
func (p *PSK) DeriveSessionKeys(s *Session) error {
	if len(s.ClientRandom) != RandomSize || len(s.ServerRandom) != RandomSize {
		return fmt.Errorf("randoms must be %d bytes", RandomSize)
	}

	m := p.derive(s.ClientRandom, s.ServerRandom)
	s.SymmetricKey = m.key
	s.SymmetricIV = m.iv
	s.HMACKey = m.hmacKey
	s.HMACClientCounterInit = m.clientCounter
	s.HMACServerCounterInit = m.serverCounter
	s.ClientIdentity = m.identity
	return nil
}

// ServerHello computes the SERVER_IDENTIFY payload a sensor holding the same
// key answers to clientRandom. Used by simulators.
func (p *PSK) ServerHello(clientRandom, serverRandom []byte) ([]byte, error) {
	if len(clientRandom) != RandomSize || len(serverRandom) != RandomSize {
		return nil, fmt.Errorf("randoms must be %d bytes", RandomSize)
	}

	m := p.derive(clientRandom, serverRandom)
	hello := make([]byte, 0, ServerHelloSize)
	hello = append(hello, serverRandom...)
	hello = append(hello, m.identity...)
	return hello, nil
}

type keyMaterial struct {
	key           []byte
	iv            []byte
	hmacKey       []byte
	clientCounter uint16
	serverCounter uint16
	identity      []byte
}

func (p *PSK) derive(clientRandom, serverRandom []byte) keyMaterial {
	seed := make([]byte, 0, 2*RandomSize)
	seed = append(seed, clientRandom...)
	seed = append(seed, serverRandom...)

	block := prf(p.Key, masterSecretLabel, seed, keyBlockSize)
	m := keyMaterial{
		key:           block[0:16],
		iv:            block[16:32],
		hmacKey:       block[32:64],
		clientCounter: binary.LittleEndian.Uint16(block[64:66]),
		serverCounter: binary.LittleEndian.Uint16(block[66:68]),
	}
	m.identity = hmacSHA256(m.hmacKey, seed)
	return m
}
