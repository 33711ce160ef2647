package sensortest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/moffa90/go-goodixtls/calibration"
	"github.com/moffa90/go-goodixtls/driver"
	"github.com/moffa90/go-goodixtls/gtls"
	"github.com/moffa90/go-goodixtls/protocol"
	"github.com/moffa90/go-goodixtls/transport"
)

// Simulator is an in-memory 5395 sensor implementing transport.Device.
//
// It reassembles the chunks written by the host, validates every frame and
// queues the acknowledgement and reply a real sensor would send. Reads with
// nothing queued fail with an error wrapping transport.ErrTimeout.
//
// The exported fields configure the behaviour and must be set before the
// simulator is used.
type Simulator struct {
	// Variant gives the endpoint layout and the size of host chunks
	Variant driver.Variant

	// ChunkIn is the size of the chunks sent to the host. Small values force
	// multi-chunk replies.
	ChunkIn int

	// OTP is the dump returned by Read OTP
	OTP []byte

	// PSK is the key the simulated sensor derives its identity with
	PSK *gtls.PSK

	// ServerRandom is the server random of the next handshake
	ServerRandom []byte

	// ECStatus and ConfigStatus are the status bytes of the EC control and
	// config upload replies
	ECStatus     byte
	ConfigStatus byte

	// FDTTouchFlags and FDTIRQStatus are reported by finger detection replies
	FDTTouchFlags uint16
	FDTIRQStatus  byte

	// NextFDTBase replaces the base reported by finger detection replies;
	// when nil the request base is echoed
	NextFDTBase []byte

	// EmptyPackets sends an empty packet before every reply chunk
	EmptyPackets bool

	// CorruptIdentity flips one bit of the server identity
	CorruptIdentity bool

	// WrongAck acknowledges every command with a different command byte
	WrongAck bool

	// Mute drops every command without answering
	Mute bool

	// Latency is added to every transfer
	Latency time.Duration

	mu       sync.Mutex
	open     bool
	rx       protocol.Reassembler
	out      [][]byte
	received []*protocol.Message
	config   []byte

	clientRandom []byte
	hello        []byte
}

// New returns a simulator answering like a factory 5395 with SampleOTP and
// the default PSK.
func New() *Simulator {
	return &Simulator{
		Variant:      driver.Goodix5395,
		ChunkIn:      0x40,
		OTP:          SampleOTP(),
		PSK:          gtls.DefaultPSK(),
		ServerRandom: bytes.Repeat([]byte{0x5A}, gtls.RandomSize),
		ECStatus:     protocol.StatusOK,
		ConfigStatus: protocol.StatusOK,
		open:         true,
	}
}

// BulkWrite implements transport.Device.
func (s *Simulator) BulkWrite(endpoint uint8, data []byte, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleep()

	if !s.open {
		return transport.ErrClosed
	}
	if endpoint != s.Variant.EndpointOut {
		return fmt.Errorf("sensortest: write to unknown endpoint 0x%02X", endpoint)
	}
	if len(data) != s.Variant.MaxChunkOut {
		return fmt.Errorf("sensortest: chunk of %d bytes, expected %d", len(data), s.Variant.MaxChunkOut)
	}

	done, err := s.rx.Add(data)
	if err != nil {
		s.rx.Reset()
		return fmt.Errorf("sensortest: %w", err)
	}
	if !done {
		return nil
	}

	frame, err := s.rx.Frame()
	s.rx.Reset()
	if err != nil {
		return fmt.Errorf("sensortest: %w", err)
	}
	msg, err := protocol.DecodeMessage(frame, true)
	if err != nil {
		return fmt.Errorf("sensortest: %w", err)
	}

	s.received = append(s.received, msg)
	if s.Mute {
		return nil
	}
	return s.handle(msg)
}

// BulkRead implements transport.Device.
func (s *Simulator) BulkRead(endpoint uint8, maxLen int, timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleep()

	if !s.open {
		return nil, transport.ErrClosed
	}
	if endpoint != s.Variant.EndpointIn {
		return nil, fmt.Errorf("sensortest: read from unknown endpoint 0x%02X", endpoint)
	}
	if len(s.out) == 0 {
		return nil, fmt.Errorf("sensortest: nothing to read after %v: %w", timeout, transport.ErrTimeout)
	}

	chunk := s.out[0]
	if len(chunk) > maxLen {
		return nil, fmt.Errorf("sensortest: chunk of %d bytes exceeds read size %d", len(chunk), maxLen)
	}
	s.out = s.out[1:]
	return chunk, nil
}

// IsOpen implements transport.Device.
func (s *Simulator) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Close marks the simulator closed; later transfers fail with
// transport.ErrClosed.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

// QueueRaw queues chunks for the host as they are, for example stale data
// left over from a previous session.
func (s *Simulator) QueueRaw(chunks ...[]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		s.out = append(s.out, append([]byte(nil), c...))
	}
}

// QueueMessage queues an unsolicited message for the host.
func (s *Simulator) QueueMessage(msg *protocol.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send(msg)
}

// Pending returns the number of chunks not yet read by the host.
func (s *Simulator) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.out)
}

// Received returns the messages received from the host, in order.
func (s *Simulator) Received() []*protocol.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*protocol.Message(nil), s.received...)
}

// UploadedConfig returns the last configuration blob uploaded by the host.
func (s *Simulator) UploadedConfig() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.config...)
}

// ClientRandom returns the client random of the last handshake.
func (s *Simulator) ClientRandom() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.clientRandom...)
}

func (s *Simulator) sleep() {
	if s.Latency > 0 {
		time.Sleep(s.Latency)
	}
}

// handle queues the acknowledgement of msg followed by its reply, if any.
func (s *Simulator) handle(msg *protocol.Message) error {
	ack := protocol.NewMessage(msg.Category, msg.Command, nil)
	if s.WrongAck {
		ack.Command ^= 0x0F
	}
	if err := s.send(ack); err != nil {
		return err
	}

	var reply *protocol.Message
	var err error

	switch msg.Category {
	case protocol.CategoryDevice:
		reply, err = s.handleDevice(msg)
	case protocol.CategorySleep:
		// acknowledged only
	case protocol.CategoryFingerDetection:
		reply, err = s.handleFingerDetection(msg)
	case protocol.CategoryConfig:
		reply = s.handleUploadConfig(msg)
	case protocol.CategoryMCU:
		reply, err = s.handleMCU(msg)
	default:
		err = fmt.Errorf("unknown category 0x%02X", msg.Category)
	}

	if err != nil {
		return fmt.Errorf("sensortest: %s: %w", msg, err)
	}
	if reply == nil {
		return nil
	}
	return s.send(reply)
}

func (s *Simulator) handleDevice(msg *protocol.Message) (*protocol.Message, error) {
	switch msg.Command {
	case protocol.CmdReset:
		if len(msg.Payload) != 2 {
			return nil, fmt.Errorf("reset payload must be 2 bytes")
		}
		s.clientRandom = nil
		s.hello = nil
		return nil, nil
	case protocol.CmdReadOTP:
		return protocol.NewMessage(protocol.CategoryDevice, protocol.CmdReadOTP, s.OTP), nil
	case protocol.CmdECControl:
		if len(msg.Payload) != 3 {
			return nil, fmt.Errorf("ec control payload must be 3 bytes")
		}
		return protocol.NewMessage(protocol.CategoryDevice, protocol.CmdECControl, []byte{s.ECStatus, 0x00}), nil
	default:
		return nil, fmt.Errorf("unknown device command 0x%02X", msg.Command)
	}
}

func (s *Simulator) handleFingerDetection(msg *protocol.Message) (*protocol.Message, error) {
	if len(msg.Payload) != 2+protocol.FDTBaseSize {
		return nil, fmt.Errorf("finger detection payload must be %d bytes", 2+protocol.FDTBaseSize)
	}

	base := msg.Payload[2:]
	if s.NextFDTBase != nil {
		base = s.NextFDTBase
	}

	payload := make([]byte, 0, protocol.FingerDetectionReplySize)
	payload = binary.LittleEndian.AppendUint16(payload, s.FDTTouchFlags)
	payload = append(payload, s.FDTIRQStatus, 0x00)
	payload = append(payload, base...)

	return protocol.NewMessage(protocol.CategoryFingerDetection, msg.Command, payload), nil
}

func (s *Simulator) handleUploadConfig(msg *protocol.Message) *protocol.Message {
	status := s.ConfigStatus
	cfg, err := calibration.NewConfig(msg.Payload)
	if err != nil || !cfg.ChecksumValid() {
		status = 0x00
	}
	s.config = append([]byte(nil), msg.Payload...)
	return protocol.NewMessage(protocol.CategoryConfig, protocol.CmdUploadConfig, []byte{status, 0x00})
}

func (s *Simulator) handleMCU(msg *protocol.Message) (*protocol.Message, error) {
	if len(msg.Payload) < protocol.MCUHeaderSize {
		return nil, fmt.Errorf("mcu payload too short")
	}

	dataType := binary.LittleEndian.Uint32(msg.Payload)
	data, err := protocol.ParseMCU(msg, dataType)
	if err != nil {
		return nil, err
	}

	switch dataType {
	case protocol.MCUClientHello:
		return s.handleClientHello(data)
	case protocol.MCUClientIdentify:
		return s.handleClientIdentify(data)
	default:
		return nil, fmt.Errorf("unexpected mcu data type 0x%04X", dataType)
	}
}

func (s *Simulator) handleClientHello(clientRandom []byte) (*protocol.Message, error) {
	hello, err := s.PSK.ServerHello(clientRandom, s.ServerRandom)
	if err != nil {
		return nil, err
	}
	if s.CorruptIdentity {
		hello[len(hello)-1] ^= 0x01
	}

	s.clientRandom = append([]byte(nil), clientRandom...)
	s.hello = hello
	return protocol.BuildMCU(protocol.MCUServerIdentify, hello)
}

func (s *Simulator) handleClientIdentify(data []byte) (*protocol.Message, error) {
	if s.hello == nil {
		return nil, fmt.Errorf("client identify before client hello")
	}

	want := append(append([]byte(nil), s.hello[gtls.RandomSize:]...), 0xEE, 0xEE, 0xEE, 0xEE)
	status := byte(protocol.HandshakeStatusOK)
	if !bytes.Equal(data, want) {
		status = 0x01
	}
	return protocol.BuildMCU(protocol.MCUServerDone, []byte{status})
}

// send queues msg for the host in ChunkIn sized chunks.
func (s *Simulator) send(msg *protocol.Message) error {
	frame, err := msg.Encode(true)
	if err != nil {
		return err
	}
	chunks, err := protocol.SplitChunks(frame, s.ChunkIn)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if s.EmptyPackets {
			s.out = append(s.out, []byte{})
		}
		s.out = append(s.out, c)
	}
	return nil
}
