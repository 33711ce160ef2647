package calibration

import (
	"encoding/binary"
	"fmt"

	"github.com/moffa90/go-goodixtls/protocol"
)

// Config tags patched with calibration values.
const (
	TagTCode     = 0x5C
	TagDACL      = 0x220
	TagDeltaDown = 0x82
)

// Sections holding the patched tags.
var (
	tcodeSections     = []int{4, 6, 8}
	dacLSections      = []int{4, 6}
	deltaDownSections = []int{4}
)

const (
	// entrySize is the stride of a section entry: TAG(2) + VALUE(2)
	entrySize = 4

	// MinConfigSize covers the section table entries of section 8 plus the
	// checksum trailer
	MinConfigSize = 14
)

// Config is a sensor configuration blob.
//
// Layout:
//
//	[SECTION_TABLE...][SECTIONS...][CHECKSUM_L][CHECKSUM_H]
//
// Section n starts at offset data[n+1] and spans data[n+2] bytes. Every
// section is a list of little-endian (tag, value) entries.
type Config struct {
	data []byte
}

// NewConfig wraps a copy of data.
func NewConfig(data []byte) (*Config, error) {
	if len(data) < MinConfigSize {
		return nil, fmt.Errorf("config too short: got %d bytes, minimum is %d", len(data), MinConfigSize)
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("config length %d is not a whole number of words", len(data))
	}
	return &Config{data: append([]byte(nil), data...)}, nil
}

// Bytes returns a copy of the blob.
func (c *Config) Bytes() []byte {
	return append([]byte(nil), c.data...)
}

// Len returns the blob size including the checksum trailer.
func (c *Config) Len() int {
	return len(c.data)
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	return &Config{data: c.Bytes()}
}

// Section returns the base offset and size of section n.
func (c *Config) Section(n int) (base, size int, err error) {
	if n < 0 || n+2 >= len(c.data)-protocol.ChecksumSize {
		return 0, 0, fmt.Errorf("section %d is outside the section table", n)
	}
	return int(c.data[n+1]), int(c.data[n+2]), nil
}

// ReplaceValue sets the value of every entry tagged tag within section n and
// returns the number of entries changed.
//
// Entries are scanned in 4-byte strides from base up to and including
// base+size. Entries that would overlap the checksum trailer are skipped.
func (c *Config) ReplaceValue(n int, tag, value uint16) (int, error) {
	base, size, err := c.Section(n)
	if err != nil {
		return 0, err
	}

	limit := len(c.data) - protocol.ChecksumSize
	replaced := 0
	for entry := base; entry <= base+size && entry+entrySize <= limit; entry += entrySize {
		if binary.LittleEndian.Uint16(c.data[entry:]) == tag {
			binary.LittleEndian.PutUint16(c.data[entry+2:], value)
			replaced++
		}
	}
	return replaced, nil
}

// FixChecksum recomputes the trailer over everything before it.
func (c *Config) FixChecksum() {
	body := c.data[:len(c.data)-protocol.ChecksumSize]
	binary.LittleEndian.PutUint16(c.data[len(body):], protocol.Checksum(body))
}

// ChecksumValid reports whether the trailer matches the blob.
func (c *Config) ChecksumValid() bool {
	body := c.data[:len(c.data)-protocol.ChecksumSize]
	return binary.LittleEndian.Uint16(c.data[len(body):]) == protocol.Checksum(body)
}

// Apply patches c in place with the calibration values of p and fixes the
// checksum.
func (c *Config) Apply(p *Params) error {
	if p == nil {
		return fmt.Errorf("calibration params cannot be nil")
	}

	replacements := []struct {
		sections []int
		tag      uint16
		value    uint16
	}{
		{tcodeSections, TagTCode, p.TCode},
		{dacLSections, TagDACL, p.DACL<<4 | 8},
		{deltaDownSections, TagDeltaDown, uint16(p.DeltaDown)<<8 | 0x80},
	}

	for _, r := range replacements {
		for _, n := range r.sections {
			if _, err := c.ReplaceValue(n, r.tag, r.value); err != nil {
				return fmt.Errorf("replace tag 0x%02X: %w", r.tag, err)
			}
		}
	}

	c.FixChecksum()
	return nil
}

// Patch returns a copy of cfg patched with p. cfg is not modified, so
// patching the same blob twice yields identical bytes.
func Patch(cfg *Config, p *Params) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	patched := cfg.Clone()
	if err := patched.Apply(p); err != nil {
		return nil, err
	}
	return patched, nil
}
