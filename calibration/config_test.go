package calibration

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testBlob builds a 60 byte config:
//
//	section 4: base 16, size 12 -> entries 16, 20, 24, 28
//	section 6: base 32, size 8  -> entries 32, 36, 40
//	section 8: base 44, size 8  -> entries 44, 48, 52
func testBlob() []byte {
	data := make([]byte, 60)
	data[5], data[6] = 16, 12
	data[7], data[8] = 32, 8
	data[9], data[10] = 44, 8

	entries := map[int]uint16{
		16: TagTCode,
		20: TagDACL,
		24: TagDeltaDown,
		28: TagTCode, // last entry of section 4, base+size inclusive
		32: TagTCode,
		36: TagDACL,
		40: TagDeltaDown, // not patched outside section 4
		44: TagDACL,      // not patched in section 8
		48: TagTCode,
		56: TagTCode, // outside every section
	}
	for off, tag := range entries {
		binary.LittleEndian.PutUint16(data[off:], tag)
		binary.LittleEndian.PutUint16(data[off+2:], 0xBEEF)
	}
	return data
}

func value(data []byte, entry int) uint16 {
	return binary.LittleEndian.Uint16(data[entry+2:])
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{name: "valid", data: testBlob()},
		{name: "too short", data: make([]byte, 12), wantErr: "config too short"},
		{name: "odd length", data: make([]byte, 61), wantErr: "not a whole number of words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.data)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			tt.data[0] = 0xFF
			if cfg.Bytes()[0] == 0xFF {
				t.Error("config aliases the caller's buffer")
			}
		})
	}
}

func TestSection(t *testing.T) {
	cfg, _ := NewConfig(testBlob())

	base, size, err := cfg.Section(4)
	if err != nil || base != 16 || size != 12 {
		t.Errorf("Section(4) = %d, %d, %v, want 16, 12, nil", base, size, err)
	}
	if _, _, err := cfg.Section(60); err == nil {
		t.Error("expected error for section outside the table")
	}
	if _, _, err := cfg.Section(-1); err == nil {
		t.Error("expected error for negative section")
	}
}

func TestPatch(t *testing.T) {
	orig, _ := NewConfig(testBlob())
	params := &Params{TCode: 0x13, DACL: 0x156, DeltaDown: 0x0A}

	patched, err := Patch(orig, params)
	if err != nil {
		t.Fatalf("Patch() error: %v", err)
	}
	data := patched.Bytes()

	want := map[int]uint16{
		16: 0x13,
		20: 0x156<<4 | 8,
		24: 0x0A<<8 | 0x80,
		28: 0x13,
		32: 0x13,
		36: 0x1568,
		40: 0xBEEF,
		44: 0xBEEF,
		48: 0x13,
		56: 0xBEEF,
	}
	for entry, v := range want {
		if got := value(data, entry); got != v {
			t.Errorf("entry %d = 0x%04X, want 0x%04X", entry, got, v)
		}
	}

	if !patched.ChecksumValid() {
		t.Error("patched config checksum does not validate")
	}
	if !bytes.Equal(orig.Bytes(), testBlob()) {
		t.Error("Patch() modified its input")
	}
}

func TestPatchIdempotent(t *testing.T) {
	orig, _ := NewConfig(testBlob())
	params := &Params{TCode: 0x100, DACL: 0xD0, DeltaDown: 0x25}

	first, err := Patch(orig, params)
	if err != nil {
		t.Fatalf("Patch() error: %v", err)
	}
	second, _ := Patch(orig, params)
	again, _ := Patch(first, params)

	if diff := cmp.Diff(first.Bytes(), second.Bytes()); diff != "" {
		t.Errorf("patching twice differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Bytes(), again.Bytes()); diff != "" {
		t.Errorf("patching a patched config differs (-first +again):\n%s", diff)
	}
}

func TestReplaceValueNeverTouchesTrailer(t *testing.T) {
	data := make([]byte, 16)
	data[9], data[10] = 8, 8 // section 8: entries 8, 12, 16
	binary.LittleEndian.PutUint16(data[12:], TagTCode)
	data[14], data[15] = 0xAA, 0xBB

	cfg, _ := NewConfig(data)
	n, err := cfg.ReplaceValue(8, TagTCode, 0x1234)
	if err != nil {
		t.Fatalf("ReplaceValue() error: %v", err)
	}
	if n != 0 {
		t.Errorf("replaced %d entries overlapping the trailer, want 0", n)
	}
	if got := cfg.Bytes()[14:]; !bytes.Equal(got, []byte{0xAA, 0xBB}) {
		t.Errorf("trailer = % X, want AA BB", got)
	}
}

func TestFixChecksum(t *testing.T) {
	cfg, _ := NewConfig(testBlob())
	if cfg.ChecksumValid() {
		t.Fatal("zero trailer unexpectedly valid")
	}
	cfg.FixChecksum()
	if !cfg.ChecksumValid() {
		t.Error("checksum invalid after FixChecksum")
	}
}

func TestApplyNilParams(t *testing.T) {
	cfg, _ := NewConfig(testBlob())
	if err := cfg.Apply(nil); err == nil {
		t.Error("expected error for nil params")
	}
	if _, err := Patch(nil, &Params{}); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestParseConfigReader(t *testing.T) {
	input := "# section table\n" +
		"00 00 00 00 00 10 0c 20\n" +
		"\n" +
		"08 2c 08 00 00 00 00 00  # padding\n" +
		"0000\n"

	cfg, err := ParseConfigReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseConfigReader() error: %v", err)
	}
	if cfg.Len() != 18 {
		t.Errorf("Len() = %d, want 18", cfg.Len())
	}
	if base, size, _ := cfg.Section(4); base != 0x10 || size != 0x0C {
		t.Errorf("Section(4) = %d, %d, want 16, 12", base, size)
	}

	errTests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"invalid hex", "00 zz\n", "line 1: invalid hex data"},
		{"odd digit count", "# c\n000\n", "line 2: invalid hex data"},
		{"only comments", "# nothing\n\n", "no config data found"},
		{"too short", "0000\n", "config too short"},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfigReader(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensor.cfg")
	if err := os.WriteFile(path, []byte(strings.Repeat("00", 16)+"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	cfg, err := ParseConfig(path)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}
	if cfg.Len() != 16 {
		t.Errorf("Len() = %d, want 16", cfg.Len())
	}

	if _, err := ParseConfig(filepath.Join(t.TempDir(), "missing.cfg")); err == nil {
		t.Error("expected error for missing file")
	}
}

func BenchmarkPatch(b *testing.B) {
	cfg, _ := NewConfig(testBlob())
	params := &Params{TCode: 0x13, DACL: 0x156, DeltaDown: 0x0A}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Patch(cfg, params)
	}
}
