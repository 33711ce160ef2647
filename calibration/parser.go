package calibration

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseConfig reads a hex encoded configuration file.
//
// Example:
//
//	cfg, err := calibration.ParseConfig("goodix5395.cfg")
//	if err != nil {
//	    log.Fatal(err)
//	}
func ParseConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseConfigReader(f)
}

// ParseConfigReader reads a hex encoded configuration from any io.Reader.
//
// The blob is the concatenation of all lines. Whitespace inside a line is
// ignored, as are blank lines and everything after a '#'.
//
// Example:
//
//	cfg, err := calibration.ParseConfigReader(strings.NewReader(
//	    "# section table\n" +
//	    "00 0c 10 ...\n"))
func ParseConfigReader(r io.Reader) (*Config, error) {
	scanner := bufio.NewScanner(r)

	var data []byte
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.Join(strings.Fields(line), "")
		if line == "" {
			continue
		}

		chunk, err := hex.DecodeString(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid hex data: %w", lineNum, err)
		}
		data = append(data, chunk...)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no config data found")
	}

	return NewConfig(data)
}
