package protocol

import "fmt"

// MinChunkSize is the smallest chunk able to carry a message header.
const MinChunkSize = HeaderSize

// SplitChunks splits an encoded frame into chunks of exactly maxChunk bytes.
//
// The first chunk carries the first maxChunk bytes of the frame verbatim. Every
// following chunk starts with frame[0]|ContinuationFlag followed by the next
// maxChunk-1 frame bytes. The last chunk is zero-padded.
func SplitChunks(frame []byte, maxChunk int) ([][]byte, error) {
	if maxChunk < MinChunkSize {
		return nil, fmt.Errorf("chunk size %d is smaller than minimum %d", maxChunk, MinChunkSize)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("frame cannot be empty")
	}

	var chunks [][]byte
	sent := 0
	for sent < len(frame) {
		chunk := make([]byte, maxChunk)
		if sent == 0 {
			sent += copy(chunk, frame)
		} else {
			chunk[0] = frame[0] | ContinuationFlag
			sent += copy(chunk[1:], frame[sent:])
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// ContinuationMatches reports whether a continuation chunk starting with b
// belongs to a message whose first byte is first. The continuation flag is
// ignored on both sides.
func ContinuationMatches(first, b byte) bool {
	return first&^ContinuationFlag == b&^ContinuationFlag
}

// Reassembler rebuilds one frame from the chunks of a message.
//
// Feed chunks in order with Add until it reports completion, then take the
// frame with Frame.
type Reassembler struct {
	buf   []byte
	total int
}

// Add appends one received chunk. It returns true once the declared frame
// length has been reached.
//
// The first chunk must contain the message header. Later chunks must start
// with a continuation byte matching the first frame byte; the byte is
// stripped before the rest of the chunk is appended.
func (r *Reassembler) Add(chunk []byte) (bool, error) {
	if r.buf == nil {
		total, err := FrameLength(chunk)
		if err != nil {
			return false, err
		}
		r.total = total
		r.buf = append(make([]byte, 0, total+len(chunk)), chunk...)
		return r.Done(), nil
	}

	if r.Done() {
		return true, nil
	}
	if len(chunk) == 0 {
		return false, &FramingError{Reason: "empty continuation chunk"}
	}
	if !ContinuationMatches(r.buf[0], chunk[0]) {
		return false, &FramingError{
			Reason:   "continuation byte mismatch",
			Expected: int(r.buf[0] | ContinuationFlag),
			Actual:   int(chunk[0]),
		}
	}

	r.buf = append(r.buf, chunk[1:]...)
	return r.Done(), nil
}

// Done reports whether the declared frame length has been reached.
func (r *Reassembler) Done() bool {
	return r.buf != nil && len(r.buf) >= r.total
}

// Frame returns the reassembled frame without trailing padding.
func (r *Reassembler) Frame() ([]byte, error) {
	if !r.Done() {
		return nil, &FramingError{Reason: "message incomplete", Expected: r.total, Actual: len(r.buf)}
	}
	return r.buf[:r.total], nil
}

// Reset discards any partial message.
func (r *Reassembler) Reset() {
	r.buf = nil
	r.total = 0
}
