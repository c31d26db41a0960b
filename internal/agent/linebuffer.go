package agent

import (
	"bytes"
	"strings"
)

// LineBuffer incrementally splits a byte stream into complete lines. Feed
// returns the lines each chunk completes and retains any trailing partial
// line, so chunk boundaries can fall anywhere, including mid-line.
type LineBuffer struct {
	partial []byte
}

// Feed appends chunk to the buffer and returns the newly completed lines,
// without their line endings. A trailing fragment with no newline stays
// buffered for the next call.
func (b *LineBuffer) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	b.partial = append(b.partial, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(b.partial, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, strings.TrimSuffix(string(b.partial[:i]), "\r"))
		b.partial = b.partial[i+1:]
	}
	return lines
}

// Flush returns any buffered partial line and clears the buffer. The bool
// reports whether a fragment was pending. Call this once the stream has
// ended so an unterminated final line is not lost.
func (b *LineBuffer) Flush() (string, bool) {
	if len(b.partial) == 0 {
		return "", false
	}
	line := strings.TrimSuffix(string(b.partial), "\r")
	b.partial = nil
	return line, true
}
