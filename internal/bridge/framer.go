package bridge

import (
	"bytes"
	"strings"
)

// Framer splits a byte stream into newline-delimited messages. It keeps any
// unterminated tail for the next Feed, so reads may split or merge lines
// arbitrarily.
type Framer struct {
	buf []byte
}

func NewFramer() *Framer {
	return &Framer{buf: make([]byte, 0, 256)}
}

// Feed appends p and returns every complete line, trimmed of surrounding
// whitespace. Lines that trim to empty are dropped.
func (f *Framer) Feed(p []byte) []string {
	f.buf = append(f.buf, p...)

	var lines []string
	consumed := 0
	for {
		i := bytes.IndexByte(f.buf[consumed:], '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSpace(string(f.buf[consumed : consumed+i]))
		consumed += i + 1
		if line != "" {
			lines = append(lines, line)
		}
	}

	if consumed > 0 {
		f.buf = append(f.buf[:0], f.buf[consumed:]...)
	}
	return lines
}

// Pending reports how many bytes are buffered waiting for a delimiter.
func (f *Framer) Pending() int { return len(f.buf) }

func (f *Framer) Reset() { f.buf = f.buf[:0] }
