package cli

import (
	"bytes"
	"io"
)

const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
)

// keyReader adapts terminal and socket input to the console's line protocol.
// CR and CRLF become LF, Ctrl+D ends input and Ctrl+C calls interrupt and ends input.
type keyReader struct {
	base      io.Reader
	interrupt func()
	lastCR    bool
	done      error
}

func newKeyReader(base io.Reader, interrupt func()) *keyReader {
	return &keyReader{base: base, interrupt: interrupt}
}

func (r *keyReader) Read(p []byte) (int, error) {
	if r.done != nil {
		return 0, r.done
	}
	n, err := r.base.Read(p)

	out := 0
	for i := 0; i < n; i++ {
		b := p[i]
		switch b {
		case keyCtrlC:
			if r.interrupt != nil {
				r.interrupt()
			}
			r.done = io.EOF
			return out, nil
		case keyCtrlD:
			r.done = io.EOF
			return out, nil
		case '\r':
			r.lastCR = true
			p[out] = '\n'
			out++
			continue
		case '\n':
			if r.lastCR {
				r.lastCR = false
				continue
			}
		}
		r.lastCR = false
		p[out] = b
		out++
	}
	return out, err
}

// crlfWriter expands LF to CRLF for raw terminals and network clients.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if bytes.IndexByte(p, '\n') < 0 {
		return c.w.Write(p)
	}
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
