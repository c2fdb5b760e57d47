package console

import "bytes"

// MaskChar replaces bytes typed in the password region.
const MaskChar = '*'

// MaskEcho returns the byte to echo when c is appended to buf.
// Once buf already holds two separators, everything but the separator itself is masked.
func MaskEcho(buf []byte, c, sep byte) byte {
	if inPasswordRegion(buf, sep) && c != sep {
		return MaskChar
	}
	return c
}

func inPasswordRegion(buf []byte, sep byte) bool {
	first := bytes.IndexByte(buf, sep)
	if first < 0 {
		return false
	}
	return bytes.IndexByte(buf[first+1:], sep) >= 0
}

// MaskLine renders line the way it was echoed while being typed.
func MaskLine(line []byte, sep byte) []byte {
	out := make([]byte, len(line))
	for i, c := range line {
		out[i] = MaskEcho(line[:i], c, sep)
	}
	return out
}
