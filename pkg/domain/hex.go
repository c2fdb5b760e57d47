package domain

// HexToBytes decodes s two characters at a time. Invalid digits stop the
// conversion of their pair the way strtol does, so "4G" yields 0x04 and "zz"
// yields 0x00; an odd trailing character is decoded alone.
func HexToBytes(s string) []byte {
	out := make([]byte, 0, (len(s)+1)/2)
	for i := 0; i < len(s); i += 2 {
		end := i + 2
		if end > len(s) {
			end = len(s)
		}
		out = append(out, parseHexPair(s[i:end]))
	}
	return out
}

// HexToASCII decodes s with HexToBytes and returns the raw bytes as a string.
func HexToASCII(s string) string {
	return string(HexToBytes(s))
}

func parseHexPair(pair string) byte {
	var v byte
	for i := 0; i < len(pair); i++ {
		d, ok := hexDigit(pair[i])
		if !ok {
			break
		}
		v = v<<4 | d
	}
	return v
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
