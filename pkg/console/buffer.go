package console

// LineBuffer holds the line being typed. It only grows at the tail and only
// shrinks by one byte at a time.
type LineBuffer struct {
	buf []byte
	max int
}

// NewLineBuffer creates a buffer holding at most capacity bytes.
func NewLineBuffer(capacity int) *LineBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &LineBuffer{buf: make([]byte, 0, capacity), max: capacity}
}

// Append adds c and reports false when the buffer is full.
func (b *LineBuffer) Append(c byte) bool {
	if len(b.buf) >= b.max {
		return false
	}
	b.buf = append(b.buf, c)
	return true
}

// Backspace removes the last byte and reports false on an empty buffer.
func (b *LineBuffer) Backspace() bool {
	if len(b.buf) == 0 {
		return false
	}
	b.buf = b.buf[:len(b.buf)-1]
	return true
}

// Reset empties the buffer.
func (b *LineBuffer) Reset() {
	b.buf = b.buf[:0]
}

// Full reports whether another byte would be dropped.
func (b *LineBuffer) Full() bool {
	return len(b.buf) >= b.max
}

func (b *LineBuffer) Len() int      { return len(b.buf) }
func (b *LineBuffer) Cap() int      { return b.max }
func (b *LineBuffer) Bytes() []byte { return b.buf }
func (b *LineBuffer) String() string {
	return string(b.buf)
}
