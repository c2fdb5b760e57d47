package runner

import (
	"errors"
	"io"
	"time"

	"github.com/smallnest/ringbuffer"
)

// pump copies the input stream into the ring buffer. When the buffer is full it
// backs off until the loop catches up.
func (r *Runner) pump() {
	defer close(r.eof)

	chunk := make([]byte, 256)
	for {
		n, err := r.input.Read(chunk)
		if n > 0 {
			if !r.enqueue(chunk[:n]) {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.readErr = err
			}
			return
		}
	}
}

func (r *Runner) enqueue(data []byte) bool {
	for len(data) > 0 {
		n, err := r.queue.Write(data)
		data = data[n:]
		if n > 0 {
			r.signal()
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, ringbuffer.ErrIsFull) && !errors.Is(err, ringbuffer.ErrTooManyDataToWrite) {
			r.readErr = err
			return false
		}
		select {
		case <-r.stop:
			return false
		case <-time.After(r.interval):
		}
	}
	return true
}

// signal wakes the loop without blocking.
func (r *Runner) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}
