package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/provision/internal/logging"
	"github.com/aretw0/provision/pkg/console"
	"github.com/smallnest/ringbuffer"
)

// Runner drives a console from an input stream.
type Runner struct {
	console *console.Console
	input   io.Reader
	logger  *slog.Logger

	interval     time.Duration
	bufferSize   int
	drainTimeout time.Duration
	duties       []Duty

	queue   *ringbuffer.RingBuffer
	wake    chan struct{}
	eof     chan struct{}
	stop    chan struct{}
	readErr error // written by the pump before eof is closed
}

// New creates a Runner feeding input into c.
func New(c *console.Console, input io.Reader, opts ...Option) *Runner {
	r := &Runner{
		console:      c,
		input:        input,
		logger:       logging.NewNop(),
		interval:     DefaultInterval,
		bufferSize:   DefaultBufferSize,
		drainTimeout: DefaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loops until the input ends or ctx is canceled.
// On end of input it waits for in-flight jobs so their output is not lost.
// On cancellation it cancels in-flight jobs and returns ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	r.queue = ringbuffer.New(r.bufferSize)
	r.wake = make(chan struct{}, 1)
	r.eof = make(chan struct{})
	r.stop = make(chan struct{})
	defer close(r.stop)

	eof := r.eof
	go r.pump()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	scratch := make([]byte, 256)
	inputDone := false
	for {
		r.feed(scratch)
		r.console.Poll()
		for _, duty := range r.duties {
			duty(ctx)
		}

		if inputDone && r.queue.IsEmpty() {
			return r.finish(ctx)
		}

		select {
		case <-ctx.Done():
			r.logger.Debug("runner canceled", "err", ctx.Err())
			_ = r.console.Close()
			return ctx.Err()
		case <-eof:
			inputDone = true
			eof = nil
		case <-r.wake:
		case <-ticker.C:
		}
	}
}

// feed hands every buffered byte to the console.
func (r *Runner) feed(scratch []byte) {
	for {
		n, err := r.queue.Read(scratch)
		if n > 0 {
			_, _ = r.console.Write(scratch[:n])
		}
		if err != nil || n < len(scratch) {
			return
		}
	}
}

func (r *Runner) finish(ctx context.Context) error {
	if r.console.Pending() > 0 {
		r.logger.Debug("input closed, waiting for jobs", "pending", r.console.Pending())
		drainCtx := ctx
		if r.drainTimeout > 0 {
			var cancel context.CancelFunc
			drainCtx, cancel = context.WithTimeout(ctx, r.drainTimeout)
			defer cancel()
		}
		if err := r.console.Drain(drainCtx); err != nil {
			_ = r.console.Close()
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return fmt.Errorf("jobs still running after %s: %w", r.drainTimeout, err)
			}
			return err
		}
	}
	if r.readErr != nil {
		return fmt.Errorf("input error: %w", r.readErr)
	}
	return nil
}
