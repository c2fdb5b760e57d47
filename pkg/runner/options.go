package runner

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultInterval is the loop period when no input arrives.
	DefaultInterval = 10 * time.Millisecond

	// DefaultBufferSize is the capacity of the input ring buffer in bytes.
	DefaultBufferSize = 1024

	// DefaultDrainTimeout bounds how long Run waits for jobs after input ends.
	DefaultDrainTimeout = 30 * time.Second
)

// Duty is a sibling task serviced once per loop iteration. It must not block.
type Duty func(ctx context.Context)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithInterval sets the idle loop period.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithBufferSize sets the input ring buffer capacity.
func WithBufferSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.bufferSize = n
		}
	}
}

// WithDuty adds a sibling duty. Duties run in registration order.
func WithDuty(d Duty) Option {
	return func(r *Runner) {
		if d != nil {
			r.duties = append(r.duties, d)
		}
	}
}

// WithDrainTimeout bounds the wait for in-flight jobs once input is exhausted.
func WithDrainTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.drainTimeout = d
	}
}
