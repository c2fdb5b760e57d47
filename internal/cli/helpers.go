package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/provision/internal/config"
	"github.com/aretw0/provision/internal/logging"
)

// SignalContext is a context canceled by SIGINT or SIGTERM that remembers
// which signal ended it.
type SignalContext struct {
	context.Context
	Cancel func()

	mu     sync.Mutex
	signal os.Signal
}

// NewSignalContext behaves like signal.NotifyContext but keeps the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			sc.mu.Lock()
			sc.signal = sig
			sc.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal reports the signal that canceled the context, if any.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.signal
}

// NewLogger configures the application logger from cfg.
// Debug forces debug level; otherwise log.level applies.
func NewLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return logging.NewWithFormat(os.Stderr, level, logging.Format(cfg.Log.Format)), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// errInterrupted is returned by readers stopped by the operator.
var errInterrupted = errors.New("interrupted")

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, errInterrupted) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed)
}

// HandleExecutionError maps operator interruptions to a clean exit.
func HandleExecutionError(err error) error {
	if err == nil {
		return nil
	}
	if isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

// InterruptibleReader stops yielding input once done is closed. A read that
// was already blocked returns errInterrupted as soon as it comes back.
type InterruptibleReader struct {
	r    io.Reader
	done <-chan struct{}
}

func NewInterruptibleReader(r io.Reader, done <-chan struct{}) *InterruptibleReader {
	return &InterruptibleReader{r: r, done: done}
}

func (ir *InterruptibleReader) stopped() bool {
	select {
	case <-ir.done:
		return true
	default:
		return false
	}
}

func (ir *InterruptibleReader) Read(p []byte) (int, error) {
	if ir.stopped() {
		return 0, errInterrupted
	}
	n, err := ir.r.Read(p)
	if ir.stopped() {
		return 0, errInterrupted
	}
	return n, err
}
