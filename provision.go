package provision

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/provision/internal/logging"
	"github.com/aretw0/provision/pkg/console"
	"github.com/aretw0/provision/pkg/domain"
	"github.com/aretw0/provision/pkg/ports"
	"github.com/aretw0/provision/pkg/runner"
)

// Session is the high-level entry point: one console fed from a reader.
type Session struct {
	console *console.Console
	runner  *runner.Runner
	greet   bool
}

type settings struct {
	logger      *slog.Logger
	hooks       domain.ConsoleHooks
	greet       bool
	consoleOpts []console.Option
	runnerOpts  []runner.Option
}

// Option defines a functional option for configuring the Session.
type Option func(*settings)

// WithLogger sets a custom structured logger for the console and its loop.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.ConsoleHooks) Option {
	return func(s *settings) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithGreeting controls whether the command list and prompt are printed on start (default: true).
func WithGreeting(enabled bool) Option {
	return func(s *settings) {
		s.greet = enabled
	}
}

// WithConsoleOptions passes options through to the console.
func WithConsoleOptions(opts ...console.Option) Option {
	return func(s *settings) {
		s.consoleOpts = append(s.consoleOpts, opts...)
	}
}

// WithRunnerOptions passes options through to the polling loop.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(s *settings) {
		s.runnerOpts = append(s.runnerOpts, opts...)
	}
}

// NewSession creates a console on dev that reads in and writes out.
func NewSession(in io.Reader, out io.Writer, dev ports.Device, opts ...Option) *Session {
	s := &settings{logger: logging.NewNop(), greet: true}
	for _, opt := range opts {
		opt(s)
	}

	consoleOpts := append([]console.Option{
		console.WithLogger(s.logger),
		console.WithHooks(s.hooks),
	}, s.consoleOpts...)
	c := console.New(out, dev, consoleOpts...)

	runnerOpts := append([]runner.Option{runner.WithLogger(s.logger)}, s.runnerOpts...)
	return &Session{
		console: c,
		runner:  runner.New(c, in, runnerOpts...),
		greet:   s.greet,
	}
}

// Console exposes the underlying console.
func (s *Session) Console() *console.Console {
	return s.console
}

// Run greets and feeds the console until input ends or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	if s.greet {
		s.console.Greet()
	}
	return s.runner.Run(ctx)
}
