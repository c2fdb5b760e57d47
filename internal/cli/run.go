package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/provision/internal/config"
	"github.com/aretw0/provision/internal/presentation/tui"
	"github.com/aretw0/provision/pkg/console"
	"github.com/aretw0/provision/pkg/runner"
	"golang.org/x/term"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	In     io.Reader
	Out    io.Writer
	Logger *slog.Logger
	// Raw switches a terminal input into raw mode for byte-at-a-time echo.
	Raw   bool
	Quiet bool
}

// RunConsole attaches one console to the configured device and feeds it until input
// ends, Ctrl+C/Ctrl+D is pressed or ctx is cancelled.
func RunConsole(ctx context.Context, cfg *config.Config, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		var err error
		if logger, err = NewLogger(cfg); err != nil {
			return err
		}
	}
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	sc := NewSignalContext(ctx)
	defer sc.Cancel()

	env, err := newEnvironment(sc, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := env.Close(); err != nil {
			logger.Warn("close failed", "err", err)
		}
	}()

	if !opts.Quiet {
		tui.PrintBanner(out, env.device.ID())
	}

	if f, ok := in.(*os.File); ok && opts.Raw && term.IsTerminal(int(f.Fd())) {
		old, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer func() { _ = term.Restore(int(f.Fd()), old) }()
		out = crlfWriter{w: out}
	}

	deviceID := env.device.ID()
	detach := env.manager.Attach("local", deviceID, "stdin")
	defer detach()

	dev := sessionGuard(env, deviceID)
	c := console.New(out, dev, env.consoleOptions("local", env.manager.Hooks())...)
	defer func() { _ = c.Close() }()
	c.Greet()

	input := newKeyReader(NewInterruptibleReader(in, sc.Done()), sc.Cancel)
	err = runner.New(c, input, runner.WithLogger(logger)).Run(sc)

	if !opts.Quiet {
		fmt.Fprint(out, "\n")
		if sig := sc.Signal(); sig != nil {
			printSystemMessage(out, "Terminated by %v.", sig)
		} else {
			printSystemMessage(out, "Console closed.")
		}
	}
	return HandleExecutionError(err)
}
