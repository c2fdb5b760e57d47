package console

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/provision/internal/logging"
	"github.com/aretw0/provision/pkg/domain"
	"github.com/aretw0/provision/pkg/ports"
)

// Console turns a byte stream into dispatched commands.
// Feed, Write, Poll, Drain and Greet must be called from a single goroutine.
type Console struct {
	id     string
	out    io.Writer
	dev    ports.Device
	logger *slog.Logger
	hooks  domain.ConsoleHooks

	capacity     int
	prompt       string
	sep          byte
	unknownReply bool

	passthroughEcho bool

	scanTimeout    time.Duration
	bleWindow      time.Duration
	connectTimeout time.Duration
	callTimeout    time.Duration

	grammar   *Grammar
	buf       *LineBuffer
	truncated bool
	mode      domain.Mode
	wifi      wifiState

	ctx    context.Context
	cancel context.CancelFunc
	jobs   map[domain.CommandKind]*job
	done   chan completion

	writeFailed bool
}

// wifiState is the console's own view of the credentials.
type wifiState struct {
	ssid      string
	connected bool
	gen       uint64 // bumped on every set/clear so stale connect results are ignored
}

// New creates a console writing to w and dispatching to dev.
func New(w io.Writer, dev ports.Device, opts ...Option) *Console {
	c := &Console{
		out:            w,
		dev:            dev,
		logger:         logging.NewNop(),
		capacity:       domain.DefaultCapacity,
		prompt:         domain.DefaultPrompt,
		sep:            domain.DefaultSeparator,
		scanTimeout:    DefaultScanTimeout,
		bleWindow:      DefaultBleScanWindow,
		connectTimeout: DefaultConnectTimeout,
		callTimeout:    DefaultCallTimeout,
		mode:           domain.ModeProvisioning,
		jobs:           make(map[domain.CommandKind]*job),
		done:           make(chan completion, len(asyncKinds)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.grammar = NewGrammar(c.sep)
	c.buf = NewLineBuffer(c.capacity)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// ID returns the console identifier set by WithID.
func (c *Console) ID() string { return c.id }

// Mode returns the current mode.
func (c *Console) Mode() domain.Mode { return c.mode }

// Line returns the partially typed line.
func (c *Console) Line() string { return c.buf.String() }

// Greet writes the help block and the first prompt.
func (c *Console) Greet() {
	if c.mode != domain.ModeProvisioning {
		return
	}
	c.emit(HelpText(c.sep))
	c.writePrompt()
}

// Feed consumes one input byte. It never blocks.
func (c *Console) Feed(b byte) {
	switch {
	case b == '\r':
	case b == '\b' || b == 0x7F:
		if c.buf.Backspace() && c.echoing() {
			c.emit("\b \b")
		}
	case b == '\n':
		c.completeLine()
	case b >= 0x20 && b <= 0x7E:
		if c.buf.Full() {
			c.truncated = true
			return
		}
		echo := MaskEcho(c.buf.Bytes(), b, c.sep)
		c.buf.Append(b)
		if c.echoing() {
			c.emit(string(echo))
		}
	}
}

// Write feeds every byte of p in order. It always consumes all of p.
func (c *Console) Write(p []byte) (int, error) {
	for _, b := range p {
		c.Feed(b)
	}
	return len(p), nil
}

// Passthrough mode is silent until the operator re-enters, unless
// WithPassthroughEcho asked for the serial-terminal behaviour.
func (c *Console) echoing() bool {
	return c.mode == domain.ModeProvisioning || c.passthroughEcho
}

func (c *Console) completeLine() {
	line := c.buf.String()
	ev := &domain.LineEvent{
		EventBase: c.eventBase(domain.EventLine),
		Mode:      c.mode,
		Truncated: c.truncated,
	}
	c.buf.Reset()
	c.truncated = false

	if c.mode == domain.ModePassthrough {
		if line == "help" || line == "?" {
			ev.Kind = domain.CommandHelp
			c.setMode(domain.ModeProvisioning)
			c.emit(HelpText(c.sep))
			c.writePrompt()
		} else {
			cmd, _ := c.grammar.Parse(line)
			ev.Kind = cmd.Kind
			ev.Gated = true
		}
		c.fireLine(ev)
		return
	}

	c.emit("\n")
	cmd, err := c.grammar.Parse(line)
	ev.Kind = cmd.Kind
	if err != nil {
		ev.Malformed = true
		c.logger.Debug("malformed command", "console_id", c.id, "kind", cmd.Kind, "err", err)
		c.println(c.grammar.Usage(cmd.Kind))
	} else {
		c.execute(cmd)
	}
	c.fireLine(ev)

	if c.mode == domain.ModeProvisioning {
		c.writePrompt()
	}
}

func (c *Console) setMode(to domain.Mode) {
	from := c.mode
	if from == to {
		return
	}
	c.mode = to
	c.logger.Info("console mode changed", "console_id", c.id, "from", from, "to", to)
	if c.hooks.OnModeChange != nil {
		c.hooks.OnModeChange(c.ctx, &domain.ModeEvent{
			EventBase: c.eventBase(domain.EventModeChange),
			From:      from,
			To:        to,
		})
	}
}

func (c *Console) fireLine(ev *domain.LineEvent) {
	c.logger.Debug("line completed",
		"console_id", c.id,
		"kind", ev.Kind,
		"mode", ev.Mode,
		"gated", ev.Gated,
		"truncated", ev.Truncated,
	)
	if c.hooks.OnLine != nil {
		c.hooks.OnLine(c.ctx, ev)
	}
}

func (c *Console) eventBase(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, ConsoleID: c.id}
}

func (c *Console) writePrompt() {
	c.emit("\n" + c.prompt)
}

// redraw restores the prompt and the partial line after asynchronous output.
func (c *Console) redraw() {
	c.emit("\n" + c.prompt + string(MaskLine(c.buf.Bytes(), c.sep)))
}

func (c *Console) println(s string) {
	c.emit(s + "\n")
}

func (c *Console) emit(s string) {
	if _, err := io.WriteString(c.out, s); err != nil && !c.writeFailed {
		c.writeFailed = true
		c.logger.Warn("console output failed", "console_id", c.id, "err", err)
	}
}
