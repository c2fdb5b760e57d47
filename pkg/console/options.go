package console

import (
	"log/slog"
	"time"

	"github.com/aretw0/provision/pkg/domain"
)

const (
	// DefaultScanTimeout bounds Wi-Fi and I2C scans.
	DefaultScanTimeout = 15 * time.Second

	// DefaultBleScanWindow is how long a BLE scan listens for advertisers.
	DefaultBleScanWindow = 5 * time.Second

	// DefaultConnectTimeout bounds a Wi-Fi connection attempt.
	DefaultConnectTimeout = 20 * time.Second

	// DefaultCallTimeout bounds the quick collaborator calls made inline.
	DefaultCallTimeout = 2 * time.Second
)

// Option defines a functional option for configuring the Console.
type Option func(*Console)

// WithID names the console in logs and events.
func WithID(id string) Option {
	return func(c *Console) {
		c.id = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// WithHooks registers observability callbacks. Multiple calls are merged.
func WithHooks(hooks domain.ConsoleHooks) Option {
	return func(c *Console) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithCapacity sets the maximum line length in bytes.
func WithCapacity(n int) Option {
	return func(c *Console) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithPrompt sets the prompt written after every completed line.
func WithPrompt(prompt string) Option {
	return func(c *Console) {
		c.prompt = prompt
	}
}

// WithSeparator selects the command separator ('/' or ':').
// It drives both command prefixes and password masking.
func WithSeparator(sep byte) Option {
	return func(c *Console) {
		if sep >= 0x21 && sep <= 0x7E {
			c.sep = sep
		}
	}
}

// WithScanTimeout bounds Wi-Fi and I2C scans.
func WithScanTimeout(d time.Duration) Option {
	return func(c *Console) {
		if d > 0 {
			c.scanTimeout = d
		}
	}
}

// WithBleScanWindow sets how long BLE scans listen.
func WithBleScanWindow(d time.Duration) Option {
	return func(c *Console) {
		if d > 0 {
			c.bleWindow = d
		}
	}
}

// WithConnectTimeout bounds Wi-Fi connection attempts.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Console) {
		if d > 0 {
			c.connectTimeout = d
		}
	}
}

// WithCallTimeout bounds status queries and field updates, which run inline.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Console) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

// WithWifiState seeds the credentials the device booted with.
func WithWifiState(ssid string, connected bool) Option {
	return func(c *Console) {
		c.wifi.ssid = ssid
		c.wifi.connected = connected && ssid != ""
	}
}

// WithUnknownCommandReply makes unmatched lines answer with UnknownText instead of silence.
func WithUnknownCommandReply(enabled bool) Option {
	return func(c *Console) {
		c.unknownReply = enabled
	}
}

// WithMode sets the initial mode.
func WithMode(mode domain.Mode) Option {
	return func(c *Console) {
		c.mode = mode
	}
}

// WithPassthroughEcho keeps echoing keystrokes (masked as usual) while the
// console is in passthrough. Completed lines still produce no reply.
func WithPassthroughEcho(enabled bool) Option {
	return func(c *Console) {
		c.passthroughEcho = enabled
	}
}
