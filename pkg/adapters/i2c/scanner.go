package i2c

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/provision/internal/logging"
	"tinygo.org/x/drivers"
)

const (
	// FirstAddress and LastAddress bound the default probe range, skipping the
	// reserved 7-bit addresses at both ends.
	FirstAddress uint16 = 0x08
	LastAddress  uint16 = 0x77
)

// ErrNoAck is returned by buses when nothing answered at an address.
var ErrNoAck = errors.New("i2c: no acknowledge")

// Scanner implements ports.BusScanner over a drivers.I2C bus.
type Scanner struct {
	mu     sync.Mutex
	bus    drivers.I2C
	first  uint16
	last   uint16
	logger *slog.Logger
}

// Option configures the Scanner.
type Option func(*Scanner)

// WithRange overrides the probed address range (inclusive).
func WithRange(first, last uint16) Option {
	return func(s *Scanner) {
		if first <= last && last <= 0x7F {
			s.first, s.last = first, last
		}
	}
}

// WithLogger configures a logger for probe failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// NewScanner creates a scanner for bus.
func NewScanner(bus drivers.I2C, opts ...Option) *Scanner {
	s := &Scanner{
		bus:    bus,
		first:  FirstAddress,
		last:   LastAddress,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanI2C reads one byte from every address in range and returns those that answered.
// A canceled ctx stops the scan and returns what was found so far with ctx.Err().
func (s *Scanner) ScanI2C(ctx context.Context) ([]uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []uint16
	probe := make([]byte, 1)
	for addr := s.first; addr <= s.last; addr++ {
		if err := ctx.Err(); err != nil {
			return found, err
		}
		err := s.bus.Tx(addr, nil, probe)
		switch {
		case err == nil:
			found = append(found, addr)
		case errors.Is(err, ErrNoAck):
		default:
			s.logger.Debug("i2c probe failed", "addr", fmt.Sprintf("0x%02X", addr), "err", err)
		}
	}
	return found, nil
}
