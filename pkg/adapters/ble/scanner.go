// Package ble scans for nearby BLE advertisers with the host Bluetooth stack.
package ble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/provision/internal/logging"
	"github.com/aretw0/provision/pkg/domain"
	"tinygo.org/x/bluetooth"
)

const bufferSize = 32

// Scanner implements the BLE scan half of ports.BleController.
type Scanner struct {
	adapter *bluetooth.Adapter
	service *bluetooth.UUID
	logger  *slog.Logger

	mu         sync.Mutex // one scan at a time per adapter
	enableOnce sync.Once
	enableErr  error
}

// Option configures the Scanner.
type Option func(*Scanner)

// WithServiceFilter keeps only advertisers announcing uuid.
func WithServiceFilter(uuid bluetooth.UUID) Option {
	return func(s *Scanner) {
		s.service = &uuid
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// NewScanner creates a scanner on adapter (bluetooth.DefaultAdapter when nil).
func NewScanner(adapter *bluetooth.Adapter, opts ...Option) *Scanner {
	if adapter == nil {
		adapter = bluetooth.DefaultAdapter
	}
	s := &Scanner{adapter: adapter, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanBle listens until ctx ends and returns every advertiser seen, strongest first.
// The end of the scan window (deadline) is the normal way to finish; an explicit
// cancel returns the partial list together with ctx.Err().
func (s *Scanner) ScanBle(ctx context.Context) ([]domain.BleDevice, error) {
	s.enableOnce.Do(func() {
		if err := s.adapter.Enable(); err != nil {
			s.enableErr = fmt.Errorf("unable to initialize bluetooth stack: %w", err)
		}
	})
	if s.enableErr != nil {
		return nil, s.enableErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan sighting, bufferSize)
	scanErr := make(chan error, 1)
	go func() {
		scanErr <- s.adapter.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
			if r.Address == nil {
				return
			}
			if s.service != nil && !r.HasServiceUUID(*s.service) {
				return
			}
			sight := sighting{address: r.Address.String(), name: r.LocalName(), rssi: int(r.RSSI)}
			if s.service != nil {
				sight.service = s.service.String()
			}
			select {
			case ch <- sight:
			default: // full; the advertiser will be seen again
			}
		})
	}()

	var c collector
	for {
		select {
		case sight := <-ch:
			c.add(sight)
		case err := <-scanErr:
			if err != nil {
				return c.devices(), fmt.Errorf("unable to initiate BLE scan: %w", err)
			}
			return c.devices(), nil
		case <-ctx.Done():
			if err := s.adapter.StopScan(); err != nil {
				s.logger.Warn("failed to stop BLE scan", "err", err)
			}
			<-scanErr
			for drained := false; !drained; {
				select {
				case sight := <-ch:
					c.add(sight)
				default:
					drained = true
				}
			}
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return c.devices(), nil
			}
			return c.devices(), ctx.Err()
		}
	}
}
