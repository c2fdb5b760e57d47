//go:build !linux

package i2c

import (
	"errors"

	"tinygo.org/x/drivers"
)

// LinuxBus is only available on Linux.
type LinuxBus struct {
	drivers.I2C
}

// OpenBus always fails outside Linux.
func OpenBus(n int) (*LinuxBus, error) {
	return nil, errors.New("i2c: /dev/i2c buses are only supported on linux")
}

// Close is a no-op.
func (b *LinuxBus) Close() error { return nil }
