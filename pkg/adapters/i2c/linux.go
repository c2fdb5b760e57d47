//go:build linux

package i2c

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
	"tinygo.org/x/drivers"
)

// i2cSlave is the I2C_SLAVE ioctl from <linux/i2c-dev.h>.
const i2cSlave = 0x0703

var _ drivers.I2C = (*LinuxBus)(nil)

// LinuxBus drives /dev/i2c-N through the i2c-dev interface.
type LinuxBus struct {
	mu   sync.Mutex
	fd   int
	path string
}

// OpenBus opens /dev/i2c-<n>.
func OpenBus(n int) (*LinuxBus, error) {
	path := fmt.Sprintf("/dev/i2c-%d", n)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &LinuxBus{fd: fd, path: path}, nil
}

// Tx implements drivers.I2C as a write followed by a read on the selected address.
func (b *LinuxBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := unix.IoctlSetInt(b.fd, i2cSlave, int(addr)); err != nil {
		return fmt.Errorf("%s: select 0x%02X: %w", b.path, addr, err)
	}
	if len(w) > 0 {
		if _, err := unix.Write(b.fd, w); err != nil {
			return ackError(err)
		}
	}
	if len(r) > 0 {
		if _, err := unix.Read(b.fd, r); err != nil {
			return ackError(err)
		}
	}
	return nil
}

// Close releases the device file.
func (b *LinuxBus) Close() error {
	return unix.Close(b.fd)
}

// The i2c-dev driver reports a missing ACK as ENXIO (or EREMOTEIO on some adapters).
func ackError(err error) error {
	if errors.Is(err, unix.ENXIO) || errors.Is(err, unix.EREMOTEIO) || errors.Is(err, unix.EIO) {
		return ErrNoAck
	}
	return err
}
