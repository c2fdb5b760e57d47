// Package i2c probes an I2C bus for responding peripherals.
//
// The bus is any tinygo.org/x/drivers.I2C: a Linux /dev/i2c-N character device, or a
// StaticBus for simulation and tests.
package i2c
