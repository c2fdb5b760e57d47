// Package sim provides a simulated device for running the console without hardware.
//
// Credentials and BLE configuration live in a ports.StateStore so several consoles (or
// processes, with the Redis store) observe the same device. Radio surroundings come from
// a Profile.
package sim

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/provision/internal/logging"
	"github.com/aretw0/provision/pkg/adapters/i2c"
	"github.com/aretw0/provision/pkg/domain"
	"github.com/aretw0/provision/pkg/ports"
)

var (
	_ ports.Device     = (*Device)(nil)
	_ ports.WifiJoiner = (*Device)(nil)
)

// BleScanner is the scan capability a real radio can lend the simulator.
type BleScanner interface {
	ScanBle(ctx context.Context) ([]domain.BleDevice, error)
}

// Device implements ports.Device on top of a StateStore and a Profile.
type Device struct {
	store   ports.StateStore
	profile Profile
	bus     ports.BusScanner
	ble     BleScanner
	logger  *slog.Logger

	mu        sync.Mutex
	connected string // SSID of the current association, "" when down
	epoch     uint64 // bumped whenever the stored credentials change
}

// Option configures the Device.
type Option func(*Device)

// WithBus replaces the simulated I2C bus (e.g. with a /dev/i2c-N scanner).
func WithBus(bus ports.BusScanner) Option {
	return func(d *Device) {
		d.bus = bus
	}
}

// WithBleScanner routes BLE scans to a real radio.
func WithBleScanner(s BleScanner) Option {
	return func(d *Device) {
		d.ble = s
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Device) {
		d.logger = logger
	}
}

// New creates a simulated device persisting to store.
func New(store ports.StateStore, profile Profile, opts ...Option) *Device {
	d := &Device{
		store:   store,
		profile: profile,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.bus == nil {
		d.bus = i2c.NewScanner(i2c.NewStaticBus(profile.I2C...))
	}
	return d
}

// ID returns the device ID used as the store key.
func (d *Device) ID() string {
	return d.profile.ID
}

// State loads the persisted state, creating the factory default on first use.
func (d *Device) State(ctx context.Context) (*domain.DeviceState, error) {
	state, err := d.store.Load(ctx, d.profile.ID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	state = &domain.DeviceState{ID: d.profile.ID, Ble: domain.DefaultBleConfig(d.profile.Suffix)}
	if err := d.store.Save(ctx, d.profile.ID, state); err != nil {
		return nil, err
	}
	d.logger.Info("initialized device state", "device_id", d.profile.ID)
	return state, nil
}

// update applies fn to the stored state and saves it. A canceled ctx aborts
// before the save, so a caller that gave up never overwrites a later change.
func (d *Device) update(ctx context.Context, fn func(*domain.DeviceState) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updateLocked(ctx, fn)
}

func (d *Device) updateLocked(ctx context.Context, fn func(*domain.DeviceState) error) error {
	state, err := d.State(ctx)
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.store.Save(ctx, d.profile.ID, state)
}

// setCredentials saves creds and drops any association made with the old ones.
func (d *Device) setCredentials(ctx context.Context, creds domain.Credentials) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.updateLocked(ctx, func(s *domain.DeviceState) error {
		s.Credentials = creds
		return nil
	})
	if err != nil {
		return err
	}
	d.connected = ""
	d.epoch++
	return nil
}

// WifiStatus reports the association of the simulated station.
func (d *Device) WifiStatus(ctx context.Context) (domain.WifiStatus, error) {
	d.mu.Lock()
	ssid := d.connected
	d.mu.Unlock()

	if ssid == "" {
		state, err := d.State(ctx)
		if err != nil {
			return domain.WifiStatus{}, err
		}
		return domain.WifiStatus{SSID: state.Credentials.SSID}, nil
	}
	n, _ := d.profile.network(ssid)
	return domain.WifiStatus{Connected: true, SSID: ssid, IP: d.profile.IP, RSSI: n.RSSI}, nil
}

// ScanWifi returns the profile networks, strongest first.
func (d *Device) ScanWifi(ctx context.Context) ([]domain.WifiNetwork, error) {
	if err := sleep(ctx, d.profile.Delays.WifiScan); err != nil {
		return nil, err
	}
	out := make([]domain.WifiNetwork, 0, len(d.profile.Networks))
	for _, n := range d.profile.Networks {
		out = append(out, n.WifiNetwork)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RSSI > out[j].RSSI })
	return out, nil
}

// SetWifiCredentials stores the credentials and joins the network when it is
// in range and the password matches.
func (d *Device) SetWifiCredentials(ctx context.Context, ssid, password string) (domain.WifiStatus, error) {
	if err := d.StoreWifiCredentials(ctx, ssid, password); err != nil {
		return domain.WifiStatus{}, err
	}
	return d.JoinWifi(ctx, ssid, password)
}

// StoreWifiCredentials persists the credentials without joining.
func (d *Device) StoreWifiCredentials(ctx context.Context, ssid, password string) error {
	return d.setCredentials(ctx, domain.Credentials{SSID: ssid, Password: password})
}

// JoinWifi simulates the association. A join overtaken by a credential change,
// or made with credentials that are not the stored ones, reports not connected.
func (d *Device) JoinWifi(ctx context.Context, ssid, password string) (domain.WifiStatus, error) {
	d.mu.Lock()
	epoch := d.epoch
	d.mu.Unlock()

	if err := sleep(ctx, d.profile.Delays.Connect); err != nil {
		return domain.WifiStatus{}, err
	}

	n, ok := d.profile.network(ssid)
	if !ok || (n.Password != "" && n.Password != password) {
		d.logger.Debug("simulated join failed", "device_id", d.profile.ID, "ssid", ssid, "in_range", ok)
		return domain.WifiStatus{SSID: ssid}, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.WifiStatus{}, err
	}
	state, err := d.State(ctx)
	if err != nil {
		return domain.WifiStatus{}, err
	}
	if d.epoch != epoch || state.Credentials.SSID != ssid || state.Credentials.Password != password {
		d.logger.Debug("simulated join superseded", "device_id", d.profile.ID, "ssid", ssid)
		return domain.WifiStatus{SSID: ssid}, nil
	}
	d.connected = ssid
	return domain.WifiStatus{Connected: true, SSID: ssid, IP: d.profile.IP, RSSI: n.RSSI}, nil
}

// ClearWifiCredentials erases the credentials and drops the association.
func (d *Device) ClearWifiCredentials(ctx context.Context) error {
	return d.setCredentials(ctx, domain.Credentials{})
}

// BleStatus returns the persisted BLE configuration.
func (d *Device) BleStatus(ctx context.Context) (domain.BleConfig, error) {
	state, err := d.State(ctx)
	if err != nil {
		return domain.BleConfig{}, err
	}
	return state.Ble, nil
}

// ScanBle lists nearby advertisers from the real radio when one is attached,
// otherwise from the profile.
func (d *Device) ScanBle(ctx context.Context) ([]domain.BleDevice, error) {
	if d.ble != nil {
		return d.ble.ScanBle(ctx)
	}
	if err := sleep(ctx, d.profile.Delays.BleScan); err != nil {
		return nil, err
	}
	return append([]domain.BleDevice(nil), d.profile.BleDevices...), nil
}

// SetBleField updates one BLE field and marks the configuration dirty.
func (d *Device) SetBleField(ctx context.Context, field domain.BleField, value string) error {
	return d.update(ctx, func(s *domain.DeviceState) error {
		return s.Ble.Apply(field, value)
	})
}

// ScanI2C probes the configured bus.
func (d *Device) ScanI2C(ctx context.Context) ([]uint16, error) {
	if err := sleep(ctx, d.profile.Delays.I2CScan); err != nil {
		return nil, err
	}
	return d.bus.ScanI2C(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
