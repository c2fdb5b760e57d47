package session

import (
	"context"

	"github.com/aretw0/provision/pkg/domain"
	"github.com/aretw0/provision/pkg/ports"
)

var (
	_ ports.Device   = (*Guard)(nil)
	_ ports.WifiView = (*Guard)(nil)
)

// Guard wraps a device so that calls changing its state run under the device lock.
// Queries and scans pass through unlocked. Every guard of a device shares the
// credential view kept by the manager.
type Guard struct {
	ports.Device
	manager  *Manager
	deviceID string
}

// NewGuard serializes mutating calls on dev through manager.
func NewGuard(dev ports.Device, manager *Manager, deviceID string) *Guard {
	return &Guard{Device: dev, manager: manager, deviceID: deviceID}
}

// SetWifiCredentials holds the lock only while the credentials are written
// when the device can join separately. Otherwise the whole call is locked.
func (g *Guard) SetWifiCredentials(ctx context.Context, ssid, password string) (domain.WifiStatus, error) {
	joiner, ok := g.Device.(ports.WifiJoiner)
	if !ok {
		var st domain.WifiStatus
		err := g.manager.WithLock(ctx, g.deviceID, func(ctx context.Context) error {
			var err error
			if st, err = g.Device.SetWifiCredentials(ctx, ssid, password); err != nil {
				return err
			}
			g.manager.NoteWifi(g.deviceID, domain.WifiLink{SSID: ssid, Connected: st.Connected})
			return nil
		})
		return st, err
	}

	var rev uint64
	err := g.manager.WithLock(ctx, g.deviceID, func(ctx context.Context) error {
		if err := joiner.StoreWifiCredentials(ctx, ssid, password); err != nil {
			return err
		}
		rev = g.manager.NoteWifi(g.deviceID, domain.WifiLink{SSID: ssid})
		return nil
	})
	if err != nil {
		return domain.WifiStatus{}, err
	}

	st, err := joiner.JoinWifi(ctx, ssid, password)
	if err != nil {
		return st, err
	}
	g.manager.noteJoined(g.deviceID, rev, st.Connected)
	return st, nil
}

func (g *Guard) ClearWifiCredentials(ctx context.Context) error {
	return g.manager.WithLock(ctx, g.deviceID, func(ctx context.Context) error {
		if err := g.Device.ClearWifiCredentials(ctx); err != nil {
			return err
		}
		g.manager.NoteWifi(g.deviceID, domain.WifiLink{})
		return nil
	})
}

func (g *Guard) SetBleField(ctx context.Context, field domain.BleField, value string) error {
	return g.manager.WithLock(ctx, g.deviceID, func(ctx context.Context) error {
		return g.Device.SetBleField(ctx, field, value)
	})
}

// KnownWifi returns the shared credential view of the guarded device.
func (g *Guard) KnownWifi() (domain.WifiLink, bool) {
	return g.manager.KnownWifi(g.deviceID)
}
