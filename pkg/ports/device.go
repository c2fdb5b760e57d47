package ports

import (
	"context"

	"github.com/aretw0/provision/pkg/domain"
)

// WifiController is the Wi-Fi half of the device collaborator.
type WifiController interface {
	// WifiStatus reports the current station state.
	WifiStatus(ctx context.Context) (domain.WifiStatus, error)

	// ScanWifi lists nearby access points. It may block for seconds.
	ScanWifi(ctx context.Context) ([]domain.WifiNetwork, error)

	// SetWifiCredentials stores the credentials and attempts a connection.
	// The returned status reflects the outcome of the attempt.
	SetWifiCredentials(ctx context.Context, ssid, password string) (domain.WifiStatus, error)

	// ClearWifiCredentials erases stored credentials and drops the connection.
	ClearWifiCredentials(ctx context.Context) error
}

// BleController is the BLE half of the device collaborator.
type BleController interface {
	// BleStatus returns the advertised configuration.
	BleStatus(ctx context.Context) (domain.BleConfig, error)

	// ScanBle lists nearby advertisers. It may block for seconds.
	ScanBle(ctx context.Context) ([]domain.BleDevice, error)

	// SetBleField updates one field and marks the configuration dirty.
	// Characteristic fields take a "UUID HEX" value.
	SetBleField(ctx context.Context, field domain.BleField, value string) error
}

// BusScanner probes a peripheral bus.
type BusScanner interface {
	// ScanI2C returns the 7-bit addresses that acknowledged.
	ScanI2C(ctx context.Context) ([]uint16, error)
}

// Device is the full collaborator set the console dispatches to.
type Device interface {
	WifiController
	BleController
	BusScanner
}

// WifiJoiner is implemented by devices that can persist credentials and join
// the network as separate steps. SetWifiCredentials is then StoreWifiCredentials
// followed by JoinWifi, and callers may hold a lock for the store step only.
type WifiJoiner interface {
	StoreWifiCredentials(ctx context.Context, ssid, password string) error
	JoinWifi(ctx context.Context, ssid, password string) (domain.WifiStatus, error)
}

// WifiView is implemented by devices that track the credential view locally.
// KnownWifi never reaches the radio; ok is false until the view is known.
type WifiView interface {
	KnownWifi() (link domain.WifiLink, ok bool)
}
