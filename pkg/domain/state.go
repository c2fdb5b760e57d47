package domain

// Mode is the console gate deciding whether commands are processed.
type Mode int

const (
	ModeProvisioning Mode = iota // Commands are parsed and dispatched
	ModePassthrough              // Only "help" and "?" are recognized
)

func (m Mode) String() string {
	switch m {
	case ModeProvisioning:
		return "provisioning"
	case ModePassthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

// Credentials are the Wi-Fi secrets held by a device.
type Credentials struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// Empty reports whether no SSID is set.
func (c Credentials) Empty() bool {
	return c.SSID == ""
}

// DeviceState is the persisted snapshot of a simulated device.
type DeviceState struct {
	ID          string      `json:"id"`
	Credentials Credentials `json:"credentials"`
	Ble         BleConfig   `json:"ble"`
}

// Clone returns a deep copy safe to hand out of a store.
func (s *DeviceState) Clone() *DeviceState {
	out := *s
	out.Ble.Chars = append([]BleCharacteristic(nil), s.Ble.Chars...)
	return &out
}
