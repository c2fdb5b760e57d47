package domain

// Factory defaults of a fresh device.
const (
	// DefaultCapacity is the maximum number of bytes buffered for one line.
	DefaultCapacity = 160

	// DefaultPrompt is written after every completed line while provisioning.
	DefaultPrompt = "esp> "

	// DefaultSeparator splits command words ("wifi/status", "wifi/SSID/PASSWORD").
	DefaultSeparator = '/'

	// ColonSeparator selects the older "wifi:SSID:PASSWORD" dialect.
	ColonSeparator = ':'

	// DefaultBleNamePrefix is prepended to the device suffix when no name is configured.
	DefaultBleNamePrefix = "ESP32-"

	// DefaultBleServiceUUID is the advertised service before any provisioning.
	DefaultBleServiceUUID = "12345678-1234-1234-1234-123456789ABC"
)
