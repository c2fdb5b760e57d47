package domain

// Encryption is the authentication mode advertised by an access point.
type Encryption string

const (
	EncryptionOpen    Encryption = "Open"
	EncryptionWEP     Encryption = "WEP"
	EncryptionWPA     Encryption = "WPA"
	EncryptionWPA2    Encryption = "WPA2"
	EncryptionWPAWPA2 Encryption = "WPA/WPA2"
	EncryptionWPA2Ent Encryption = "WPA2-ENT"
	EncryptionWPA3    Encryption = "WPA3"
	EncryptionUnknown Encryption = "Unknown"
)

// ParseEncryption maps a free-form label onto a known Encryption, falling back to Unknown.
func ParseEncryption(s string) Encryption {
	switch Encryption(s) {
	case EncryptionOpen, EncryptionWEP, EncryptionWPA, EncryptionWPA2,
		EncryptionWPAWPA2, EncryptionWPA2Ent, EncryptionWPA3:
		return Encryption(s)
	}
	return EncryptionUnknown
}

// WifiNetwork is one access point reported by a scan.
type WifiNetwork struct {
	SSID       string     `json:"ssid" yaml:"ssid"`
	RSSI       int        `json:"rssi" yaml:"rssi"`
	Encryption Encryption `json:"encryption" yaml:"encryption"`
}

// WifiStatus is the station state reported by the device.
type WifiStatus struct {
	Connected bool   `json:"connected"`
	SSID      string `json:"ssid,omitempty"`
	IP        string `json:"ip,omitempty"`
	RSSI      int    `json:"rssi,omitempty"`
}

// WifiLink is the locally known credential view of a device: the configured
// SSID and whether the last join attempt with it succeeded.
type WifiLink struct {
	SSID      string `json:"ssid,omitempty"`
	Connected bool   `json:"connected"`
}
