package sim

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/provision/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Network is an access point the simulated radio can see.
type Network struct {
	domain.WifiNetwork `yaml:",inline"`
	// Password, when set, is required to join.
	Password string `yaml:"password"`
}

// Delays emulate how long each radio operation takes.
type Delays struct {
	WifiScan time.Duration `yaml:"wifi_scan"`
	BleScan  time.Duration `yaml:"ble_scan"`
	I2CScan  time.Duration `yaml:"i2c_scan"`
	Connect  time.Duration `yaml:"connect"`
}

// Profile describes the simulated surroundings of a device.
type Profile struct {
	ID         string             `yaml:"id"`
	Suffix     string             `yaml:"suffix"`
	IP         string             `yaml:"ip"`
	Networks   []Network          `yaml:"networks"`
	BleDevices []domain.BleDevice `yaml:"ble_devices"`
	I2C        []uint16           `yaml:"i2c"`
	Delays     Delays             `yaml:"delays"`
}

// DefaultProfile is used when no profile file is configured.
func DefaultProfile() Profile {
	return Profile{
		ID:     "esp-sim",
		Suffix: "A1B2C3",
		IP:     "192.168.4.20",
		Networks: []Network{
			{WifiNetwork: domain.WifiNetwork{SSID: "workshop", RSSI: -42, Encryption: domain.EncryptionWPA2}, Password: "solder123"},
			{WifiNetwork: domain.WifiNetwork{SSID: "guest", RSSI: -67, Encryption: domain.EncryptionOpen}},
			{WifiNetwork: domain.WifiNetwork{SSID: "lab-iot", RSSI: -78, Encryption: domain.EncryptionWPAWPA2}, Password: "sensors"},
		},
		BleDevices: []domain.BleDevice{
			{Name: "HRM-Pro", Address: "C4:7C:8D:6A:11:02", RSSI: -58, ServiceUUID: "180D"},
			{Address: "5A:13:9E:00:4B:77", RSSI: -84},
		},
		I2C: []uint16{0x3C, 0x76},
		Delays: Delays{
			WifiScan: 1500 * time.Millisecond,
			BleScan:  2 * time.Second,
			I2CScan:  200 * time.Millisecond,
			Connect:  800 * time.Millisecond,
		},
	}
}

// DecodeProfile reads a YAML profile. Missing fields keep their zero value.
func DecodeProfile(r io.Reader) (Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if err == io.EOF {
			return p, nil
		}
		return Profile{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	for i := range p.Networks {
		p.Networks[i].Encryption = domain.ParseEncryption(string(p.Networks[i].Encryption))
	}
	return p, nil
}

// LoadProfile reads a YAML profile from path.
func LoadProfile(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to open profile: %w", err)
	}
	defer f.Close()
	return DecodeProfile(f)
}

func (p Profile) network(ssid string) (Network, bool) {
	for _, n := range p.Networks {
		if n.SSID == ssid {
			return n, true
		}
	}
	return Network{}, false
}
