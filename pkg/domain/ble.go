package domain

import (
	"fmt"
	"strings"
)

// BleField names a provisionable BLE setting.
type BleField string

const (
	BleFieldName    BleField = "name"
	BleFieldService BleField = "service"
	BleFieldChar1   BleField = "char1"
	BleFieldChar2   BleField = "char2"
)

// CharIndex returns the characteristic slot for char1/char2.
func (f BleField) CharIndex() (int, bool) {
	switch f {
	case BleFieldChar1:
		return 0, true
	case BleFieldChar2:
		return 1, true
	}
	return 0, false
}

// BleCharacteristic is a readable characteristic with a hex encoded value.
type BleCharacteristic struct {
	UUID     string `json:"uuid" yaml:"uuid"`
	HexValue string `json:"hex_value" yaml:"hex_value"`
}

// ASCII decodes HexValue for display.
func (c BleCharacteristic) ASCII() string {
	return HexToASCII(c.HexValue)
}

// ParseCharacteristic splits a "UUID HEX" value at its first space.
// The UUID must be non-empty; the hex payload may be empty.
func ParseCharacteristic(value string) (BleCharacteristic, error) {
	i := strings.IndexByte(value, ' ')
	if i <= 0 {
		return BleCharacteristic{}, fmt.Errorf("%w: expected \"UUID HEX\", got %q", ErrMalformedCommand, value)
	}
	return BleCharacteristic{UUID: value[:i], HexValue: value[i+1:]}, nil
}

// String renders the characteristic in the same "UUID HEX" form ParseCharacteristic reads.
func (c BleCharacteristic) String() string {
	return c.UUID + " " + c.HexValue
}

// BleConfig is the advertised BLE configuration.
type BleConfig struct {
	Name        string              `json:"name"`
	ServiceUUID string              `json:"service_uuid"`
	Chars       []BleCharacteristic `json:"chars"`
	// Dirty is set by field updates until the advertiser is restarted.
	Dirty bool `json:"dirty"`
}

// Char returns characteristic i or an empty value.
func (c BleConfig) Char(i int) BleCharacteristic {
	if i < 0 || i >= len(c.Chars) {
		return BleCharacteristic{}
	}
	return c.Chars[i]
}

// Apply updates field with value, marking the config dirty.
func (c *BleConfig) Apply(field BleField, value string) error {
	switch field {
	case BleFieldName:
		c.Name = value
	case BleFieldService:
		c.ServiceUUID = value
	case BleFieldChar1, BleFieldChar2:
		ch, err := ParseCharacteristic(value)
		if err != nil {
			return err
		}
		idx, _ := field.CharIndex()
		for len(c.Chars) <= idx {
			c.Chars = append(c.Chars, BleCharacteristic{})
		}
		c.Chars[idx] = ch
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	c.Dirty = true
	return nil
}

// DefaultBleConfig returns the factory configuration for a device suffix.
func DefaultBleConfig(suffix string) BleConfig {
	return BleConfig{
		Name:        DefaultBleNamePrefix + suffix,
		ServiceUUID: DefaultBleServiceUUID,
		Chars: []BleCharacteristic{
			{UUID: "AC9005F6-80BE-42A2-925E-A8C93049E8DA", HexValue: "31342e322e3132"}, // "14.2.12"
			{UUID: "4D41385F-3629-7E51-B387-27116C3391A3", HexValue: "342e3132332e30"}, // "4.123.0"
		},
	}
}

// BleDevice is one advertiser seen during a scan.
type BleDevice struct {
	Name        string `json:"name" yaml:"name"`
	Address     string `json:"address" yaml:"address"`
	RSSI        int    `json:"rssi" yaml:"rssi"`
	ServiceUUID string `json:"service_uuid,omitempty" yaml:"service_uuid"`
}

// DisplayName returns Name or "Unknown" for anonymous advertisers.
func (d BleDevice) DisplayName() string {
	if d.Name == "" {
		return "Unknown"
	}
	return d.Name
}
