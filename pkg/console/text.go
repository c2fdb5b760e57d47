package console

import (
	"fmt"
	"strings"

	"github.com/aretw0/provision/pkg/domain"
)

// HelpEntry is one row of the command reference.
type HelpEntry struct {
	Usage       string
	Description string
}

// HelpEntries returns the command reference for sep.
func HelpEntries(sep byte) []HelpEntry {
	s := string(sep)
	return []HelpEntry{
		{"wifi" + s + "SSID" + s + "PASSWORD", "set / connect (password masked)"},
		{"wifi" + s + "clear", "erase stored credentials"},
		{"wifi" + s + "status", "show connection status"},
		{"wifi" + s + "scan", "scan for nearby Wi-Fi networks"},
		{"ble" + s + "name NAME", "set BLE device name"},
		{"ble" + s + "service UUID", "set service UUID"},
		{"ble" + s + "char1 UUID HEX", "set char1 UUID and hex value"},
		{"ble" + s + "char2 UUID HEX", "set char2 UUID and hex value"},
		{"ble" + s + "scan", "scan for nearby BLE devices"},
		{"ble" + s + "status", "show current BLE config"},
		{"i2c" + s + "scan", "scan for I2C devices"},
		{"exit", "exit provisioning mode"},
		{"quit / disconnect", "show serial monitor exit instructions"},
		{"help / ?", "this help"},
	}
}

// HelpText renders the help block written on "help", "?" and re-entry.
func HelpText(sep byte) string {
	var sb strings.Builder
	sb.WriteString("Provisioning commands:\n")
	for _, e := range HelpEntries(sep) {
		fmt.Fprintf(&sb, "  %-20s -> %s\n", e.Usage, e.Description)
	}
	return sb.String()
}

// ExitText is written when the console leaves Provisioning mode.
const ExitText = `=== SERIAL MONITOR EXIT INSTRUCTIONS ===
The device cannot force-close your serial monitor.
To exit, use your serial monitor's exit method:

• PlatformIO: Press Ctrl+C
• Arduino IDE: Close the Serial Monitor window
• Terminal/Screen: Press Ctrl+A then K, or Ctrl+C
• Minicom: Press Ctrl+A then X
• PuTTY: Close the window or press Ctrl+C

Device will continue running normally.
=== END EXIT INSTRUCTIONS ===

[prov] Exiting provisioning mode. Device will continue normal operation.
       Enter 'help' or '?' to re-enter provisioning mode.
`

// UnknownText is written for unmatched lines when WithUnknownCommandReply is enabled.
const UnknownText = "[prov] Unknown command. Enter 'help' or '?' for the command list."

const (
	textNoCredentials = "[wifi] No credentials set"
	textCleared       = "[prov] Cleared creds"
	textWifiScanning  = "[wifi] Scanning for networks..."
	textWifiNone      = "[wifi] No networks found"
	textI2CScanning   = "[i2c] Scanning I2C bus..."
	textI2CNone       = "[i2c] No I2C devices found"
	textWifiFailed    = "WiFi failed"
)

func formatWifiStatus(ssid string, connected bool, st domain.WifiStatus) string {
	if connected && st.Connected {
		return fmt.Sprintf("[wifi] Connected SSID='%s' IP=%s RSSI=%ddBm", ssid, st.IP, st.RSSI)
	}
	return fmt.Sprintf("[wifi] Not connected (attempting) SSID='%s'", ssid)
}

func formatWifiScan(networks []domain.WifiNetwork) []string {
	if len(networks) == 0 {
		return []string{textWifiNone}
	}
	lines := []string{fmt.Sprintf("[wifi] Found %d networks:", len(networks))}
	for i, n := range networks {
		lines = append(lines, fmt.Sprintf("  %2d: %-20s %3ddBm %s", i+1, n.SSID, n.RSSI, n.Encryption))
	}
	return lines
}

func formatBleStatus(cfg domain.BleConfig) []string {
	lines := []string{
		fmt.Sprintf("[ble] Name: %s", cfg.Name),
		fmt.Sprintf("[ble] Service: %s", cfg.ServiceUUID),
	}
	for i := 0; i < 2; i++ {
		ch := cfg.Char(i)
		lines = append(lines, fmt.Sprintf("[ble] Char%d: %s \"%s\" (hex: %s)", i+1, ch.UUID, ch.ASCII(), ch.HexValue))
	}
	if cfg.Dirty {
		lines = append(lines, "[ble] Pending changes will apply on next advertising restart")
	}
	return lines
}

func formatBleSet(field domain.BleField, value string) string {
	switch field {
	case domain.BleFieldName:
		return "[ble] Name set to: " + value
	case domain.BleFieldService:
		return "[ble] Service UUID set to: " + value
	}
	idx, _ := field.CharIndex()
	return fmt.Sprintf("[ble] Char%d set to: %s", idx+1, value)
}

func formatBleScan(devices []domain.BleDevice) []string {
	lines := []string{fmt.Sprintf("[ble] Scan complete. Found %d devices:", len(devices))}
	for i, d := range devices {
		lines = append(lines, fmt.Sprintf("  %d: %s (RSSI: %d)", i+1, d.DisplayName(), d.RSSI))
	}
	for i, d := range devices {
		detail := fmt.Sprintf("[ble] Device %d: Address=%s", i+1, d.Address)
		if d.Name != "" {
			detail += " Name=" + d.Name
		}
		if d.ServiceUUID != "" {
			detail += " ServiceUUID=" + d.ServiceUUID
		}
		lines = append(lines, fmt.Sprintf("%s RSSI=%d", detail, d.RSSI))
	}
	return lines
}

func formatI2CScan(addrs []uint16) []string {
	if len(addrs) == 0 {
		return []string{textI2CNone}
	}
	lines := make([]string, 0, len(addrs)+1)
	for _, a := range addrs {
		lines = append(lines, fmt.Sprintf("[i2c] I2C device found: address 0x%02X", a))
	}
	return append(lines, fmt.Sprintf("[i2c] Scan complete. Found %d device(s)", len(addrs)))
}

// errorLine renders a collaborator failure under the tag of the command family.
func errorLine(kind domain.CommandKind, err error) string {
	return fmt.Sprintf("%s Error: %v", tag(kind), err)
}

func tag(kind domain.CommandKind) string {
	switch kind {
	case domain.CommandBleStatus, domain.CommandBleName, domain.CommandBleService,
		domain.CommandBleChar1, domain.CommandBleChar2, domain.CommandBleScan:
		return "[ble]"
	case domain.CommandI2CScan:
		return "[i2c]"
	}
	return "[wifi]"
}
