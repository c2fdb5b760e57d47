package domain

// CommandKind identifies an entry of the fixed command table.
type CommandKind string

const (
	CommandUnknown    CommandKind = "unknown"
	CommandHelp       CommandKind = "help"
	CommandExit       CommandKind = "exit"
	CommandWifiStatus CommandKind = "wifi_status"
	CommandWifiScan   CommandKind = "wifi_scan"
	CommandWifiClear  CommandKind = "wifi_clear"
	CommandWifiSet    CommandKind = "wifi_set"
	CommandBleStatus  CommandKind = "ble_status"
	CommandBleName    CommandKind = "ble_name"
	CommandBleService CommandKind = "ble_service"
	CommandBleChar1   CommandKind = "ble_char1"
	CommandBleChar2   CommandKind = "ble_char2"
	CommandBleScan    CommandKind = "ble_scan"
	CommandI2CScan    CommandKind = "i2c_scan"
)

// Command is a completed line resolved against the command table.
type Command struct {
	Kind CommandKind
	// Args holds the positional arguments, e.g. [ssid, password] for CommandWifiSet
	// or [uuid, hex] for the characteristic commands.
	Args []string
	// Line is the raw buffered line.
	Line string
}

// Arg returns the i-th argument or "" when absent.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// BleField returns the BLE field a set-command targets.
func (c Command) BleField() (BleField, bool) {
	switch c.Kind {
	case CommandBleName:
		return BleFieldName, true
	case CommandBleService:
		return BleFieldService, true
	case CommandBleChar1:
		return BleFieldChar1, true
	case CommandBleChar2:
		return BleFieldChar2, true
	}
	return "", false
}
