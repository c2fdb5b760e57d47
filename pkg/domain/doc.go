/*
Package domain contains the core domain models of the provisioning console.

It defines the console modes, the parsed command values, and the records exchanged with the
device collaborator (Wi-Fi status and scan results, BLE configuration and scan results).
The package is kept pure and free of I/O so that the parser and the console can be tested
without hardware.

# Key Entities

  - Mode: Provisioning (commands are dispatched) or Passthrough (only re-entry keywords).
  - Command: A completed line resolved to a fixed kind plus positional arguments.
  - WifiStatus, WifiNetwork: Connection state and scan results reported by the device.
  - BleConfig, BleDevice: Advertised configuration and nearby devices.
  - DeviceState: Snapshot persisted by simulator stores.
*/
package domain
