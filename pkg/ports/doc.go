/*
Package ports defines the driven ports (interfaces) of the provisioning console.

These interfaces decouple the console from the device it provisions and from the storage used
by the simulator, so the console can be driven by fakes in tests and by real adapters in the CLI.

# Key Interfaces

  - Device: The collaborator invoked by dispatch (Wi-Fi, BLE and I2C operations).
  - StateStore: Persists simulated device state (memory, file or Redis).
  - DistributedLocker: Serializes mutating device calls across console instances.
*/
package ports
