/*
Package provision is a line-oriented provisioning console for headless devices.

Bytes arriving on a serial-like stream are assembled into lines with backspace editing,
echoed back with Wi-Fi passwords masked, and dispatched through a fixed command table to a
device collaborator (ports.Device). The console starts in Provisioning mode; "exit" switches
it to Passthrough, where every line is ignored except "help" and "?", which switch back.

# Architecture

  - pkg/console: the line buffer, masking, command grammar and dispatch.
  - pkg/runner: the polling loop that feeds input and applies finished background jobs.
  - pkg/ports: the device and storage contracts.
  - pkg/adapters: a simulated device (sim), Redis and in-memory state stores, a Linux
    I2C bus prober, a host BLE scanner and the ops HTTP API.
  - pkg/session: per-device locking shared by several consoles.

# Usage

	store := memory.NewStore()
	dev := sim.New(store, sim.DefaultProfile())

	s := provision.NewSession(os.Stdin, os.Stdout, dev)
	if err := s.Run(ctx); err != nil {
		log.Fatal(err)
	}

Commands (with the default "/" separator):

	wifi/SSID/PASSWORD     set credentials and connect (password echoed as '*')
	wifi/clear             erase stored credentials
	wifi/status            show connection status
	wifi/scan              scan for Wi-Fi networks
	ble/name NAME          set the advertised name
	ble/service UUID       set the service UUID
	ble/char1 UUID HEX     set characteristic 1 (char2 likewise)
	ble/scan, ble/status   scan for advertisers, show BLE config
	i2c/scan               probe the I2C bus
	exit                   enter Passthrough mode
	help, ?                print this list (and leave Passthrough)
*/
package provision
