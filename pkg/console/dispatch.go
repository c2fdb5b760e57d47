package console

import (
	"context"
	"fmt"

	"github.com/aretw0/provision/pkg/domain"
	"github.com/aretw0/provision/pkg/ports"
)

// execute runs a parsed command against the device. Quick calls run inline
// under callTimeout; scans and connection attempts become jobs.
func (c *Console) execute(cmd domain.Command) {
	switch cmd.Kind {
	case domain.CommandHelp:
		c.emit(HelpText(c.sep))
	case domain.CommandExit:
		c.setMode(domain.ModePassthrough)
		c.emit(ExitText)
	case domain.CommandWifiStatus:
		c.wifiStatus()
	case domain.CommandWifiScan:
		c.wifiScan()
	case domain.CommandWifiClear:
		c.wifiClear()
	case domain.CommandWifiSet:
		c.wifiSet(cmd.Arg(0), cmd.Arg(1))
	case domain.CommandBleStatus:
		c.bleStatus()
	case domain.CommandBleName, domain.CommandBleService, domain.CommandBleChar1, domain.CommandBleChar2:
		c.bleSet(cmd)
	case domain.CommandBleScan:
		c.bleScan()
	case domain.CommandI2CScan:
		c.i2cScan()
	default:
		if c.unknownReply && cmd.Line != "" {
			c.println(UnknownText)
		}
	}
}

func (c *Console) call(fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(c.ctx, c.callTimeout)
	defer cancel()
	return fn(ctx)
}

func (c *Console) reportError(kind domain.CommandKind, err error) {
	c.logger.Warn("device call failed", "console_id", c.id, "kind", kind, "err", err)
	c.println(errorLine(kind, err))
}

func (c *Console) wifiStatus() {
	ssid, connected := c.knownWifi()
	if ssid == "" {
		c.println(textNoCredentials)
		return
	}
	var st domain.WifiStatus
	err := c.call(func(ctx context.Context) (err error) {
		st, err = c.dev.WifiStatus(ctx)
		return err
	})
	if err != nil {
		c.reportError(domain.CommandWifiStatus, err)
		return
	}
	c.println(formatWifiStatus(ssid, connected, st))
}

// knownWifi returns the credential view without a device call. A device shared
// with other consoles keeps the authoritative view, except while this console's
// own connection attempt is still pending.
func (c *Console) knownWifi() (string, bool) {
	if v, ok := c.dev.(ports.WifiView); ok {
		if _, pending := c.jobs[domain.CommandWifiSet]; !pending {
			if link, ok := v.KnownWifi(); ok {
				return link.SSID, link.Connected
			}
		}
	}
	return c.wifi.ssid, c.wifi.connected
}

// wifiClear cancels a pending connection attempt and waits for it to return
// before clearing, so the attempt cannot store its credentials afterwards.
func (c *Console) wifiClear() {
	exited := c.dropJob(domain.CommandWifiSet)
	err := c.call(func(ctx context.Context) error {
		if err := awaitExit(ctx, exited); err != nil {
			return fmt.Errorf("connection attempt still running: %w", err)
		}
		return c.dev.ClearWifiCredentials(ctx)
	})
	if err != nil {
		c.reportError(domain.CommandWifiClear, err)
		return
	}
	c.wifi = wifiState{gen: c.wifi.gen + 1}
	c.println(textCleared)
}

// wifiSet supersedes a pending connection attempt with a new one.
func (c *Console) wifiSet(ssid, password string) {
	c.println(fmt.Sprintf("[prov] Got ssid='%s' len(pass)=%d", ssid, len(password)))
	if exited := c.dropJob(domain.CommandWifiSet); exited != nil {
		c.logger.Debug("superseding connection attempt", "console_id", c.id, "ssid", ssid)
		err := c.call(func(ctx context.Context) error {
			if err := awaitExit(ctx, exited); err != nil {
				return fmt.Errorf("connection attempt still running: %w", err)
			}
			return nil
		})
		if err != nil {
			c.reportError(domain.CommandWifiSet, err)
			return
		}
	}
	c.wifi.ssid = ssid
	c.wifi.connected = false
	c.wifi.gen++
	gen := c.wifi.gen

	c.println(fmt.Sprintf("Connecting to '%s'...", ssid))
	c.startJob(domain.CommandWifiSet, c.connectTimeout, func(ctx context.Context) completion {
		st, err := c.dev.SetWifiCredentials(ctx, ssid, password)
		return completion{err: err, render: func() []string {
			if gen != c.wifi.gen {
				return nil
			}
			if err != nil {
				return []string{errorLine(domain.CommandWifiSet, err), textWifiFailed}
			}
			c.wifi.connected = st.Connected
			if st.Connected {
				return []string{"WiFi OK " + st.IP}
			}
			return []string{textWifiFailed}
		}}
	})
}

func (c *Console) wifiScan() {
	if c.busy(domain.CommandWifiScan) {
		return
	}
	c.println(textWifiScanning)
	c.startJob(domain.CommandWifiScan, c.scanTimeout, func(ctx context.Context) completion {
		networks, err := c.dev.ScanWifi(ctx)
		return completion{err: err, render: func() []string {
			if err != nil {
				return []string{errorLine(domain.CommandWifiScan, err)}
			}
			return formatWifiScan(networks)
		}}
	})
}

func (c *Console) bleStatus() {
	var cfg domain.BleConfig
	err := c.call(func(ctx context.Context) (err error) {
		cfg, err = c.dev.BleStatus(ctx)
		return err
	})
	if err != nil {
		c.reportError(domain.CommandBleStatus, err)
		return
	}
	for _, line := range formatBleStatus(cfg) {
		c.println(line)
	}
}

func (c *Console) bleSet(cmd domain.Command) {
	field, _ := cmd.BleField()
	value := cmd.Arg(0)
	if _, isChar := field.CharIndex(); isChar {
		value = domain.BleCharacteristic{UUID: cmd.Arg(0), HexValue: cmd.Arg(1)}.String()
	}
	err := c.call(func(ctx context.Context) error {
		return c.dev.SetBleField(ctx, field, value)
	})
	if err != nil {
		c.reportError(cmd.Kind, err)
		return
	}
	c.println(formatBleSet(field, value))
}

func (c *Console) bleScan() {
	if c.busy(domain.CommandBleScan) {
		return
	}
	c.println(fmt.Sprintf("[ble] Starting BLE scan for %d seconds...", int(c.bleWindow.Seconds())))
	c.startJob(domain.CommandBleScan, c.bleWindow, func(ctx context.Context) completion {
		devices, err := c.dev.ScanBle(ctx)
		return completion{err: err, render: func() []string {
			if err != nil {
				return []string{errorLine(domain.CommandBleScan, err)}
			}
			return formatBleScan(devices)
		}}
	})
}

func (c *Console) i2cScan() {
	if c.busy(domain.CommandI2CScan) {
		return
	}
	c.println(textI2CScanning)
	c.startJob(domain.CommandI2CScan, c.scanTimeout, func(ctx context.Context) completion {
		addrs, err := c.dev.ScanI2C(ctx)
		return completion{err: err, render: func() []string {
			if err != nil {
				return []string{errorLine(domain.CommandI2CScan, err)}
			}
			return formatI2CScan(addrs)
		}}
	})
}
