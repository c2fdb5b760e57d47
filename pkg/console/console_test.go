package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/provision/pkg/console"
	"github.com/aretw0/provision/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const prompt = "\nesp> "

func newConsole(t *testing.T, dev *MockDevice, opts ...console.Option) (*console.Console, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	c := console.New(out, dev, opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c, out
}

func feedString(c *console.Console, s string) {
	for i := 0; i < len(s); i++ {
		c.Feed(s[i])
	}
}

func pollUntil(t *testing.T, c *console.Console) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.Poll() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for job completion")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConsole_ByteAtATimeEquivalence(t *testing.T) {
	lines := []string{
		"ble/name sensor-1\n",
		"ble/char2 ABCD 4f4b\n",
		"help\n",
		"nonsense\n",
	}
	for _, line := range lines {
		t.Run(strings.TrimSpace(line), func(t *testing.T) {
			devA, devB := &MockDevice{}, &MockDevice{}
			for _, d := range []*MockDevice{devA, devB} {
				d.On("SetBleField", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			}
			a, outA := newConsole(t, devA)
			b, outB := newConsole(t, devB)

			feedString(a, line)
			n, err := b.Write([]byte(line))
			require.NoError(t, err)
			assert.Equal(t, len(line), n)

			assert.Equal(t, outA.String(), outB.String())
			assert.Equal(t, len(devA.Calls), len(devB.Calls))
			for i := range devA.Calls {
				assert.Equal(t, devA.Calls[i].Arguments[1:], devB.Calls[i].Arguments[1:])
			}
		})
	}
}

func TestConsole_BackspaceOnEmptyBuffer(t *testing.T) {
	c, out := newConsole(t, &MockDevice{})

	c.Feed(0x08)
	c.Feed(0x7F)
	assert.Empty(t, out.String())
	assert.Empty(t, c.Line())
}

func TestConsole_BackspaceErases(t *testing.T) {
	c, out := newConsole(t, &MockDevice{})

	feedString(c, "ab")
	c.Feed(0x7F)
	assert.Equal(t, "ab\b \b", out.String())
	assert.Equal(t, "a", c.Line())
}

func TestConsole_CarriageReturnIgnored(t *testing.T) {
	c, out := newConsole(t, &MockDevice{})

	feedString(c, "wifi/status\r\n")
	assert.Equal(t, "wifi/status\n[wifi] No credentials set\n"+prompt, out.String())
}

func TestConsole_NonPrintableDropped(t *testing.T) {
	c, out := newConsole(t, &MockDevice{})

	_, _ = c.Write([]byte{0x01, 'a', 0x1B, 0x80, 0xFF, 'b', '\t'})
	assert.Equal(t, "ab", out.String())
	assert.Equal(t, "ab", c.Line())
}

func TestConsole_WifiStatusWithoutCredentials(t *testing.T) {
	dev := &MockDevice{}
	c, out := newConsole(t, dev)

	feedString(c, "wifi/status\n")

	assert.Equal(t, "wifi/status\n[wifi] No credentials set\n"+prompt, out.String())
	dev.AssertNotCalled(t, "WifiStatus", mock.Anything)
	assert.Empty(t, dev.Calls)
}

func TestConsole_WifiCredentialsMaskedAndSetOnce(t *testing.T) {
	dev := &MockDevice{}
	dev.On("SetWifiCredentials", mock.Anything, "myssid", "mypass").
		Return(domain.WifiStatus{Connected: true, SSID: "myssid", IP: "192.168.1.10", RSSI: -48}, nil).Once()
	dev.On("WifiStatus", mock.Anything).
		Return(domain.WifiStatus{Connected: true, SSID: "myssid", IP: "192.168.1.10", RSSI: -48}, nil)
	c, out := newConsole(t, dev)

	feedString(c, "wifi/myssid/mypass")
	assert.Equal(t, "wifi/myssid/******", out.String())

	c.Feed('\n')
	assert.Contains(t, out.String(), "[prov] Got ssid='myssid' len(pass)=6\n")
	assert.Contains(t, out.String(), "Connecting to 'myssid'...\n")
	assert.NotContains(t, out.String(), "mypass")

	require.NoError(t, c.Drain(drainCtx(t)))
	assert.Contains(t, out.String(), "WiFi OK 192.168.1.10\n")
	dev.AssertNumberOfCalls(t, "SetWifiCredentials", 1)

	out.Reset()
	feedString(c, "wifi/status\n")
	assert.Contains(t, out.String(), "[wifi] Connected SSID='myssid' IP=192.168.1.10 RSSI=-48dBm\n")
}

func TestConsole_WifiConnectFailure(t *testing.T) {
	dev := &MockDevice{}
	dev.On("SetWifiCredentials", mock.Anything, "home", "bad").Return(domain.WifiStatus{}, nil)
	dev.On("WifiStatus", mock.Anything).Return(domain.WifiStatus{}, nil)
	c, out := newConsole(t, dev)

	feedString(c, "wifi/home/bad\n")
	require.NoError(t, c.Drain(drainCtx(t)))
	assert.Contains(t, out.String(), "WiFi failed\n")

	out.Reset()
	feedString(c, "wifi/status\n")
	assert.Contains(t, out.String(), "[wifi] Not connected (attempting) SSID='home'\n")
}

func TestConsole_ExitGatedHelpSequence(t *testing.T) {
	dev := &MockDevice{}
	c, out := newConsole(t, dev)

	feedString(c, "exit\n")
	assert.Equal(t, domain.ModePassthrough, c.Mode())
	assert.Contains(t, out.String(), "=== SERIAL MONITOR EXIT INSTRUCTIONS ===")
	assert.Contains(t, out.String(), "Enter 'help' or '?' to re-enter provisioning mode.")
	assert.False(t, strings.HasSuffix(out.String(), prompt), "no prompt after exit")

	out.Reset()
	feedString(c, "wifi/status\n")
	assert.Empty(t, out.String(), "gated line must produce no output")
	assert.Empty(t, dev.Calls)

	feedString(c, "help\n")
	assert.Equal(t, domain.ModeProvisioning, c.Mode())
	assert.True(t, strings.HasPrefix(out.String(), "Provisioning commands:\n"))
	assert.True(t, strings.HasSuffix(out.String(), prompt))
}

func TestConsole_QuestionMarkReentersAndDiscoExits(t *testing.T) {
	c, out := newConsole(t, &MockDevice{})

	feedString(c, "please disconnect\n")
	assert.Equal(t, domain.ModePassthrough, c.Mode())

	out.Reset()
	feedString(c, "?\n")
	assert.Equal(t, domain.ModeProvisioning, c.Mode())
	assert.Contains(t, out.String(), "Provisioning commands:")
}

func TestConsole_BleCharMalformed(t *testing.T) {
	dev := &MockDevice{}
	c, out := newConsole(t, dev)

	feedString(c, "ble/char1 ONLYONEWORD\n")
	assert.Contains(t, out.String(), "[ble] Bad format. Use ble/char1 UUID HEX\n")
	assert.True(t, strings.HasSuffix(out.String(), prompt))
	dev.AssertNotCalled(t, "SetBleField", mock.Anything, mock.Anything, mock.Anything)
}

func TestConsole_WifiSetMalformed(t *testing.T) {
	dev := &MockDevice{}
	c, out := newConsole(t, dev)

	feedString(c, "wifi/justssid\n")
	assert.Contains(t, out.String(), "[prov] Bad format. Use wifi/SSID/PASSWORD\n")
	assert.Zero(t, c.Pending())
	assert.Empty(t, dev.Calls)
}

func TestConsole_CapacityTruncation(t *testing.T) {
	dev := &MockDevice{}
	line := "ble/name " + strings.Repeat("x", 191)
	require.Len(t, line, 200)
	want := line[len("ble/name "):160]
	dev.On("SetBleField", mock.Anything, domain.BleFieldName, want).Return(nil).Once()
	c, out := newConsole(t, dev)

	feedString(c, line)
	assert.Equal(t, line[:160], out.String(), "excess bytes are not echoed")

	c.Feed('\n')
	dev.AssertExpectations(t)
	assert.Contains(t, out.String(), "[ble] Name set to: "+want+"\n")
}

func TestConsole_BleCommands(t *testing.T) {
	dev := &MockDevice{}
	dev.On("SetBleField", mock.Anything, domain.BleFieldName, "sensor").Return(nil)
	dev.On("SetBleField", mock.Anything, domain.BleFieldService, "1111").Return(nil)
	dev.On("SetBleField", mock.Anything, domain.BleFieldChar1, "AAAA 4142").Return(nil)
	dev.On("BleStatus", mock.Anything).Return(domain.DefaultBleConfig("C0FFEE"), nil)
	c, out := newConsole(t, dev)

	feedString(c, "ble/name sensor\nble/service 1111\nble/char1 AAAA 4142\nble/status\n")

	got := out.String()
	assert.Contains(t, got, "[ble] Name set to: sensor\n")
	assert.Contains(t, got, "[ble] Service UUID set to: 1111\n")
	assert.Contains(t, got, "[ble] Char1 set to: AAAA 4142\n")
	assert.Contains(t, got, "[ble] Name: ESP32-C0FFEE\n")
	assert.Contains(t, got, "[ble] Service: "+domain.DefaultBleServiceUUID+"\n")
	assert.Contains(t, got, `[ble] Char1: AC9005F6-80BE-42A2-925E-A8C93049E8DA "14.2.12" (hex: 31342e322e3132)`)
	assert.Contains(t, got, `[ble] Char2: 4D41385F-3629-7E51-B387-27116C3391A3 "4.123.0" (hex: 342e3132332e30)`)
	dev.AssertExpectations(t)
}

func TestConsole_CollaboratorError(t *testing.T) {
	dev := &MockDevice{}
	dev.On("BleStatus", mock.Anything).Return(domain.BleConfig{}, errors.New("radio off"))
	c, out := newConsole(t, dev)

	feedString(c, "ble/status\n")
	assert.Contains(t, out.String(), "[ble] Error: radio off\n")
	assert.True(t, strings.HasSuffix(out.String(), prompt))
}

func TestConsole_WifiClear(t *testing.T) {
	dev := &MockDevice{}
	dev.On("ClearWifiCredentials", mock.Anything).Return(nil).Once()
	c, out := newConsole(t, dev, console.WithWifiState("home", true))

	feedString(c, "wifi/clear\n")
	assert.Contains(t, out.String(), "[prov] Cleared creds\n")

	out.Reset()
	feedString(c, "wifi/status\n")
	assert.Contains(t, out.String(), "[wifi] No credentials set\n")
	dev.AssertExpectations(t)
	dev.AssertNotCalled(t, "WifiStatus", mock.Anything)
}

func TestConsole_WifiScanAsync(t *testing.T) {
	release := make(chan struct{})
	dev := &MockDevice{}
	dev.On("ScanWifi", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return([]domain.WifiNetwork{
			{SSID: "home", RSSI: -40, Encryption: domain.EncryptionWPA2},
			{SSID: "cafe", RSSI: -71, Encryption: domain.EncryptionOpen},
		}, nil).Once()
	c, out := newConsole(t, dev)

	feedString(c, "wifi/scan\n")
	assert.Equal(t, "wifi/scan\n[wifi] Scanning for networks...\n"+prompt, out.String())
	assert.Equal(t, 1, c.Pending())

	feedString(c, "wifi/scan\n")
	assert.Contains(t, out.String(), "[wifi] Scan already in progress\n")

	// Typing continues while the scan runs.
	feedString(c, "wifi/x/pa")
	assert.Zero(t, c.Poll())

	close(release)
	pollUntil(t, c)

	got := out.String()
	assert.Contains(t, got, "[wifi] Found 2 networks:\n")
	assert.Contains(t, got, "   1: home                 -40dBm WPA2\n")
	assert.Contains(t, got, "   2: cafe                 -71dBm Open\n")
	assert.True(t, strings.HasSuffix(got, prompt+"wifi/x/**"), "partial line redrawn masked")
	assert.Equal(t, "wifi/x/pa", c.Line())
	dev.AssertNumberOfCalls(t, "ScanWifi", 1)
}

func TestConsole_BleAndI2CScans(t *testing.T) {
	dev := &MockDevice{}
	dev.On("ScanBle", mock.Anything).Return([]domain.BleDevice{
		{Name: "HRM", Address: "AA:BB:CC:DD:EE:FF", RSSI: -60, ServiceUUID: "180D"},
		{Address: "11:22:33:44:55:66", RSSI: -80},
	}, nil)
	dev.On("ScanI2C", mock.Anything).Return([]uint16{0x3C, 0x76}, nil)
	c, out := newConsole(t, dev, console.WithBleScanWindow(3*time.Second))

	feedString(c, "ble/scan\ni2c/scan\n")
	assert.Contains(t, out.String(), "[ble] Starting BLE scan for 3 seconds...\n")
	assert.Contains(t, out.String(), "[i2c] Scanning I2C bus...\n")
	require.NoError(t, c.Drain(drainCtx(t)))

	got := out.String()
	assert.Contains(t, got, "[ble] Scan complete. Found 2 devices:\n")
	assert.Contains(t, got, "  1: HRM (RSSI: -60)\n")
	assert.Contains(t, got, "  2: Unknown (RSSI: -80)\n")
	assert.Contains(t, got, "[ble] Device 1: Address=AA:BB:CC:DD:EE:FF Name=HRM ServiceUUID=180D RSSI=-60\n")
	assert.Contains(t, got, "[i2c] I2C device found: address 0x3C\n")
	assert.Contains(t, got, "[i2c] I2C device found: address 0x76\n")
	assert.Contains(t, got, "[i2c] Scan complete. Found 2 device(s)\n")
}

func TestConsole_EmptyScans(t *testing.T) {
	dev := &MockDevice{}
	dev.On("ScanWifi", mock.Anything).Return(nil, nil)
	dev.On("ScanI2C", mock.Anything).Return(nil, nil)
	c, out := newConsole(t, dev)

	feedString(c, "wifi/scan\ni2c/scan\n")
	require.NoError(t, c.Drain(drainCtx(t)))
	assert.Contains(t, out.String(), "[wifi] No networks found\n")
	assert.Contains(t, out.String(), "[i2c] No I2C devices found\n")
}

func TestConsole_CompletionSuppressedInPassthrough(t *testing.T) {
	release := make(chan struct{})
	dev := &MockDevice{}
	dev.On("ScanI2C", mock.Anything).Run(func(mock.Arguments) { <-release }).Return([]uint16{0x3C}, nil)
	c, out := newConsole(t, dev)

	feedString(c, "i2c/scan\nexit\n")
	out.Reset()
	close(release)
	require.NoError(t, c.Drain(drainCtx(t)))
	assert.Empty(t, out.String())
}

func TestConsole_CloseCancelsJobs(t *testing.T) {
	out := &bytes.Buffer{}
	c := console.New(out, waitingBle{&MockDevice{}}, console.WithBleScanWindow(time.Minute))

	feedString(c, "ble/scan\n")
	require.Equal(t, 1, c.Pending())

	require.NoError(t, c.Close())
	assert.Zero(t, c.Pending(), "canceled jobs are forgotten at once")
	require.NoError(t, c.Drain(drainCtx(t)))
	assert.NotContains(t, out.String(), "[ble] Error")
}

// blockingConnect makes SetWifiCredentials wait for its context and records
// when it returned.
func blockingConnect(returned *atomic.Bool) func(mock.Arguments) {
	return func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
		returned.Store(true)
	}
}

func TestConsole_WifiClearCancelsPendingConnect(t *testing.T) {
	var returned atomic.Bool
	dev := &MockDevice{}
	dev.On("SetWifiCredentials", mock.Anything, "lab", "wrong").
		Run(blockingConnect(&returned)).
		Return(domain.WifiStatus{}, context.Canceled).Once()
	dev.On("ClearWifiCredentials", mock.Anything).
		Run(func(mock.Arguments) {
			assert.True(t, returned.Load(), "clear must follow the canceled attempt")
		}).
		Return(nil).Once()
	c, out := newConsole(t, dev)

	feedString(c, "wifi/lab/wrong\n")
	require.Equal(t, 1, c.Pending())

	feedString(c, "wifi/clear\n")
	assert.Zero(t, c.Pending())
	assert.Contains(t, out.String(), "[prov] Cleared creds\n")

	require.NoError(t, c.Drain(drainCtx(t)))
	assert.NotContains(t, out.String(), "WiFi failed")
	dev.AssertExpectations(t)
}

func TestConsole_WifiSetSupersedesPendingConnect(t *testing.T) {
	var returned atomic.Bool
	dev := &MockDevice{}
	dev.On("SetWifiCredentials", mock.Anything, "lab", "wrong").
		Run(blockingConnect(&returned)).
		Return(domain.WifiStatus{}, context.Canceled).Once()
	dev.On("SetWifiCredentials", mock.Anything, "guest", "x").
		Run(func(mock.Arguments) {
			assert.True(t, returned.Load(), "new attempt starts after the old one returned")
		}).
		Return(domain.WifiStatus{Connected: true, SSID: "guest", IP: "10.0.0.5"}, nil).Once()
	c, out := newConsole(t, dev)

	feedString(c, "wifi/lab/wrong\nwifi/guest/x\n")
	assert.Equal(t, 1, c.Pending())
	require.NoError(t, c.Drain(drainCtx(t)))

	got := out.String()
	assert.Contains(t, got, "Connecting to 'guest'...\n")
	assert.Contains(t, got, "WiFi OK 10.0.0.5\n")
	assert.NotContains(t, got, "already in progress")
	assert.NotContains(t, got, "WiFi failed")
	dev.AssertExpectations(t)
}

func TestConsole_SupersedeWaitIsBounded(t *testing.T) {
	stuck := make(chan struct{})
	defer close(stuck)
	dev := &MockDevice{}
	dev.On("SetWifiCredentials", mock.Anything, "lab", "wrong").
		Run(func(mock.Arguments) { <-stuck }).
		Return(domain.WifiStatus{}, nil).Once()
	c, out := newConsole(t, dev, console.WithCallTimeout(30*time.Millisecond))

	feedString(c, "wifi/lab/wrong\n")
	start := time.Now()
	feedString(c, "wifi/clear\n")
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, out.String(), "[wifi] Error: connection attempt still running")
	assert.NotContains(t, out.String(), "[prov] Cleared creds")
	dev.AssertNotCalled(t, "ClearWifiCredentials", mock.Anything)
}

func TestConsole_PassthroughEcho(t *testing.T) {
	c, out := newConsole(t, &MockDevice{}, console.WithPassthroughEcho(true))

	feedString(c, "exit\n")
	out.Reset()
	feedString(c, "wifi/a/bc\bd\n")
	assert.Equal(t, "wifi/a/**\b \b*", out.String(), "echo only; no reply and no prompt")

	out.Reset()
	feedString(c, "help\n")
	assert.True(t, strings.HasPrefix(out.String(), "help"))
	assert.True(t, strings.HasSuffix(out.String(), prompt))
}

func TestConsole_DrainHonoursContext(t *testing.T) {
	dev := waitingBle{&MockDevice{}}
	out := &bytes.Buffer{}
	c := console.New(out, dev, console.WithBleScanWindow(time.Minute))
	defer c.Close()

	feedString(c, "ble/scan\n")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Drain(ctx), context.DeadlineExceeded)
	assert.Equal(t, 1, c.Pending())
}

func TestConsole_UnknownCommandPolicy(t *testing.T) {
	c, out := newConsole(t, &MockDevice{})
	feedString(c, "reboot\n")
	assert.Equal(t, "reboot\n"+prompt, out.String())

	c, out = newConsole(t, &MockDevice{}, console.WithUnknownCommandReply(true))
	feedString(c, "reboot\n")
	assert.Contains(t, out.String(), console.UnknownText)

	out.Reset()
	feedString(c, "\n")
	assert.Equal(t, "\n"+prompt, out.String(), "empty lines stay silent")
}

func TestConsole_ColonDialect(t *testing.T) {
	dev := &MockDevice{}
	dev.On("SetWifiCredentials", mock.Anything, "home", "secret").Return(domain.WifiStatus{Connected: true, IP: "10.0.0.2"}, nil).Once()
	c, out := newConsole(t, dev, console.WithSeparator(':'))

	feedString(c, "wifi:home:secret")
	assert.Equal(t, "wifi:home:******", out.String())
	feedString(c, "\n")
	require.NoError(t, c.Drain(drainCtx(t)))
	dev.AssertExpectations(t)
}

func TestConsole_PromptAndCapacityOptions(t *testing.T) {
	c, out := newConsole(t, &MockDevice{}, console.WithPrompt("> "), console.WithCapacity(4))

	feedString(c, "abcdef")
	assert.Equal(t, "abcd", out.String())
	feedString(c, "\n")
	assert.True(t, strings.HasSuffix(out.String(), "\n> "))
}

func TestConsole_Greet(t *testing.T) {
	c, out := newConsole(t, &MockDevice{})
	c.Greet()
	assert.True(t, strings.HasPrefix(out.String(), "Provisioning commands:\n"))
	assert.True(t, strings.HasSuffix(out.String(), prompt))
}

func TestConsole_Hooks(t *testing.T) {
	var lines []*domain.LineEvent
	var modes []*domain.ModeEvent
	var jobs []*domain.JobEvent
	hooks := domain.ConsoleHooks{
		OnLine:       func(_ context.Context, e *domain.LineEvent) { lines = append(lines, e) },
		OnModeChange: func(_ context.Context, e *domain.ModeEvent) { modes = append(modes, e) },
		OnJobDone:    func(_ context.Context, e *domain.JobEvent) { jobs = append(jobs, e) },
	}
	dev := &MockDevice{}
	dev.On("ScanI2C", mock.Anything).Return(nil, errors.New("bus stuck"))
	c, _ := newConsole(t, dev, console.WithHooks(hooks), console.WithID("tty0"))

	feedString(c, "i2c/scan\nble/char1 X\nexit\nwifi/status\nhelp\n")
	require.NoError(t, c.Drain(drainCtx(t)))

	require.Len(t, lines, 5)
	assert.Equal(t, domain.CommandI2CScan, lines[0].Kind)
	assert.True(t, lines[1].Malformed)
	assert.Equal(t, domain.CommandExit, lines[2].Kind)
	assert.True(t, lines[3].Gated)
	assert.Equal(t, domain.CommandWifiStatus, lines[3].Kind)
	assert.Equal(t, domain.ModePassthrough, lines[4].Mode)
	assert.Equal(t, "tty0", lines[0].ConsoleID)

	require.Len(t, modes, 2)
	assert.Equal(t, domain.ModePassthrough, modes[0].To)
	assert.Equal(t, domain.ModeProvisioning, modes[1].To)

	require.Len(t, jobs, 1)
	assert.EqualError(t, jobs[0].Err, "bus stuck")
}
