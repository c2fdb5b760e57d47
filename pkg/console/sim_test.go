package console_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/aretw0/provision/pkg/adapters/memory"
	"github.com/aretw0/provision/pkg/adapters/sim"
	"github.com/aretw0/provision/pkg/console"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimConsole(t *testing.T, connect time.Duration) (*console.Console, *sim.Device, *bytes.Buffer) {
	t.Helper()
	p := sim.DefaultProfile()
	p.Delays.Connect = connect
	dev := sim.New(memory.NewStore(), p)
	out := &bytes.Buffer{}
	c := console.New(out, dev)
	t.Cleanup(func() { _ = c.Close() })
	return c, dev, out
}

func TestConsole_ClearWinsOverPendingConnect(t *testing.T) {
	c, dev, out := newSimConsole(t, 2*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, _ = c.Write([]byte("wifi/lab-iot/wrong\nwifi/clear\n"))
		require.NoError(t, c.Drain(drainCtx(t)))

		state, err := dev.State(ctx)
		require.NoError(t, err)
		require.Empty(t, state.Credentials.SSID, "run %d", i)
		require.Empty(t, state.Credentials.Password, "run %d", i)
	}
	assert.NotContains(t, out.String(), "[wifi] Error")
}

func TestConsole_NewAttemptReplacesClearedOne(t *testing.T) {
	c, dev, out := newSimConsole(t, 20*time.Millisecond)

	_, _ = c.Write([]byte("wifi/lab-iot/wrong\nwifi/clear\nwifi/guest/x\n"))
	require.NoError(t, c.Drain(drainCtx(t)))

	state, err := dev.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "guest", state.Credentials.SSID)
	assert.Contains(t, out.String(), "WiFi OK 192.168.4.20\n")
	assert.NotContains(t, out.String(), "already in progress")
}
