package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/provision/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "provision.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load(&cobra.Command{}, "")
	require.NoError(t, err)

	assert.Equal(t, 160, cfg.Console.Capacity)
	assert.Equal(t, "esp> ", cfg.Console.Prompt)
	assert.Equal(t, byte('/'), cfg.SeparatorByte())
	assert.Equal(t, 15*time.Second, cfg.Console.ScanTimeout)
	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, -1, cfg.Device.I2CBus)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	path := writeConfig(t, `
console:
  separator: ":"
  scan_timeout: 3s
store:
  backend: redis
  redis_addr: redis:6379
  ttl: 1h
log:
  level: debug
`)
	t.Setenv("PROVISION_CONSOLE_PROMPT", "dev> ")
	t.Setenv("PROVISION_STORE_REDIS_ADDR", "env:6379")

	cmd := &cobra.Command{}
	cmd.Flags().Int("capacity", 160, "")
	cmd.Flags().String("redis", "", "")
	require.NoError(t, cmd.Flags().Set("capacity", "64"))

	cfg, err := config.Load(cmd, path)
	require.NoError(t, err)

	assert.Equal(t, byte(':'), cfg.SeparatorByte())
	assert.Equal(t, 3*time.Second, cfg.Console.ScanTimeout)
	assert.Equal(t, "dev> ", cfg.Console.Prompt, "env overrides default")
	assert.Equal(t, "env:6379", cfg.Store.RedisAddr, "env overrides file")
	assert.Equal(t, 64, cfg.Console.Capacity, "flag overrides default")
	assert.Equal(t, config.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(&cobra.Command{}, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"separator": "console:\n  separator: ab\n",
		"capacity":  "console:\n  capacity: 0\n",
		"backend":   "store:\n  backend: etcd\n",
		"format":    "log:\n  format: xml\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(&cobra.Command{}, writeConfig(t, body))
			assert.ErrorContains(t, err, name)
		})
	}
}

func TestLoad_Encryption(t *testing.T) {
	key := "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=" // 32 bytes
	cfg, err := config.Load(&cobra.Command{}, writeConfig(t, "store:\n  backend: file\n  encryption_key: "+key+"\n  fallback_keys: ["+key+"]\n"))
	require.NoError(t, err)

	enc, err := cfg.Encryption()
	require.NoError(t, err)
	require.NotNil(t, enc)
	assert.Len(t, enc.ActiveKey, 32)
	assert.Len(t, enc.FallbackKeys, 1)

	_, err = config.Load(&cobra.Command{}, writeConfig(t, "store:\n  encryption_key: c2hvcnQ=\n"))
	assert.ErrorContains(t, err, "store.encryption_key")

	_, err = config.Load(&cobra.Command{}, writeConfig(t, "store:\n  fallback_keys: ["+key+"]\n"))
	assert.ErrorContains(t, err, "requires store.encryption_key")
}

// chdir changes the working directory for the test and restores it on cleanup
// (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
