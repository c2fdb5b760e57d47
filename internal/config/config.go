// Package config loads the provision settings from defaults, a YAML file,
// PROVISION_* environment variables and command flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/provision/pkg/persistence/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PROVISION_STORE_BACKEND.
const EnvPrefix = "PROVISION"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type ConsoleConfig struct {
	Capacity       int           `mapstructure:"capacity"`
	Prompt         string        `mapstructure:"prompt"`
	Separator      string        `mapstructure:"separator"`
	ScanTimeout    time.Duration `mapstructure:"scan_timeout"`
	BleScanWindow  time.Duration `mapstructure:"ble_scan_window"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	UnknownReply   bool          `mapstructure:"unknown_reply"`
	// PassthroughEcho echoes keystrokes while the console is in passthrough.
	PassthroughEcho bool `mapstructure:"passthrough_echo"`
}

type DeviceConfig struct {
	ID          string `mapstructure:"id"`
	Profile     string `mapstructure:"profile"`
	I2CBus      int    `mapstructure:"i2c_bus"`
	BleHardware bool   `mapstructure:"ble_hardware"`
}

type StoreConfig struct {
	Backend       string        `mapstructure:"backend"`
	Path          string        `mapstructure:"path"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	Prefix        string        `mapstructure:"prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
	// EncryptionKey is a base64 AES-256 key sealing stored Wi-Fi passwords.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

type ServeConfig struct {
	Addr    string `mapstructure:"addr"`
	OpsAddr string `mapstructure:"ops_addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the full application configuration.
type Config struct {
	Console ConsoleConfig `mapstructure:"console"`
	Device  DeviceConfig  `mapstructure:"device"`
	Store   StoreConfig   `mapstructure:"store"`
	Serve   ServeConfig   `mapstructure:"serve"`
	Log     LogConfig     `mapstructure:"log"`
	Debug   bool          `mapstructure:"debug"`
}

// Defaults returns the built-in values for every key.
func Defaults() map[string]any {
	return map[string]any{
		"console.capacity":         160,
		"console.prompt":           "esp> ",
		"console.separator":        "/",
		"console.scan_timeout":     15 * time.Second,
		"console.ble_scan_window":  5 * time.Second,
		"console.connect_timeout":  20 * time.Second,
		"console.unknown_reply":    false,
		"console.passthrough_echo": false,
		"device.id":                "",
		"device.profile":           "",
		"device.i2c_bus":           -1,
		"device.ble_hardware":      false,
		"store.backend":            BackendMemory,
		"store.path":               "",
		"store.redis_addr":         "localhost:6379",
		"store.redis_password":     "",
		"store.redis_db":           0,
		"store.prefix":             "provision:device:",
		"store.ttl":                time.Duration(0),
		"store.encryption_key":     "",
		"store.fallback_keys":      []string{},
		"serve.addr":               ":2323",
		"serve.ops_addr":           ":9100",
		"log.level":                "info",
		"log.format":               "text",
		"debug":                    false,
	}
}

// flagKeys maps command flag names to config keys. Flags absent from a command are skipped.
var flagKeys = map[string]string{
	"capacity":         "console.capacity",
	"prompt":           "console.prompt",
	"separator":        "console.separator",
	"scan-timeout":     "console.scan_timeout",
	"connect-timeout":  "console.connect_timeout",
	"unknown-reply":    "console.unknown_reply",
	"passthrough-echo": "console.passthrough_echo",
	"device":           "device.id",
	"profile":          "device.profile",
	"i2c-bus":          "device.i2c_bus",
	"ble-hardware":     "device.ble_hardware",
	"store":            "store.backend",
	"redis":            "store.redis_addr",
	"store-path":       "store.path",
	"addr":             "serve.addr",
	"ops-addr":         "serve.ops_addr",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"debug":            "debug",
}

// Load resolves the configuration for cmd. An explicit path must exist; otherwise
// provision.yaml is searched in the user config dir, /etc/provision and the working
// directory, and its absence is not an error.
func Load(cmd *cobra.Command, path string) (*Config, error) {
	v := viper.New()
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("provision")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "provision"))
		}
		v.AddConfigPath("/etc/provision")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the console cannot run with.
func (c *Config) Validate() error {
	if len(c.Console.Separator) != 1 {
		return fmt.Errorf("console.separator must be a single character, got %q", c.Console.Separator)
	}
	if c.Console.Capacity < 1 {
		return fmt.Errorf("console.capacity must be positive, got %d", c.Console.Capacity)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("store.backend must be %q, %q or %q, got %q", BackendMemory, BackendFile, BackendRedis, c.Store.Backend)
	}
	if _, err := c.Encryption(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Encryption decodes the store keys. It returns nil when encryption is off.
func (c *Config) Encryption() (*middleware.EncryptionConfig, error) {
	if c.Store.EncryptionKey == "" {
		if len(c.Store.FallbackKeys) > 0 {
			return nil, errors.New("store.fallback_keys requires store.encryption_key")
		}
		return nil, nil
	}
	active, err := middleware.ParseKey(c.Store.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	enc := &middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range c.Store.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

// SeparatorByte returns the configured separator.
func (c *Config) SeparatorByte() byte {
	return c.Console.Separator[0]
}
