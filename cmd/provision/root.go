package main

import (
	"fmt"
	"os"

	"github.com/aretw0/provision/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provisioning console for headless devices",
	Long: `provision runs the line-oriented provisioning console against a simulated device,
either on this terminal (run) or for several TCP clients at once (serve).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to provision.yaml (default: search user config dir, /etc/provision, .)")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")
	pf.String("device", "", "Device ID (default: from profile)")
	pf.String("profile", "", "Simulator profile YAML")
	pf.Int("i2c-bus", -1, "Probe /dev/i2c-N instead of the simulated bus")
	pf.Bool("ble-hardware", false, "Scan BLE with the host adapter")
	pf.String("store", "memory", "State store backend (memory, file, redis)")
	pf.String("store-path", "", "Directory for the file store")
	pf.String("redis", "localhost:6379", "Redis address for the redis store")
	pf.Int("capacity", 160, "Line buffer capacity in bytes")
	pf.String("prompt", "esp> ", "Prompt text")
	pf.String("separator", "/", "Command separator character")
	pf.Duration("scan-timeout", 0, "Wi-Fi and I2C scan timeout (default from config)")
	pf.Duration("connect-timeout", 0, "Wi-Fi connect timeout (default from config)")
	pf.Bool("unknown-reply", false, "Answer unknown commands instead of ignoring them")
	pf.Bool("passthrough-echo", false, "Echo keystrokes while in passthrough mode")
}

// loadConfig resolves the configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(cmd, path)
}
