package main

import (
	"github.com/aretw0/provision/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve consoles over TCP",
	Long: `Accepts TCP clients (telnet, nc, socat) and gives each its own console on the shared
device. An ops HTTP server exposes /healthz, /metrics, /sessions and /devices.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := cli.NewLogger(cfg)
		if err != nil {
			return err
		}
		return cli.Serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":2323", "Console listen address")
	serveCmd.Flags().String("ops-addr", ":9100", "Ops HTTP listen address (empty disables)")
}
