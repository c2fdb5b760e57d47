package main

import (
	"github.com/aretw0/provision/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open a provisioning console on this terminal",
	Long: `Attaches a console to the configured device using stdin and stdout.
On a terminal the input is switched to raw mode so characters echo as they are typed.
Ctrl+D closes the console, Ctrl+C interrupts it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		cooked, _ := cmd.Flags().GetBool("cooked")
		return cli.RunConsole(cmd.Context(), cfg, cli.RunOptions{
			In:    cmd.InOrStdin(),
			Out:   cmd.OutOrStdout(),
			Raw:   !cooked,
			Quiet: quiet,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("quiet", "q", false, "Skip the banner and exit message")
	runCmd.Flags().Bool("cooked", false, "Keep the terminal in line mode")

	// Make 'run' the default if no command is provided
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
