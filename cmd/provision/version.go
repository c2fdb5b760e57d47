package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/provision"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of provision",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "provision version %s\n", strings.TrimSpace(provision.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
