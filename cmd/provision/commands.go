package main

import (
	"fmt"

	"github.com/aretw0/provision/internal/presentation/graph"
	"github.com/aretw0/provision/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Print the console command reference",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sep := cfg.SeparatorByte()

		if asGraph, _ := cmd.Flags().GetBool("graph"); asGraph {
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(sep, nil))
			return nil
		}

		md := tui.CommandsMarkdown(sep)
		if plain, _ := cmd.Flags().GetBool("plain"); plain {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		out, err := tui.NewRenderer()(md)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
	commandsCmd.Flags().Bool("plain", false, "Print raw markdown")
	commandsCmd.Flags().Bool("graph", false, "Print the mode and dispatch diagram as Mermaid")
}
