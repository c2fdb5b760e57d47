package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/provision/pkg/console"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		return r.Render(markdown)
	}
}

// CommandsMarkdown builds the command reference as a markdown table.
func CommandsMarkdown(sep byte) string {
	var sb strings.Builder
	sb.WriteString("# Provisioning commands\n\n")
	sb.WriteString("| Command | Action |\n|---|---|\n")
	for _, e := range console.HelpEntries(sep) {
		fmt.Fprintf(&sb, "| `%s` | %s |\n", e.Usage, e.Description)
	}
	sb.WriteString("\nWhile in passthrough mode only `help` and `?` are recognized.\n")
	sb.WriteString("Password characters are echoed as `*`.\n")
	return sb.String()
}
