package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner to w.
func PrintBanner(w io.Writer, deviceID string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  ___                _     _           ", "#22d3ee"},
		{" | _ \\_ _ _____ __ _(_)___(_)___ _ _   ", "#38bdf8"},
		{" |  _/ '_/ _ \\ V /| (_-<| / _ \\ ' \\  ", "#60a5fa"},
		{" |_| |_| \\___/\\_/ |_/__/|_\\___/_||_| ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if deviceID != "" {
		fmt.Fprintln(w, termenv.String("  device "+deviceID).Faint())
	}
	fmt.Fprintln(w)
}
