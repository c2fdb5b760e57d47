package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/provision/internal/presentation/graph"
	"github.com/aretw0/provision/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		sep      byte
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name: "Mode Shapes",
			sep:  '/',
			contains: []string{
				`provisioning(("provisioning"))`,
				`passthrough(("passthrough"))`,
				`provisioning -- "exit" --> passthrough`,
				`passthrough -- "help / ?" --> provisioning`,
			},
			excludes: []string{"classDef current"},
		},
		{
			name: "Job Shapes",
			sep:  '/',
			contains: []string{
				`wifi_scan[["wifi/scan"]]`,
				`wifi_set[["wifi/SSID/PASSWORD"]]`,
				`wifi_scan -. "result" .-> provisioning`,
				`wifi_status["wifi/status"]`,
			},
		},
		{
			name: "Separator",
			sep:  ':',
			contains: []string{
				`i2c_scan[["i2c:scan"]]`,
				`ble_char1["ble:char1"]`,
			},
		},
		{
			name:    "Overlay",
			sep:     '/',
			overlay: &graph.Overlay{CurrentMode: domain.ModePassthrough},
			contains: []string{
				"class passthrough current",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.sep, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("missing header:\n%s", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q\nGot:\n%s", want, got)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("expected output not to contain %q", bad)
				}
			}
		})
	}
}
