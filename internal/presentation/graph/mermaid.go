package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/provision/pkg/domain"
)

// Overlay marks runtime data on the diagram.
type Overlay struct {
	CurrentMode domain.Mode
}

// edge is a transition between diagram nodes.
type edge struct {
	from, to, label string
	dotted          bool
}

// asyncKinds run as background jobs and are drawn as subroutines.
var asyncKinds = map[domain.CommandKind]bool{
	domain.CommandWifiSet:  true,
	domain.CommandWifiScan: true,
	domain.CommandBleScan:  true,
	domain.CommandI2CScan:  true,
}

// GenerateMermaid produces a Mermaid flowchart of the console modes and the
// commands dispatched from Provisioning mode, using sep in the command labels.
// Shapes:
// - Mode: ((Circle))
// - Background job: [[Subroutine]]
// - Inline command: [Rectangle]
func GenerateMermaid(sep byte, overlay *Overlay) string {
	s := string(sep)
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	prov := sanitizeMermaidID(domain.ModeProvisioning.String())
	pass := sanitizeMermaidID(domain.ModePassthrough.String())
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", prov, domain.ModeProvisioning)
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", pass, domain.ModePassthrough)

	commands := []struct {
		kind  domain.CommandKind
		label string
	}{
		{domain.CommandWifiStatus, "wifi" + s + "status"},
		{domain.CommandWifiScan, "wifi" + s + "scan"},
		{domain.CommandWifiClear, "wifi" + s + "clear"},
		{domain.CommandWifiSet, "wifi" + s + "SSID" + s + "PASSWORD"},
		{domain.CommandBleStatus, "ble" + s + "status"},
		{domain.CommandBleName, "ble" + s + "name"},
		{domain.CommandBleService, "ble" + s + "service"},
		{domain.CommandBleChar1, "ble" + s + "char1"},
		{domain.CommandBleChar2, "ble" + s + "char2"},
		{domain.CommandBleScan, "ble" + s + "scan"},
		{domain.CommandI2CScan, "i2c" + s + "scan"},
	}

	var edges []edge
	for _, c := range commands {
		id := sanitizeMermaidID(string(c.kind))
		label := strings.ReplaceAll(c.label, "\"", "'")
		if asyncKinds[c.kind] {
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", id, label)
			edges = append(edges, edge{from: prov, to: id}, edge{from: id, to: prov, label: "result", dotted: true})
		} else {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, label)
			edges = append(edges, edge{from: prov, to: id})
		}
	}

	edges = append(edges,
		edge{from: prov, to: pass, label: "exit"},
		edge{from: pass, to: prov, label: "help / ?"},
	)
	for _, e := range edges {
		arrow := "-->"
		if e.dotted {
			arrow = "-.->"
		}
		if e.label != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", e.label)
			if e.dotted {
				arrow = fmt.Sprintf("-. \"%s\" .->", e.label)
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", e.from, arrow, e.to)
	}

	if overlay != nil {
		sb.WriteString("    classDef current fill:#fef08a,stroke:#ca8a04,stroke-width:2px\n")
		fmt.Fprintf(&sb, "    class %s current\n", sanitizeMermaidID(overlay.CurrentMode.String()))
	}
	return sb.String()
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer("/", "_", ":", "_", "-", "_", ".", "_", " ", "_")
	return r.Replace(id)
}
