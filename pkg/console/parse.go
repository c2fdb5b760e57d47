package console

import (
	"strings"

	"github.com/aretw0/provision/pkg/domain"
)

// Grammar is the command table specialised for one separator.
// Entries are tried in order; the first match wins.
type Grammar struct {
	sep     byte
	entries []entry
}

type entry struct {
	kind   domain.CommandKind
	prefix string
	args   func(g *Grammar, kind domain.CommandKind, rest string) ([]string, error)
}

// NewGrammar builds the command table for sep ('/' or ':').
func NewGrammar(sep byte) *Grammar {
	s := string(sep)
	g := &Grammar{sep: sep}
	g.entries = []entry{
		{kind: domain.CommandWifiStatus, prefix: "wifi" + s + "status"},
		{kind: domain.CommandWifiScan, prefix: "wifi" + s + "scan"},
		{kind: domain.CommandBleStatus, prefix: "ble" + s + "status"},
		{kind: domain.CommandBleName, prefix: "ble" + s + "name ", args: remainder},
		{kind: domain.CommandBleService, prefix: "ble" + s + "service ", args: remainder},
		{kind: domain.CommandBleChar1, prefix: "ble" + s + "char1 ", args: characteristic},
		{kind: domain.CommandBleChar2, prefix: "ble" + s + "char2 ", args: characteristic},
		{kind: domain.CommandBleScan, prefix: "ble" + s + "scan"},
		{kind: domain.CommandI2CScan, prefix: "i2c" + s + "scan"},
		{kind: domain.CommandWifiClear, prefix: "wifi" + s + "clear"},
		{kind: domain.CommandWifiSet, prefix: "wifi" + s, args: credentials},
	}
	return g
}

// Separator returns the delimiter the grammar was built for.
func (g *Grammar) Separator() byte {
	return g.sep
}

// Parse resolves a completed line. Lines matching no entry yield CommandUnknown
// and a nil error. Lines missing a required delimiter yield a *domain.UsageError
// together with the command kind they were matched to.
func (g *Grammar) Parse(line string) (domain.Command, error) {
	cmd := domain.Command{Kind: domain.CommandUnknown, Line: line}

	switch {
	case line == "help" || line == "?":
		cmd.Kind = domain.CommandHelp
		return cmd, nil
	case line == "exit" || line == "quit" || strings.Contains(line, "disco"):
		cmd.Kind = domain.CommandExit
		return cmd, nil
	}

	for _, e := range g.entries {
		rest, ok := strings.CutPrefix(line, e.prefix)
		if !ok {
			continue
		}
		cmd.Kind = e.kind
		if e.args != nil {
			args, err := e.args(g, e.kind, rest)
			if err != nil {
				return cmd, err
			}
			cmd.Args = args
		}
		return cmd, nil
	}
	return cmd, nil
}

// Usage returns the hint written for a malformed command of kind.
func (g *Grammar) Usage(kind domain.CommandKind) string {
	s := string(g.sep)
	switch kind {
	case domain.CommandWifiSet:
		return "[prov] Bad format. Use wifi" + s + "SSID" + s + "PASSWORD"
	case domain.CommandBleChar1:
		return "[ble] Bad format. Use ble" + s + "char1 UUID HEX"
	case domain.CommandBleChar2:
		return "[ble] Bad format. Use ble" + s + "char2 UUID HEX"
	}
	return ""
}

func (g *Grammar) usageError(kind domain.CommandKind) error {
	return &domain.UsageError{Kind: kind, Usage: g.Usage(kind)}
}

func remainder(_ *Grammar, _ domain.CommandKind, rest string) ([]string, error) {
	return []string{rest}, nil
}

// characteristic splits "UUID HEX" at the first space. The hex payload may be empty.
func characteristic(g *Grammar, kind domain.CommandKind, rest string) ([]string, error) {
	uuid, hex, ok := strings.Cut(rest, " ")
	if !ok || uuid == "" {
		return nil, g.usageError(kind)
	}
	return []string{uuid, hex}, nil
}

// credentials splits "SSID<sep>PASSWORD" at the first separator. The password may be empty.
func credentials(g *Grammar, kind domain.CommandKind, rest string) ([]string, error) {
	ssid, password, ok := strings.Cut(rest, string(g.sep))
	if !ok || ssid == "" {
		return nil, g.usageError(kind)
	}
	return []string{ssid, password}, nil
}

// Parse resolves line against the command table for sep.
func Parse(line string, sep byte) (domain.Command, error) {
	return NewGrammar(sep).Parse(line)
}
