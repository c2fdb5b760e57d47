package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsMarkdown(t *testing.T) {
	md := CommandsMarkdown(':')
	assert.Contains(t, md, "| `wifi:SSID:PASSWORD` |")
	assert.Contains(t, md, "| `i2c:scan` |")
	assert.Equal(t, 14, strings.Count(md, "| `"))
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer()("# Title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "dev-1")
	assert.Contains(t, buf.String(), "device dev-1")
}
