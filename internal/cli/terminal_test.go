package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyReader_LineEndings(t *testing.T) {
	r := newKeyReader(strings.NewReader("a\rb\r\nc\n\r\n"), nil)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n\n", string(got))
}

func TestKeyReader_CRLFSplitAcrossReads(t *testing.T) {
	r := newKeyReader(io.MultiReader(strings.NewReader("x\r"), strings.NewReader("\ny\n")), nil)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "x\ny\n", string(got))
}

func TestKeyReader_CtrlD(t *testing.T) {
	r := newKeyReader(strings.NewReader("help\n\x04ignored"), nil)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "help\n", string(got))
}

func TestKeyReader_CtrlC(t *testing.T) {
	interrupted := false
	r := newKeyReader(strings.NewReader("wifi/st\x03atus\n"), func() { interrupted = true })
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "wifi/st", string(got))
	assert.True(t, interrupted)
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	w := crlfWriter{w: &buf}

	n, err := w.Write([]byte("one\ntwo\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	_, _ = w.Write([]byte("\b \b"))
	assert.Equal(t, "one\r\ntwo\r\n\b \b", buf.String())
}
