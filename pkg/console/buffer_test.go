package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineBuffer(t *testing.T) {
	b := NewLineBuffer(3)
	assert.False(t, b.Backspace(), "backspace on empty buffer")

	assert.True(t, b.Append('a'))
	assert.True(t, b.Append('b'))
	assert.True(t, b.Append('c'))
	assert.True(t, b.Full())
	assert.False(t, b.Append('d'))
	assert.Equal(t, "abc", b.String())

	assert.True(t, b.Backspace())
	assert.Equal(t, "ab", b.String())
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 3, b.Cap())

	b.Reset()
	assert.Equal(t, 0, b.Len())
}

func TestMaskEcho(t *testing.T) {
	tests := []struct {
		name string
		buf  string
		c    byte
		sep  byte
		want byte
	}{
		{"no separator yet", "wifi", 'x', '/', 'x'},
		{"ssid region", "wifi/home", 'x', '/', 'x'},
		{"second separator echoes verbatim", "wifi/home", '/', '/', '/'},
		{"password region masked", "wifi/home/", 'p', '/', '*'},
		{"separator in password region", "wifi/home/pa", '/', '/', '/'},
		{"colon dialect", "wifi:home:", 's', ':', '*'},
		{"colon ignored for slash dialect", "wifi:home:", 's', '/', 's'},
		{"ble name with one separator", "ble/name sensor", 'x', '/', 'x'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskEcho([]byte(tt.buf), tt.c, tt.sep))
		})
	}
}

func TestMaskLine(t *testing.T) {
	assert.Equal(t, "wifi/myssid/******", string(MaskLine([]byte("wifi/myssid/mypass"), '/')))
	assert.Equal(t, "wifi/a/**/*", string(MaskLine([]byte("wifi/a/bc/d"), '/')))
	assert.Equal(t, "", string(MaskLine(nil, '/')))
}
