package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#27272a", Zinc},
		{"27272a", Zinc},
		{"#fff", color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{"#00000080", color.RGBA{A: 0x80}},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseHexRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "#12", "#zzzzzz", "#1234567"} {
		_, err := ParseHex(in)
		assert.Error(t, err, in)
	}
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#27272a", Hex(Zinc))
	assert.Equal(t, "#00000080", Hex(color.RGBA{A: 0x80}))
}
