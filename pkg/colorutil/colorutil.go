// Package colorutil provides shared color utilities for the compositor.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Common colors used by the canvas and export surface.
var (
	Blue  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green = color.RGBA{R: 0, G: 128, B: 0, A: 255}

	// Zinc is the default surface fill (#27272a).
	Zinc = color.RGBA{R: 0x27, G: 0x27, B: 0x2a, A: 255}
)

// Outline colors for the selected layer.
var (
	BackgroundOutline = Blue
	ReferenceOutline  = Green
)

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa" (leading '#' optional).
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// Hex formats a color as "#rrggbb", dropping alpha when opaque.
func Hex(c color.Color) string {
	r, g, b, a := c.RGBA()
	if a == 0xffff {
		return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", r>>8, g>>8, b>>8, a>>8)
}
