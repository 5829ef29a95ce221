package canvas

import (
	"image"
	"image/color"
)

// checkerSize is the placeholder tile edge in pixels.
const checkerSize = 16

// drawPlaceholder fills dst with a two-tone checker derived from base.
func drawPlaceholder(dst *image.RGBA, base color.Color) {
	dark := color.RGBAModel.Convert(base).(color.RGBA)
	light := lighten(dark, 0x10)
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if ((x/checkerSize)+(y/checkerSize))%2 == 0 {
				dst.SetRGBA(x, y, dark)
			} else {
				dst.SetRGBA(x, y, light)
			}
		}
	}
}

func lighten(c color.RGBA, d uint8) color.RGBA {
	add := func(v uint8) uint8 {
		if v > 0xff-d {
			return 0xff
		}
		return v + d
	}
	return color.RGBA{R: add(c.R), G: add(c.G), B: add(c.B), A: c.A}
}
