package canvas

import (
	"image"
	"image/color"

	picoimage "pico-compositor/internal/image"
	"pico-compositor/internal/scene"
	"pico-compositor/pkg/colorutil"
)

// OutlineWidth is the selection outline thickness in pixels.
const OutlineWidth = 2

// Outline is a selection marker drawn just outside a layer's bounds.
type Outline struct {
	Rect  image.Rectangle // Layer bounds, rounded outward
	Color color.RGBA
}

func outlineFor(item scene.DrawItem) Outline {
	rect := item.Layer.Bounds().Pixels()
	col := colorutil.ReferenceOutline
	if item.Target.IsBackground() {
		col = colorutil.BackgroundOutline
	}
	return Outline{Rect: rect, Color: col}
}

func drawOutline(dst *image.RGBA, o Outline) {
	picoimage.StrokeRect(dst, o.Rect.Inset(-OutlineWidth), OutlineWidth, o.Color)
}
