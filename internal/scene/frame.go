package scene

import (
	"fmt"

	"pico-compositor/pkg/geometry"
)

// Aspect names a canvas frame preset.
type Aspect string

const (
	Aspect1x1  Aspect = "1:1"
	Aspect4x3  Aspect = "4:3"
	Aspect16x9 Aspect = "16:9"
	Aspect2x1  Aspect = "2:1"
	Aspect9x16 Aspect = "9:16"
)

// DefaultAspect is the frame used when nothing else is chosen.
const DefaultAspect = Aspect16x9

var frameSizes = map[Aspect]geometry.Size{
	Aspect1x1:  {Width: 1024, Height: 1024},
	Aspect4x3:  {Width: 1024, Height: 768},
	Aspect16x9: {Width: 1024, Height: 576},
	Aspect2x1:  {Width: 1024, Height: 512},
	Aspect9x16: {Width: 576, Height: 1024},
}

// Aspects returns the presets in display order.
func Aspects() []Aspect {
	return []Aspect{Aspect1x1, Aspect4x3, Aspect16x9, Aspect2x1, Aspect9x16}
}

// Frame returns the canvas size for the preset. Unknown presets get the
// 16:9 frame.
func (a Aspect) Frame() geometry.Size {
	if size, ok := frameSizes[a]; ok {
		return size
	}
	return frameSizes[DefaultAspect]
}

// ParseAspect validates a preset name.
func ParseAspect(s string) (Aspect, error) {
	a := Aspect(s)
	if _, ok := frameSizes[a]; !ok {
		return "", fmt.Errorf("unknown aspect ratio %q", s)
	}
	return a, nil
}
