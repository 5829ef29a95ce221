package scene

import (
	picoimage "pico-compositor/internal/image"
	"pico-compositor/pkg/geometry"
)

// Scale factor bounds. Every layer's factors stay inside [MinScale, MaxScale].
const (
	MinScale = 0.05
	MaxScale = 10.0
)

// Scale holds independent width and height factors.
type Scale struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultScale is the scale of a freshly created layer.
var DefaultScale = Scale{Width: 1, Height: 1}

// Axis selects which scale factor an update touches.
type Axis int

const (
	AxisWidth        Axis = iota
	AxisHeight            // Height factor only
	AxisProportional      // Both factors set to the same value
)

func (a Axis) String() string {
	switch a {
	case AxisWidth:
		return "width"
	case AxisHeight:
		return "height"
	case AxisProportional:
		return "proportional"
	default:
		return "unknown"
	}
}

// Layer is a positioned, scaled image in the scene.
type Layer struct {
	Asset    *picoimage.Asset
	Position geometry.Point2D // Top-left offset in canvas pixels
	Scale    Scale
	Selected bool
}

func newLayer(asset *picoimage.Asset) *Layer {
	return &Layer{Asset: asset, Scale: DefaultScale}
}

// IntrinsicSize returns the decoded image's natural dimensions.
func (l Layer) IntrinsicSize() geometry.Size {
	if l.Asset == nil {
		return geometry.Size{}
	}
	return l.Asset.Size()
}

// Transform maps intrinsic image coordinates to canvas coordinates.
func (l Layer) Transform() geometry.AffineTransform {
	return geometry.Translation(l.Position.X, l.Position.Y).Compose(geometry.Scale(l.Scale.Width, l.Scale.Height))
}

// Bounds returns the layer's visual rectangle on the canvas.
func (l Layer) Bounds() geometry.Rect {
	size := l.IntrinsicSize()
	return l.Transform().ApplyRect(geometry.NewRect(0, 0, size.Width, size.Height))
}

// Reference is a layer with a stable identity and an explicit z-order.
// ZIndex values are assigned monotonically at creation and never change.
type Reference struct {
	Layer
	ID     string
	ZIndex int
}
