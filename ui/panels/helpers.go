package panels

import (
	"fmt"

	"pico-compositor/internal/scene"
	"pico-compositor/pkg/geometry"
)

func formatScale(v float64) string {
	return fmt.Sprintf("%.2f×", v)
}

func formatFrame(s geometry.Size) string {
	return fmt.Sprintf("%.0f × %.0f px", s.Width, s.Height)
}

func axisLabel(a scene.Axis) string {
	switch a {
	case scene.AxisWidth:
		return "Width"
	case scene.AxisHeight:
		return "Height"
	default:
		return "Both"
	}
}

// describeLayer renders a list row such as "Reference  logo.png  120×80 @ (10, 20)".
func describeLayer(item scene.DrawItem) string {
	kind := "Reference"
	if item.Target.IsBackground() {
		kind = "Background"
	}
	name := ""
	if item.Layer.Asset != nil {
		name = item.Layer.Asset.Name
	}
	b := item.Layer.Bounds()
	return fmt.Sprintf("%s  %s  %.0f×%.0f @ (%.0f, %.0f)", kind, name, b.Width, b.Height, b.X, b.Y)
}
