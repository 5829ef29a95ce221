// Package scaling applies slider values to the selected layer's scale.
package scaling

import (
	"log/slog"
	"math"

	"pico-compositor/internal/scene"
)

// Range describes the slider domain.
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

// DefaultRange matches the scene's scale bounds with a 0.01 step.
var DefaultRange = Range{Min: scene.MinScale, Max: scene.MaxScale, Step: 0.01}

// Clamp limits v to the range and to the scene bounds.
func (r Range) Clamp(v float64) float64 {
	return scene.ClampScale(math.Max(r.Min, math.Min(r.Max, v)))
}

// Controller routes scale changes to whichever layer is selected.
type Controller struct {
	scene  *scene.Scene
	rng    Range
	logger *slog.Logger
}

// New creates a Controller. A zero Range means DefaultRange.
func New(s *scene.Scene, rng Range, logger *slog.Logger) *Controller {
	if rng == (Range{}) {
		rng = DefaultRange
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{scene: s, rng: rng, logger: logger}
}

// Range returns the slider domain.
func (c *Controller) Range() Range { return c.rng }

// Apply sets the selected layer's scale on axis. It reports false and
// changes nothing when no layer is selected or value is not finite.
func (c *Controller) Apply(axis scene.Axis, value float64) bool {
	target, ok := c.scene.Selected()
	if !ok {
		return false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		c.logger.Warn("ignoring non-finite scale", "axis", axis, "target", target)
		return false
	}
	if err := c.scene.UpdateScale(target, axis, c.rng.Clamp(value)); err != nil {
		c.logger.Warn("scale update failed", "axis", axis, "target", target, "error", err)
		return false
	}
	return true
}

// Current returns the selected layer's scale, or the default scale when
// nothing is selected.
func (c *Controller) Current() scene.Scale {
	target, ok := c.scene.Selected()
	if !ok {
		return scene.DefaultScale
	}
	l, ok := c.scene.Layer(target)
	if !ok {
		return scene.DefaultScale
	}
	return l.Scale
}

// HasSelection reports whether a layer is selected.
func (c *Controller) HasSelection() bool {
	_, ok := c.scene.Selected()
	return ok
}
