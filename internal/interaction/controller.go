// Package interaction turns pointer and key input into scene edits. It owns
// the drag state machine and the empty-area deselect debounce.
package interaction

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"golang.org/x/time/rate"

	"pico-compositor/internal/scene"
	"pico-compositor/pkg/geometry"
)

// DefaultDebounce is the minimum gap between accepted empty-area clicks.
const DefaultDebounce = 300 * time.Millisecond

// State is the drag state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Controller drives the scene from pointer and key events. Coordinates
// are canvas pixels.
type Controller struct {
	mu sync.Mutex

	scene  *scene.Scene
	state  State
	target scene.Target
	anchor geometry.Point2D // Pointer minus layer position at drag start

	limiter *rate.Limiter
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the empty-area click debounce. Zero disables it.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.limiter = newLimiter(d) }
}

// WithClock replaces time.Now for the debounce.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// New creates a Controller in the Idle state.
func New(s *scene.Scene, opts ...Option) *Controller {
	c := &Controller{
		scene:   s,
		limiter: newLimiter(DefaultDebounce),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current drag state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// DragTarget returns the layer being dragged.
func (c *Controller) DragTarget() (scene.Target, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target, c.state == Dragging
}

// PointerDown handles a press at p. A press on a layer selects it and
// starts a drag. A press on empty canvas clears the selection unless it
// falls inside the debounce window of the previous accepted one.
func (c *Controller) PointerDown(p geometry.Point2D) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target, ok := c.scene.HitTest(p)
	if !ok {
		c.endDragLocked()
		if !c.limiter.AllowN(c.now(), 1) {
			c.logger.Debug("empty-area click debounced", "x", p.X, "y", p.Y)
			return
		}
		c.scene.ClearSelection()
		return
	}

	if err := c.scene.Select(target); err != nil {
		c.logger.Warn("select on pointer down", "target", target, "error", err)
		return
	}
	layer, _ := c.scene.Layer(target)
	c.state = Dragging
	c.target = target
	c.anchor = p.Sub(layer.Position)
	c.logger.Debug("drag start", "target", target, "anchor_x", c.anchor.X, "anchor_y", c.anchor.Y)
}

// PointerMove repositions the dragged layer so the grab point stays under
// the pointer. Repeated moves to the same point are idempotent.
func (c *Controller) PointerMove(p geometry.Point2D) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Dragging {
		return
	}
	err := c.scene.SetPosition(c.target, p.Sub(c.anchor))
	if errors.Is(err, scene.ErrUnknownLayer) {
		c.endDragLocked()
	}
}

// PointerUp ends any drag. The layer keeps its last position.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endDragLocked()
}

// PointerLeave ends any drag when the pointer exits the canvas.
func (c *Controller) PointerLeave() {
	c.PointerUp()
}

// KeyDown deletes the selected layer on Delete or Backspace, whatever the
// drag state. It reports whether the key was consumed.
func (c *Controller) KeyDown(key fyne.KeyName) bool {
	if key != fyne.KeyDelete && key != fyne.KeyBackspace {
		return false
	}
	return c.DeleteSelected()
}

// DeleteSelected removes the selected layer. A drag on that layer ends.
func (c *Controller) DeleteSelected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, ok := c.scene.RemoveSelected()
	if !ok {
		return false
	}
	if c.state == Dragging && c.target == removed {
		c.endDragLocked()
	}
	c.logger.Info("layer deleted", "target", removed)
	return true
}

func (c *Controller) endDragLocked() {
	if c.state == Dragging {
		c.logger.Debug("drag end", "target", c.target)
	}
	c.state = Idle
	c.target = scene.Target{}
	c.anchor = geometry.Point2D{}
}
