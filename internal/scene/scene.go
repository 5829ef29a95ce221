// Package scene holds the layer model of the composition: an optional
// background, an ordered list of reference layers, the single selection
// and the output frame.
package scene

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"

	picoimage "pico-compositor/internal/image"
	"pico-compositor/pkg/geometry"
)

var (
	// ErrUnknownLayer is returned when a target addresses no existing layer.
	ErrUnknownLayer = errors.New("unknown layer")
	// ErrInvalidScale is returned for NaN or infinite scale values.
	ErrInvalidScale = errors.New("scale must be a finite number")
)

// EventType identifies scene change notifications.
type EventType int

const (
	EventLayersChanged EventType = iota
	EventSelectionChanged
	EventTransformChanged
	EventFrameChanged
)

// EventListener is called after a change is applied. Listeners run
// without the scene lock held and may call back into the scene.
type EventListener func(data interface{})

// Scene is the editable composition. All methods are safe for
// concurrent use.
type Scene struct {
	mu sync.RWMutex

	background *Layer
	references []*Reference // Ascending ZIndex; removal keeps order
	nextZ      int
	aspect     Aspect
	newID      func() string

	listeners map[EventType][]EventListener
}

// Option configures a Scene.
type Option func(*Scene)

// WithIDGenerator replaces the uuid-based reference id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Scene) { s.newID = fn }
}

// WithAspect sets the initial frame preset.
func WithAspect(a Aspect) Option {
	return func(s *Scene) { s.aspect = a }
}

// New creates an empty scene with the default 16:9 frame.
func New(opts ...Option) *Scene {
	s := &Scene{
		aspect:    DefaultAspect,
		newID:     uuid.NewString,
		listeners: make(map[EventType][]EventListener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// On registers a listener for an event type.
func (s *Scene) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit notifies every listener of event.
func (s *Scene) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := append([]EventListener(nil), s.listeners[event]...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(data)
	}
}

// SetBackground installs asset as the background. Replacing an existing
// background keeps its position, scale and selection.
func (s *Scene) SetBackground(asset *picoimage.Asset) {
	s.mu.Lock()
	if s.background == nil {
		s.background = newLayer(asset)
	} else {
		s.background.Asset = asset
	}
	s.mu.Unlock()

	s.Emit(EventLayersChanged, BackgroundTarget)
}

// ClearBackground removes the background. A later SetBackground starts
// from the default transform.
func (s *Scene) ClearBackground() {
	s.mu.Lock()
	had := s.background != nil
	wasSelected := had && s.background.Selected
	s.background = nil
	s.mu.Unlock()

	if !had {
		return
	}
	s.Emit(EventLayersChanged, BackgroundTarget)
	if wasSelected {
		s.Emit(EventSelectionChanged, Target{})
	}
}

// AddReference appends a reference layer above all existing ones and
// returns its id. The new layer starts at the origin, unscaled and
// unselected.
func (s *Scene) AddReference(asset *picoimage.Asset) string {
	s.mu.Lock()
	ref := &Reference{
		Layer:  *newLayer(asset),
		ID:     s.newID(),
		ZIndex: s.nextZ,
	}
	s.nextZ++
	s.references = append(s.references, ref)
	s.mu.Unlock()

	s.Emit(EventLayersChanged, ReferenceTarget(ref.ID))
	return ref.ID
}

// RemoveSelected deletes the selected layer. It reports false when
// nothing is selected.
func (s *Scene) RemoveSelected() (Target, bool) {
	s.mu.Lock()
	var removed Target
	if s.background != nil && s.background.Selected {
		s.background = nil
		removed = BackgroundTarget
	} else {
		kept := s.references[:0]
		for _, ref := range s.references {
			if ref.Selected {
				removed = ReferenceTarget(ref.ID)
				continue
			}
			kept = append(kept, ref)
		}
		for i := len(kept); i < len(s.references); i++ {
			s.references[i] = nil
		}
		s.references = kept
	}
	s.mu.Unlock()

	if removed.IsZero() {
		return removed, false
	}
	s.Emit(EventLayersChanged, removed)
	s.Emit(EventSelectionChanged, Target{})
	return removed, true
}

// Select makes t the only selected layer.
func (s *Scene) Select(t Target) error {
	switch t.Kind {
	case TargetBackground:
		return s.SelectBackground()
	case TargetReference:
		return s.SelectReference(t.ID)
	default:
		s.ClearSelection()
		return nil
	}
}

// SelectBackground selects the background and deselects every reference.
func (s *Scene) SelectBackground() error {
	s.mu.Lock()
	if s.background == nil {
		s.mu.Unlock()
		return fmt.Errorf("select background: %w", ErrUnknownLayer)
	}
	s.background.Selected = true
	for _, ref := range s.references {
		ref.Selected = false
	}
	s.mu.Unlock()

	s.Emit(EventSelectionChanged, BackgroundTarget)
	return nil
}

// SelectReference selects the reference with id and deselects all others.
func (s *Scene) SelectReference(id string) error {
	s.mu.Lock()
	if s.findLocked(id) == nil {
		s.mu.Unlock()
		return fmt.Errorf("select reference %s: %w", id, ErrUnknownLayer)
	}
	if s.background != nil {
		s.background.Selected = false
	}
	for _, ref := range s.references {
		ref.Selected = ref.ID == id
	}
	s.mu.Unlock()

	s.Emit(EventSelectionChanged, ReferenceTarget(id))
	return nil
}

// ClearSelection deselects everything.
func (s *Scene) ClearSelection() {
	s.mu.Lock()
	changed := false
	if s.background != nil && s.background.Selected {
		s.background.Selected = false
		changed = true
	}
	for _, ref := range s.references {
		if ref.Selected {
			ref.Selected = false
			changed = true
		}
	}
	s.mu.Unlock()

	if changed {
		s.Emit(EventSelectionChanged, Target{})
	}
}

// Selected returns the currently selected target.
func (s *Scene) Selected() (Target, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.background != nil && s.background.Selected {
		return BackgroundTarget, true
	}
	for _, ref := range s.references {
		if ref.Selected {
			return ReferenceTarget(ref.ID), true
		}
	}
	return Target{}, false
}

// UpdatePosition moves the target by delta.
func (s *Scene) UpdatePosition(t Target, delta geometry.Point2D) error {
	return s.mutate(t, func(l *Layer) {
		l.Position = l.Position.Add(delta)
	})
}

// SetPosition places the target's top-left corner at p.
func (s *Scene) SetPosition(t Target, p geometry.Point2D) error {
	return s.mutate(t, func(l *Layer) {
		l.Position = p
	})
}

// UpdateScale sets one or both scale factors of the target. Finite
// values are clamped to [MinScale, MaxScale].
func (s *Scene) UpdateScale(t Target, axis Axis, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("scale %s of %s: %w", axis, t, ErrInvalidScale)
	}
	v := ClampScale(value)
	return s.mutate(t, func(l *Layer) {
		switch axis {
		case AxisWidth:
			l.Scale.Width = v
		case AxisHeight:
			l.Scale.Height = v
		case AxisProportional:
			l.Scale = Scale{Width: v, Height: v}
		}
	})
}

// ClampScale limits v to [MinScale, MaxScale].
func ClampScale(v float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, v))
}

func (s *Scene) mutate(t Target, fn func(*Layer)) error {
	s.mu.Lock()
	l := s.layerLocked(t)
	if l == nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", t, ErrUnknownLayer)
	}
	fn(l)
	s.mu.Unlock()

	s.Emit(EventTransformChanged, t)
	return nil
}

// Layer returns a copy of the target's layer.
func (s *Scene) Layer(t Target) (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.layerLocked(t)
	if l == nil {
		return Layer{}, false
	}
	return *l, true
}

// Background returns a copy of the background layer.
func (s *Scene) Background() (Layer, bool) {
	return s.Layer(BackgroundTarget)
}

// References returns copies of the reference layers in ascending z-order.
func (s *Scene) References() []Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Reference, len(s.references))
	for i, ref := range s.references {
		out[i] = *ref
	}
	return out
}

// Empty reports whether the scene has no layers at all.
func (s *Scene) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background == nil && len(s.references) == 0
}

// SetAspect changes the frame preset. Layer transforms are not touched.
func (s *Scene) SetAspect(a Aspect) {
	s.mu.Lock()
	changed := s.aspect != a
	s.aspect = a
	s.mu.Unlock()

	if changed {
		s.Emit(EventFrameChanged, a)
	}
}

// Aspect returns the current frame preset.
func (s *Scene) Aspect() Aspect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aspect
}

// Frame returns the output canvas size.
func (s *Scene) Frame() geometry.Size {
	return s.Aspect().Frame()
}

// HitTest returns the topmost layer whose bounds contain p. References
// are tested from the top of the stack down, then the background.
func (s *Scene) HitTest(p geometry.Point2D) (Target, bool) {
	return s.Snapshot().HitTest(p)
}

func (s *Scene) layerLocked(t Target) *Layer {
	switch t.Kind {
	case TargetBackground:
		return s.background
	case TargetReference:
		if ref := s.findLocked(t.ID); ref != nil {
			return &ref.Layer
		}
	}
	return nil
}

func (s *Scene) findLocked(id string) *Reference {
	for _, ref := range s.references {
		if ref.ID == id {
			return ref
		}
	}
	return nil
}
