package scene

import (
	"fmt"
	"image"

	picoimage "pico-compositor/internal/image"
	"pico-compositor/pkg/geometry"
)

// Snapshot is an immutable copy of the scene. Exports and previews
// render from snapshots so the live scene can keep changing.
type Snapshot struct {
	Aspect     Aspect
	Frame      geometry.Size
	Background *Layer
	References []Reference // Ascending ZIndex
}

// Snapshot copies the current scene state.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Aspect:     s.aspect,
		Frame:      s.aspect.Frame(),
		References: make([]Reference, len(s.references)),
	}
	if s.background != nil {
		bg := *s.background
		snap.Background = &bg
	}
	for i, ref := range s.references {
		snap.References[i] = *ref
	}
	return snap
}

// DrawItem pairs a layer with its address.
type DrawItem struct {
	Target Target
	Layer  Layer
}

// DrawOrder lists the layers bottom to top: the background first, then
// references by ascending ZIndex.
func (snap Snapshot) DrawOrder() []DrawItem {
	items := make([]DrawItem, 0, len(snap.References)+1)
	if snap.Background != nil {
		items = append(items, DrawItem{Target: BackgroundTarget, Layer: *snap.Background})
	}
	for _, ref := range snap.References {
		items = append(items, DrawItem{Target: ReferenceTarget(ref.ID), Layer: ref.Layer})
	}
	return items
}

// Empty reports whether the snapshot holds no layers.
func (snap Snapshot) Empty() bool {
	return snap.Background == nil && len(snap.References) == 0
}

// Selected returns the selected target in the snapshot.
func (snap Snapshot) Selected() (Target, bool) {
	for _, item := range snap.DrawOrder() {
		if item.Layer.Selected {
			return item.Target, true
		}
	}
	return Target{}, false
}

// HitTest returns the topmost layer containing p.
func (snap Snapshot) HitTest(p geometry.Point2D) (Target, bool) {
	items := snap.DrawOrder()
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Layer.Bounds().Contains(p) {
			return items[i].Target, true
		}
	}
	return Target{}, false
}

// Placements converts the draw order into compositor input using the
// assets' in-memory images.
func (snap Snapshot) Placements() []picoimage.Placement {
	items := snap.DrawOrder()
	out := make([]picoimage.Placement, 0, len(items))
	for _, item := range items {
		if item.Layer.Asset == nil {
			continue
		}
		out = append(out, item.Placement(item.Layer.Asset.Image()))
	}
	return out
}

// CacheKey identifies the item's pixels. It changes when the asset is
// replaced so stale scaled bitmaps are never reused.
func (item DrawItem) CacheKey() string {
	return fmt.Sprintf("%s/%p", item.Target, item.Layer.Asset)
}

// Placement builds compositor input for the item from img, which is
// either the asset's in-memory image or a fresh decode of it.
func (item DrawItem) Placement(img image.Image) picoimage.Placement {
	return picoimage.Placement{
		Key:      item.CacheKey(),
		Image:    img,
		Position: item.Layer.Position,
		ScaleX:   item.Layer.Scale.Width,
		ScaleY:   item.Layer.Scale.Height,
	}
}
