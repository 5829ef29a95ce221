// Package canvas provides the interactive scene canvas.
package canvas

import (
	"image"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	picoimage "pico-compositor/internal/image"
	"pico-compositor/internal/scene"
	"pico-compositor/pkg/geometry"
)

// PointerHandler receives pointer input in canvas pixels.
type PointerHandler interface {
	PointerDown(p geometry.Point2D)
	PointerMove(p geometry.Point2D)
	PointerUp()
	PointerLeave()
}

// SceneCanvas shows the scene at frame size, one canvas unit per frame
// pixel, and forwards pointer input to a PointerHandler.
type SceneCanvas struct {
	widget.BaseWidget

	scene *scene.Scene
	input PointerHandler

	comp  *picoimage.Compositor
	cache *picoimage.ScaledCache

	raster      *fynecanvas.Raster
	content     *interactiveContent
	scroll      *container.Scroll
	placeholder *widget.Label

	mu         sync.Mutex
	lastOutput *image.RGBA
	cachedKeys map[string]struct{} // Layer keys drawn by the last render
}

// NewSceneCanvas creates a canvas for s. Scaled layer bitmaps are kept for
// cacheTTL after their last use.
func NewSceneCanvas(s *scene.Scene, input PointerHandler, fill color.Color, cacheTTL time.Duration) *SceneCanvas {
	frame := s.Frame()
	sc := &SceneCanvas{
		scene: s,
		input: input,
		comp:  picoimage.NewCompositor(int(frame.Width), int(frame.Height)),
		cache: picoimage.NewScaledCache(cacheTTL),
	}
	if fill != nil {
		sc.comp.BackColor = fill
	}
	sc.comp.Interpolator = xdraw.ApproxBiLinear
	sc.comp.Cache = sc.cache

	sc.raster = fynecanvas.NewRaster(sc.draw)
	sc.raster.ScaleMode = fynecanvas.ImageScalePixels
	sc.raster.SetMinSize(frameSize(frame))

	sc.content = newInteractiveContent(sc)
	sc.scroll = container.NewScroll(sc.content)
	sc.scroll.Direction = container.ScrollBoth

	sc.placeholder = widget.NewLabelWithStyle("Upload a background or reference image",
		fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	refresh := func(interface{}) { sc.Refresh() }
	s.On(scene.EventLayersChanged, refresh)
	s.On(scene.EventSelectionChanged, refresh)
	s.On(scene.EventTransformChanged, refresh)
	s.On(scene.EventFrameChanged, func(interface{}) {
		sc.raster.SetMinSize(frameSize(sc.scene.Frame()))
		sc.content.Refresh()
		sc.Refresh()
	})

	sc.ExtendBaseWidget(sc)
	return sc
}

func frameSize(s geometry.Size) fyne.Size {
	return fyne.NewSize(float32(s.Width), float32(s.Height))
}

// Render draws the current scene with the selection outline. The result
// is always frame-sized.
func (sc *SceneCanvas) Render() *image.RGBA {
	snap := sc.scene.Snapshot()

	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.comp.Width, sc.comp.Height = int(snap.Frame.Width), int(snap.Frame.Height)
	var out *image.RGBA
	if snap.Empty() {
		out = image.NewRGBA(image.Rect(0, 0, sc.comp.Width, sc.comp.Height))
		drawPlaceholder(out, sc.comp.BackColor)
	} else {
		out = sc.comp.Render(snap.Placements())
		for _, item := range snap.DrawOrder() {
			if item.Layer.Selected {
				drawOutline(out, outlineFor(item))
			}
		}
	}
	sc.evictLocked(snap)
	sc.lastOutput = out
	return out
}

// evictLocked drops cached bitmaps of layers that were removed or whose
// asset was replaced.
func (sc *SceneCanvas) evictLocked(snap scene.Snapshot) {
	live := make(map[string]struct{})
	for _, item := range snap.DrawOrder() {
		live[item.CacheKey()] = struct{}{}
	}
	for key := range sc.cachedKeys {
		if _, ok := live[key]; !ok {
			sc.cache.Forget(key)
		}
	}
	sc.cachedKeys = live
}

// LastOutput returns the most recent render, or nil.
func (sc *SceneCanvas) LastOutput() *image.RGBA {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.lastOutput
}

// CacheLen reports how many scaled bitmaps are cached.
func (sc *SceneCanvas) CacheLen() int {
	return sc.cache.Len()
}

func (sc *SceneCanvas) draw(_, _ int) image.Image {
	return sc.Render()
}

// Refresh redraws the raster and toggles the placeholder label.
func (sc *SceneCanvas) Refresh() {
	if sc.scene.Empty() {
		sc.placeholder.Show()
	} else {
		sc.placeholder.Hide()
	}
	sc.raster.Refresh()
	sc.BaseWidget.Refresh()
}

func (sc *SceneCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(sc.scroll, container.NewCenter(sc.placeholder)))
}

// interactiveContent wraps the raster to receive mouse events.
type interactiveContent struct {
	widget.BaseWidget
	canvas  *SceneCanvas
	pressed bool
}

var (
	_ desktop.Mouseable = (*interactiveContent)(nil)
	_ desktop.Hoverable = (*interactiveContent)(nil)
	_ fyne.Draggable    = (*interactiveContent)(nil)
)

func newInteractiveContent(sc *SceneCanvas) *interactiveContent {
	ic := &interactiveContent{canvas: sc}
	ic.ExtendBaseWidget(ic)
	return ic
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(p.X), float64(p.Y))
}

func (ic *interactiveContent) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	ic.pressed = true
	ic.canvas.input.PointerDown(toPoint(ev.Position))
}

func (ic *interactiveContent) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	ic.pressed = false
	ic.canvas.input.PointerUp()
}

func (ic *interactiveContent) MouseIn(*desktop.MouseEvent) {}

func (ic *interactiveContent) MouseMoved(ev *desktop.MouseEvent) {
	if ic.pressed {
		ic.canvas.input.PointerMove(toPoint(ev.Position))
	}
}

func (ic *interactiveContent) MouseOut() {
	ic.pressed = false
	ic.canvas.input.PointerLeave()
}

// Dragged and MouseMoved may both report the same motion; the drag
// anchor makes repeated moves to one point harmless.
func (ic *interactiveContent) Dragged(ev *fyne.DragEvent) {
	ic.canvas.input.PointerMove(toPoint(ev.Position))
}

func (ic *interactiveContent) DragEnd() {
	ic.pressed = false
	ic.canvas.input.PointerUp()
}

func (ic *interactiveContent) MinSize() fyne.Size {
	return ic.canvas.raster.MinSize()
}

func (ic *interactiveContent) CreateRenderer() fyne.WidgetRenderer {
	return &interactiveContentRenderer{content: ic}
}

type interactiveContentRenderer struct {
	content *interactiveContent
}

func (r *interactiveContentRenderer) Layout(size fyne.Size) {
	r.content.canvas.raster.Resize(r.MinSize())
}

func (r *interactiveContentRenderer) MinSize() fyne.Size {
	return r.content.canvas.raster.MinSize()
}

func (r *interactiveContentRenderer) Refresh() {
	r.content.canvas.raster.Refresh()
}

func (r *interactiveContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.canvas.raster}
}

func (r *interactiveContentRenderer) Destroy() {}
