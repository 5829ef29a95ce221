package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// passKey hands Delete and Backspace to the window's key handler. Focused
// widgets receive typed keys before the canvas does, so without this a
// focused slider would swallow them.
func passKey(obj fyne.CanvasObject, ev *fyne.KeyEvent) bool {
	if ev.Name != fyne.KeyDelete && ev.Name != fyne.KeyBackspace {
		return false
	}
	app := fyne.CurrentApp()
	if app == nil {
		return false
	}
	c := app.Driver().CanvasForObject(obj)
	if c == nil {
		return false
	}
	if handler := c.OnTypedKey(); handler != nil {
		handler(ev)
	}
	return true
}

// ScaleSlider is a horizontal slider that leaves Delete and Backspace to
// the window while it has focus.
type ScaleSlider struct {
	widget.Slider
}

// NewScaleSlider creates a slider over [min, max].
func NewScaleSlider(min, max float64) *ScaleSlider {
	s := &ScaleSlider{}
	s.Min = min
	s.Max = max
	s.Step = 1
	s.Orientation = widget.Horizontal
	s.ExtendBaseWidget(s)
	return s
}

// TypedKey keeps the arrow keys for the slider.
func (s *ScaleSlider) TypedKey(ev *fyne.KeyEvent) {
	if passKey(s, ev) {
		return
	}
	s.Slider.TypedKey(ev)
}
