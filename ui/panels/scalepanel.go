package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pico-compositor/internal/scaling"
	"pico-compositor/internal/scene"
)

// ScalePanel holds the width, height and proportional sliders.
type ScalePanel struct {
	ctrl      *scaling.Controller
	container fyne.CanvasObject

	sliders map[scene.Axis]*ScaleSlider
	values  map[scene.Axis]*widget.Label

	// syncing suppresses OnChanged while sliders are moved to match the
	// selected layer.
	syncing bool
}

// NewScalePanel creates sliders bound to ctrl.
func NewScalePanel(ctrl *scaling.Controller) *ScalePanel {
	sp := &ScalePanel{
		ctrl:    ctrl,
		sliders: make(map[scene.Axis]*ScaleSlider),
		values:  make(map[scene.Axis]*widget.Label),
	}

	rng := ctrl.Range()
	rows := []fyne.CanvasObject{}
	for _, axis := range []scene.Axis{scene.AxisWidth, scene.AxisHeight, scene.AxisProportional} {
		slider := NewScaleSlider(rng.Min, rng.Max)
		slider.Step = rng.Step
		slider.SetValue(1)
		value := widget.NewLabel(formatScale(1))

		slider.OnChanged = func(v float64) {
			if sp.syncing {
				return
			}
			sp.ctrl.Apply(axis, v)
			sp.Sync()
		}

		sp.sliders[axis] = slider
		sp.values[axis] = value
		rows = append(rows, container.NewBorder(nil, nil, widget.NewLabel(axisLabel(axis)), value, slider))
	}
	sp.container = container.NewVBox(rows...)
	sp.Sync()
	return sp
}

// Container returns the panel container.
func (sp *ScalePanel) Container() fyne.CanvasObject {
	return sp.container
}

// Slider returns the slider for axis.
func (sp *ScalePanel) Slider(axis scene.Axis) *ScaleSlider {
	return sp.sliders[axis]
}

// Sync moves the sliders to the selected layer's scale. With nothing
// selected they show 1 and changes are dropped by the controller.
func (sp *ScalePanel) Sync() {
	sp.syncing = true
	defer func() { sp.syncing = false }()

	cur := sp.ctrl.Current()
	set := map[scene.Axis]float64{
		scene.AxisWidth:        cur.Width,
		scene.AxisHeight:       cur.Height,
		scene.AxisProportional: cur.Width, // width, even when the axes differ
	}

	selected := sp.ctrl.HasSelection()
	for axis, slider := range sp.sliders {
		slider.SetValue(set[axis])
		if selected {
			sp.values[axis].SetText(formatScale(slider.Value))
		} else {
			sp.values[axis].SetText("-")
		}
	}
}
