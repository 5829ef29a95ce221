package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pico-compositor/internal/scene"
)

// LayersPanel lists the layers top to bottom, one button per layer.
// Tapping a row selects the layer on the canvas. Buttons do not take
// focus when tapped, so Delete keeps reaching the canvas.
type LayersPanel struct {
	scene *scene.Scene
	box   *fyne.Container
	empty *widget.Label
	items []scene.DrawItem // Top first
	rows  []*widget.Button
}

// NewLayersPanel creates the layer list.
func NewLayersPanel(s *scene.Scene) *LayersPanel {
	lp := &LayersPanel{
		scene: s,
		box:   container.NewVBox(),
		empty: widget.NewLabel("No layers"),
	}
	lp.Sync()
	return lp
}

// Container returns the list container.
func (lp *LayersPanel) Container() fyne.CanvasObject {
	return lp.box
}

// Items returns the listed layers, top first.
func (lp *LayersPanel) Items() []scene.DrawItem {
	return lp.items
}

// Rows returns the row buttons in the same order as Items.
func (lp *LayersPanel) Rows() []*widget.Button {
	return lp.rows
}

// Sync rebuilds the rows and highlights the selected layer.
func (lp *LayersPanel) Sync() {
	order := lp.scene.Snapshot().DrawOrder()
	lp.items = lp.items[:0]
	for i := len(order) - 1; i >= 0; i-- {
		lp.items = append(lp.items, order[i])
	}

	lp.rows = lp.rows[:0]
	objects := make([]fyne.CanvasObject, 0, len(lp.items))
	for _, item := range lp.items {
		target := item.Target
		row := widget.NewButton(describeLayer(item), func() {
			_ = lp.scene.Select(target)
		})
		row.Alignment = widget.ButtonAlignLeading
		row.Importance = widget.LowImportance
		if item.Layer.Selected {
			row.Importance = widget.HighImportance
		}
		lp.rows = append(lp.rows, row)
		objects = append(objects, row)
	}
	if len(objects) == 0 {
		objects = append(objects, lp.empty)
	}
	lp.box.Objects = objects
	lp.box.Refresh()
}
