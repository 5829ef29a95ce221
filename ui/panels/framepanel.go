package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pico-compositor/internal/scene"
)

// FramePanel selects the output aspect ratio with one tile per preset.
type FramePanel struct {
	scene     *scene.Scene
	container fyne.CanvasObject
	buttons   map[scene.Aspect]*widget.Button
	sizeLabel *widget.Label
}

// NewFramePanel creates the aspect tiles.
func NewFramePanel(s *scene.Scene) *FramePanel {
	fp := &FramePanel{
		scene:     s,
		buttons:   make(map[scene.Aspect]*widget.Button),
		sizeLabel: widget.NewLabel(""),
	}

	tiles := make([]fyne.CanvasObject, 0, len(scene.Aspects()))
	for _, a := range scene.Aspects() {
		b := widget.NewButton(string(a), func() { fp.scene.SetAspect(a) })
		fp.buttons[a] = b
		tiles = append(tiles, b)
	}

	fp.container = container.NewVBox(container.NewGridWithColumns(len(tiles), tiles...), fp.sizeLabel)
	fp.Sync()
	return fp
}

// Container returns the panel container.
func (fp *FramePanel) Container() fyne.CanvasObject {
	return fp.container
}

// Button returns the tile for a.
func (fp *FramePanel) Button(a scene.Aspect) *widget.Button {
	return fp.buttons[a]
}

// Sync highlights the scene's current aspect.
func (fp *FramePanel) Sync() {
	current := fp.scene.Aspect()
	for a, b := range fp.buttons {
		importance := widget.MediumImportance
		if a == current {
			importance = widget.HighImportance
		}
		if b.Importance != importance {
			b.Importance = importance
			b.Refresh()
		}
	}
	fp.sizeLabel.SetText(formatFrame(current.Frame()))
}
