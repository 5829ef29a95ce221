// Package panels provides the editing side panel.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pico-compositor/internal/app"
	"pico-compositor/internal/scene"
)

// SidePanel groups upload, layer, scale, frame and export controls.
type SidePanel struct {
	session   *app.Session
	container fyne.CanvasObject

	layersPanel *LayersPanel
	scalePanel  *ScalePanel
	framePanel  *FramePanel

	backgroundButton *widget.Button
	referenceButton  *widget.Button
	generateButton   *widget.Button
	exportStatus     *widget.Label
}

// NewSidePanel creates the side panel. onUpload opens a file picker for
// the given role; onGenerate starts an export.
func NewSidePanel(session *app.Session, onUpload func(app.Role), onGenerate func()) *SidePanel {
	sp := &SidePanel{session: session}

	sp.backgroundButton = widget.NewButton("Upload Background", func() { onUpload(app.RoleBackground) })
	sp.referenceButton = widget.NewButton("Add Reference", func() { onUpload(app.RoleReference) })
	sp.generateButton = widget.NewButton("Generate", onGenerate)
	sp.generateButton.Importance = widget.HighImportance
	sp.exportStatus = widget.NewLabel("")
	sp.exportStatus.Wrapping = fyne.TextWrapWord

	sp.layersPanel = NewLayersPanel(session.Scene)
	sp.scalePanel = NewScalePanel(session.Scaling)
	sp.framePanel = NewFramePanel(session.Scene)

	sp.container = container.NewVScroll(container.NewVBox(
		widget.NewCard("Images", "", container.NewVBox(
			container.NewGridWithColumns(2, sp.backgroundButton, sp.referenceButton),
			sp.layersPanel.Container(),
		)),
		widget.NewCard("Scale", "", sp.scalePanel.Container()),
		widget.NewCard("Canvas", "", sp.framePanel.Container()),
		widget.NewCard("Export", "", container.NewVBox(sp.generateButton, sp.exportStatus)),
	))

	s := session.Scene
	s.On(scene.EventLayersChanged, func(interface{}) { sp.Sync() })
	s.On(scene.EventSelectionChanged, func(interface{}) { sp.Sync() })
	s.On(scene.EventTransformChanged, func(interface{}) { sp.scalePanel.Sync() })
	s.On(scene.EventFrameChanged, func(interface{}) { sp.framePanel.Sync() })

	sp.Sync()
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// Sync refreshes every control from the scene.
func (sp *SidePanel) Sync() {
	sp.layersPanel.Sync()
	sp.scalePanel.Sync()
	sp.framePanel.Sync()
}

// SetBusy disables Generate while an export runs.
func (sp *SidePanel) SetBusy(busy bool) {
	if busy {
		sp.generateButton.Disable()
		sp.exportStatus.SetText("Generating…")
	} else {
		sp.generateButton.Enable()
	}
}

// SetExportStatus shows the outcome of the last export.
func (sp *SidePanel) SetExportStatus(text string) {
	sp.exportStatus.SetText(text)
}

// GenerateButton exposes the button for tests.
func (sp *SidePanel) GenerateButton() *widget.Button { return sp.generateButton }

// ScalePanel returns the scale controls.
func (sp *SidePanel) ScalePanel() *ScalePanel { return sp.scalePanel }

// FramePanel returns the aspect controls.
func (sp *SidePanel) FramePanel() *FramePanel { return sp.framePanel }

// LayersPanel returns the layer list.
func (sp *SidePanel) LayersPanel() *LayersPanel { return sp.layersPanel }
