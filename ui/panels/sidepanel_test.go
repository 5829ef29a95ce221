package panels

import (
	"image"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pico-compositor/internal/app"
	"pico-compositor/internal/config"
	picoimage "pico-compositor/internal/image"
	"pico-compositor/internal/scene"
)

func newSession(t *testing.T) *app.Session {
	t.Helper()
	cfg := config.Config{
		Canvas:      config.CanvasConfig{Aspect: "16:9", FillColor: "#27272a"},
		Intake:      config.IntakeConfig{MaxDimension: 2048},
		Interaction: config.InteractionConfig{DeselectDebounce: 300 * time.Millisecond},
		Scale:       config.ScaleConfig{Min: 0.05, Max: 10, Step: 0.01},
		Export:      config.ExportConfig{Filename: "generated-image.png"},
		Log:         config.LogConfig{Level: "info", Format: "text"},
		Preview:     config.PreviewConfig{CacheTTL: time.Minute},
	}
	s, err := app.NewSession(cfg, nil)
	require.NoError(t, err)
	return s
}

func asset(name string, w, h int) *picoimage.Asset {
	return picoimage.FromImage(name, image.NewRGBA(image.Rect(0, 0, w, h)))
}

func TestUploadButtonsReportRole(t *testing.T) {
	test.NewTempApp(t)
	var roles []app.Role
	sp := NewSidePanel(newSession(t), func(r app.Role) { roles = append(roles, r) }, func() {})

	test.Tap(sp.backgroundButton)
	test.Tap(sp.referenceButton)
	assert.Equal(t, []app.Role{app.RoleBackground, app.RoleReference}, roles)
}

func TestGenerateButton(t *testing.T) {
	test.NewTempApp(t)
	calls := 0
	sp := NewSidePanel(newSession(t), func(app.Role) {}, func() { calls++ })

	test.Tap(sp.GenerateButton())
	assert.Equal(t, 1, calls)

	sp.SetBusy(true)
	assert.True(t, sp.GenerateButton().Disabled())
	sp.SetBusy(false)
	assert.False(t, sp.GenerateButton().Disabled())
}

func TestSlidersFollowSelection(t *testing.T) {
	test.NewTempApp(t)
	session := newSession(t)
	sp := NewSidePanel(session, func(app.Role) {}, func() {})
	width := sp.ScalePanel().Slider(scene.AxisWidth)

	session.Scene.SetBackground(asset("bg.png", 100, 100))
	width.SetValue(4)
	bg, _ := session.Scene.Background()
	assert.Equal(t, scene.DefaultScale, bg.Scale, "no selection, no change")
	assert.InDelta(t, 1.0, width.Value, 1e-9)

	id := session.Scene.AddReference(asset("ref.png", 10, 10))
	require.NoError(t, session.Scene.SelectReference(id))

	width.SetValue(2.5)
	ref, _ := session.Scene.Layer(scene.ReferenceTarget(id))
	assert.InDelta(t, 2.5, ref.Scale.Width, 1e-9)
	assert.Equal(t, 1.0, ref.Scale.Height)

	// Switching selection moves the slider without touching either layer.
	require.NoError(t, session.Scene.SelectBackground())
	assert.InDelta(t, 1.0, width.Value, 1e-9)
	bg, _ = session.Scene.Background()
	assert.Equal(t, scene.DefaultScale, bg.Scale)

	sp.ScalePanel().Slider(scene.AxisProportional).SetValue(3)
	bg, _ = session.Scene.Background()
	assert.InDelta(t, 3, bg.Scale.Width, 1e-9)
	assert.Equal(t, bg.Scale.Width, bg.Scale.Height)
}

func TestFrameTilesSetAspect(t *testing.T) {
	test.NewTempApp(t)
	session := newSession(t)
	sp := NewSidePanel(session, func(app.Role) {}, func() {})
	fp := sp.FramePanel()
	assert.Equal(t, widget.HighImportance, fp.Button(scene.Aspect16x9).Importance)

	test.Tap(fp.Button(scene.Aspect1x1))
	assert.Equal(t, scene.Aspect1x1, session.Scene.Aspect())
	assert.Equal(t, widget.HighImportance, fp.Button(scene.Aspect1x1).Importance)
	assert.Equal(t, widget.MediumImportance, fp.Button(scene.Aspect16x9).Importance)

	session.Scene.SetAspect(scene.Aspect9x16)
	assert.Equal(t, widget.HighImportance, fp.Button(scene.Aspect9x16).Importance)
	assert.Equal(t, widget.MediumImportance, fp.Button(scene.Aspect1x1).Importance)
}

func TestLayersListTopFirst(t *testing.T) {
	test.NewTempApp(t)
	session := newSession(t)
	sp := NewSidePanel(session, func(app.Role) {}, func() {})
	require.Empty(t, sp.LayersPanel().Rows())

	session.Scene.SetBackground(asset("bg.png", 100, 100))
	id := session.Scene.AddReference(asset("ref.png", 10, 10))

	items := sp.LayersPanel().Items()
	require.Len(t, items, 2)
	assert.Equal(t, scene.ReferenceTarget(id), items[0].Target)
	assert.True(t, items[1].Target.IsBackground())
	assert.Equal(t, "Background  bg.png  100×100 @ (0, 0)", describeLayer(items[1]))

	test.Tap(sp.LayersPanel().Rows()[1])
	sel, ok := session.Scene.Selected()
	require.True(t, ok)
	assert.Equal(t, scene.BackgroundTarget, sel)
	assert.Equal(t, widget.HighImportance, sp.LayersPanel().Rows()[1].Importance)
	assert.Equal(t, widget.LowImportance, sp.LayersPanel().Rows()[0].Importance)
}

func TestProportionalSliderShowsWidth(t *testing.T) {
	test.NewTempApp(t)
	session := newSession(t)
	sp := NewSidePanel(session, func(app.Role) {}, func() {})

	session.Scene.SetBackground(asset("bg.png", 100, 100))
	require.NoError(t, session.Scene.SelectBackground())
	require.NoError(t, session.Scene.UpdateScale(scene.BackgroundTarget, scene.AxisWidth, 3))
	require.NoError(t, session.Scene.UpdateScale(scene.BackgroundTarget, scene.AxisHeight, 1.5))

	assert.InDelta(t, 3, sp.ScalePanel().Slider(scene.AxisProportional).Value, 1e-9)
	assert.InDelta(t, 1.5, sp.ScalePanel().Slider(scene.AxisHeight).Value, 1e-9)
}

func TestFocusedSliderPassesDeleteToWindow(t *testing.T) {
	test.NewTempApp(t)
	session := newSession(t)
	sp := NewSidePanel(session, func(app.Role) {}, func() {})
	w := test.NewWindow(sp.Container())
	defer w.Close()

	var passed []fyne.KeyName
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) { passed = append(passed, ev.Name) })

	session.Scene.SetBackground(asset("bg.png", 100, 100))
	require.NoError(t, session.Scene.SelectBackground())
	width := sp.ScalePanel().Slider(scene.AxisWidth)

	width.TypedKey(&fyne.KeyEvent{Name: fyne.KeyDelete})
	width.TypedKey(&fyne.KeyEvent{Name: fyne.KeyBackspace})
	assert.Equal(t, []fyne.KeyName{fyne.KeyDelete, fyne.KeyBackspace}, passed)

	// Arrow keys still move the slider.
	width.TypedKey(&fyne.KeyEvent{Name: fyne.KeyRight})
	bg, _ := session.Scene.Background()
	assert.InDelta(t, 1.01, bg.Scale.Width, 1e-6)
	assert.Len(t, passed, 2)
}
