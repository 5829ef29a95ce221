package mainwindow

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pico-compositor/internal/app"
	"pico-compositor/internal/config"
	"pico-compositor/internal/scene"
	"pico-compositor/pkg/geometry"
	"pico-compositor/ui/prefs"
)

func newWindow(t *testing.T) (*MainWindow, *app.Session) {
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
	session, err := app.NewSession(cfg, nil)
	require.NoError(t, err)

	a := test.NewTempApp(t)
	p := prefs.LoadFrom(filepath.Join(t.TempDir(), "preferences.json"))
	mw := New(a, session, p)
	t.Cleanup(mw.Close)
	return mw, session
}

func upload(t *testing.T, s *app.Session, role app.Role, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	id, err := s.Upload(role, &buf, "img.png")
	require.NoError(t, err)
	return id
}

func TestDeleteKeyWhileMounted(t *testing.T) {
	mw, session := newWindow(t)
	assert.True(t, session.Mounted())

	id := upload(t, session, app.RoleReference, 10, 10)
	require.NoError(t, session.Scene.SelectReference(id))

	handler := mw.Canvas().OnTypedKey()
	require.NotNil(t, handler)
	handler(&fyne.KeyEvent{Name: fyne.KeyDelete})
	assert.Empty(t, session.Scene.References())

	bg := upload(t, session, app.RoleBackground, 10, 10)
	assert.Empty(t, bg)
	require.NoError(t, session.Scene.SelectBackground())
	mw.Canvas().OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyBackspace})
	assert.True(t, session.Scene.Empty())
}

// pressKey delivers a typed key the way the desktop driver does: to the
// focused widget when there is one, otherwise to the canvas handler.
func pressKey(c fyne.Canvas, name fyne.KeyName) {
	ev := &fyne.KeyEvent{Name: name}
	if focused := c.Focused(); focused != nil {
		focused.TypedKey(ev)
		return
	}
	if handler := c.OnTypedKey(); handler != nil {
		handler(ev)
	}
}

func TestDeleteKeyWhileSliderFocused(t *testing.T) {
	mw, session := newWindow(t)
	c := mw.Canvas()

	id := upload(t, session, app.RoleReference, 10, 10)
	session.Interaction.PointerDown(geometry.NewPoint2D(5, 5))
	session.Interaction.PointerUp()
	sel, ok := session.Scene.Selected()
	require.True(t, ok)
	require.Equal(t, scene.ReferenceTarget(id), sel)

	width := mw.sidePanel.ScalePanel().Slider(scene.AxisWidth)
	c.Focus(width)
	require.Equal(t, fyne.Focusable(width), c.Focused())

	pressKey(c, fyne.KeyDelete)
	assert.Empty(t, session.Scene.References())

	upload(t, session, app.RoleBackground, 10, 10)
	rows := mw.sidePanel.LayersPanel().Rows()
	require.Len(t, rows, 1)
	test.Tap(rows[0])
	sel, ok = session.Scene.Selected()
	require.True(t, ok)
	require.Equal(t, scene.BackgroundTarget, sel)
	c.Focus(width)

	pressKey(c, fyne.KeyBackspace)
	assert.True(t, session.Scene.Empty())
}

func TestCloseUnmounts(t *testing.T) {
	mw, session := newWindow(t)
	mw.teardown()
	assert.False(t, session.Mounted())
}

func TestNewWindowStartsAtDefaultFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"lastAspect":"1:1"}`), 0o644))

	cfg := config.Config{
		Canvas: config.CanvasConfig{Aspect: "16:9", FillColor: "#27272a"},
		Intake: config.IntakeConfig{MaxDimension: 2048},
		Scale:  config.ScaleConfig{Min: 0.05, Max: 10, Step: 0.01},
		Export: config.ExportConfig{Filename: "generated-image.png"},
	}
	session, err := app.NewSession(cfg, nil)
	require.NoError(t, err)

	mw := New(test.NewTempApp(t), session, prefs.LoadFrom(path))
	assert.Equal(t, scene.Aspect16x9, session.Scene.Aspect())

	session.Scene.SetAspect(scene.Aspect2x1)
	mw.teardown()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "2:1")
}
