// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"pico-compositor/internal/app"
	"pico-compositor/internal/export"
	picoimage "pico-compositor/internal/image"
	"pico-compositor/internal/scene"
	"pico-compositor/internal/version"
	"pico-compositor/pkg/colorutil"
	"pico-compositor/ui/canvas"
	"pico-compositor/ui/panels"
	"pico-compositor/ui/prefs"
)

// MainWindow is the editing screen.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	session   *app.Session
	prefs     *prefs.Prefs
	canvas    *canvas.SceneCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the main window and mounts the session's key handling on
// its canvas. Closing the window unmounts it.
func New(fyneApp fyne.App, session *app.Session, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("PICO Compositor")
	ctx, cancel := context.WithCancel(context.Background())

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		session: session,
		prefs:   p,
		ctx:     ctx,
		cancel:  cancel,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	session.Mount(win.Canvas())
	win.SetOnClosed(mw.teardown)
	win.Resize(fyne.NewSize(1400, 860))
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	fill, err := colorutil.ParseHex(mw.session.Config.Canvas.FillColor)
	if err != nil {
		fill = colorutil.Zinc
	}
	mw.canvas = canvas.NewSceneCanvas(mw.session.Scene, mw.session.Interaction, fill, mw.session.Config.Preview.CacheTTL)
	mw.sidePanel = panels.NewSidePanel(mw.session, mw.upload, mw.generate)
	mw.statusBar = widget.NewLabel("Ready")

	split := container.NewHSplit(mw.sidePanel.Container(), mw.canvas)
	split.SetOffset(0.25)

	mw.SetContent(container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	))
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Upload Background...", func() { mw.upload(app.RoleBackground) }),
		fyne.NewMenuItem("Add Reference...", func() { mw.upload(app.RoleReference) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Generate...", mw.generate),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Delete Selected", func() { mw.session.Interaction.DeleteSelected() }),
		fyne.NewMenuItem("Select Background", func() {
			if err := mw.session.Scene.SelectBackground(); err != nil {
				mw.updateStatus("No background loaded")
			}
		}),
		fyne.NewMenuItem("Deselect", mw.session.Scene.ClearSelection),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Remove Background", mw.session.Scene.ClearBackground),
	)

	aspectItems := make([]*fyne.MenuItem, 0, len(scene.Aspects()))
	for _, a := range scene.Aspects() {
		aspectItems = append(aspectItems, fyne.NewMenuItem(string(a), func() { mw.session.Scene.SetAspect(a) }))
	}
	canvasMenu := fyne.NewMenu("Canvas", aspectItems...)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, canvasMenu, helpMenu))
}

func (mw *MainWindow) setupEventHandlers() {
	s := mw.session.Scene
	s.On(scene.EventFrameChanged, func(data interface{}) {
		if a, ok := data.(scene.Aspect); ok {
			mw.updateStatus(fmt.Sprintf("Canvas %s (%s)", a, sizeText(a.Frame().Width, a.Frame().Height)))
		}
	})
	s.On(scene.EventSelectionChanged, func(data interface{}) {
		if t, ok := data.(scene.Target); ok && !t.IsZero() {
			mw.updateStatus("Selected " + t.String())
		}
	})
}

func sizeText(w, h float64) string {
	return fmt.Sprintf("%.0f×%.0f", w, h)
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) lastDir(key string) fyne.ListableURI {
	dir := mw.prefs.Dir(key)
	if dir == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		return nil
	}
	return listable
}

// upload opens a fresh file picker each time, so choosing the same file
// twice runs intake twice.
func (mw *MainWindow) upload(role app.Role) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		uri := reader.URI()
		if uri.Scheme() == "file" {
			mw.prefs.RememberDir(prefs.KeyUploadDir, uri.Path())
		}
		if _, err := mw.session.Upload(role, reader, uri.Name()); err != nil {
			var verr *picoimage.ValidationError
			if errors.As(err, &verr) {
				dialog.ShowError(verr, mw.Window)
			} else {
				dialog.ShowError(fmt.Errorf("could not load %s: %w", uri.Name(), err), mw.Window)
			}
			return
		}
		mw.updateStatus(fmt.Sprintf("Loaded %s as %s", uri.Name(), role))
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter(picoimage.SupportedFormats()))
	if loc := mw.lastDir(prefs.KeyUploadDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// generate asks for a destination and exports in the background.
func (mw *MainWindow) generate() {
	if mw.session.Exporter.Busy() {
		mw.updateStatus(export.ErrExportInProgress.Error())
		return
	}

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if writer == nil {
			return
		}
		uri := writer.URI()
		writer.Close()
		mw.prefs.RememberDir(prefs.KeyExportDir, uri.Path())

		mw.sidePanel.SetBusy(true)
		go mw.runExport(uri)
	}, mw.Window)

	fd.SetFileName(mw.session.Config.Export.Filename)
	if loc := mw.exportLocation(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) exportLocation() fyne.ListableURI {
	if dir := mw.session.Config.Export.Directory; dir != "" {
		if listable, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			return listable
		}
	}
	return mw.lastDir(prefs.KeyExportDir)
}

func (mw *MainWindow) runExport(uri fyne.URI) {
	defer mw.sidePanel.SetBusy(false)

	res, err := mw.session.Generate(mw.ctx, uri.Path())
	if errors.Is(err, export.ErrExportInProgress) {
		mw.sidePanel.SetExportStatus(err.Error())
		return
	}
	if err != nil {
		// The save dialog already created an empty file.
		if delErr := storage.Delete(uri); delErr != nil {
			mw.session.Logger().Warn("remove failed export target", "path", uri.Path(), "error", delErr)
		}
		mw.sidePanel.SetExportStatus("Export failed")
		mw.updateStatus(err.Error())
		return
	}
	mw.sidePanel.SetExportStatus(fmt.Sprintf("Saved %s (%s)", filepath.Base(res.Path), sizeText(float64(res.Width), float64(res.Height))))
	mw.updateStatus("Exported " + res.Path)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About", version.String()+"\n\nCompose a background and reference images into one PNG.", mw.Window)
}

func (mw *MainWindow) teardown() {
	mw.session.Unmount()
	mw.cancel()
	if err := mw.prefs.Save(); err != nil {
		mw.session.Logger().Warn("save preferences", "error", err)
	}
}
