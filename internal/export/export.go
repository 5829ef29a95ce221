// Package export flattens a scene snapshot into a PNG.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	picoimage "pico-compositor/internal/image"
	"pico-compositor/internal/scene"
)

// DefaultFilename is the name offered for the exported image.
const DefaultFilename = "generated-image.png"

// ErrExportInProgress is returned when Generate is called while another
// export is still running.
var ErrExportInProgress = errors.New("export already in progress")

// Stage names the export step that failed.
type Stage string

const (
	StageSurface Stage = "surface"
	StageLoad    Stage = "load"
	StageEncode  Stage = "encode"
	StageWrite   Stage = "write"
)

// RenderError reports a failed export. The scene is never modified by a
// failed export.
type RenderError struct {
	Stage Stage
	Layer string // Target of the failing layer, for StageLoad
	Err   error
}

func (e *RenderError) Error() string {
	if e.Layer != "" {
		return fmt.Sprintf("export %s %s: %v", e.Stage, e.Layer, e.Err)
	}
	return fmt.Sprintf("export %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// LoadFunc produces the pixels for an asset at export time.
type LoadFunc func(ctx context.Context, a *picoimage.Asset) (image.Image, error)

// Options configures an Exporter.
type Options struct {
	FillColor    color.Color        // Defaults to the compositor's zinc fill
	Interpolator xdraw.Interpolator // Defaults to CatmullRom
	Load         LoadFunc           // Defaults to (*Asset).Load
	Logger       *slog.Logger
}

// Result describes a finished export.
type Result struct {
	Path   string
	Width  int
	Height int
	Bytes  int
}

// Exporter renders snapshots. Only one Generate runs at a time.
type Exporter struct {
	inflight *semaphore.Weighted
	opts     Options
	logger   *slog.Logger
}

// New creates an Exporter.
func New(opts Options) *Exporter {
	if opts.Load == nil {
		opts.Load = func(ctx context.Context, a *picoimage.Asset) (image.Image, error) {
			return a.Load(ctx)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		inflight: semaphore.NewWeighted(1),
		opts:     opts,
		logger:   logger,
	}
}

// Render composites snap at frame size. Every layer image is reloaded
// concurrently; the first failure aborts the render.
func (e *Exporter) Render(ctx context.Context, snap scene.Snapshot) (*image.RGBA, error) {
	w, h := int(snap.Frame.Width), int(snap.Frame.Height)
	if w <= 0 || h <= 0 {
		return nil, &RenderError{Stage: StageSurface, Err: fmt.Errorf("invalid frame %dx%d", w, h)}
	}

	items := snap.DrawOrder()
	imgs := make([]image.Image, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		if item.Layer.Asset == nil {
			continue
		}
		g.Go(func() error {
			img, err := e.opts.Load(gctx, item.Layer.Asset)
			if err != nil {
				return &RenderError{Stage: StageLoad, Layer: item.Target.String(), Err: err}
			}
			imgs[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	placements := make([]picoimage.Placement, 0, len(items))
	for i, item := range items {
		if imgs[i] == nil {
			continue
		}
		p := item.Placement(imgs[i])
		p.Key = ""
		placements = append(placements, p)
	}

	comp := picoimage.NewCompositor(w, h)
	if e.opts.FillColor != nil {
		comp.BackColor = e.opts.FillColor
	}
	if e.opts.Interpolator != nil {
		comp.Interpolator = e.opts.Interpolator
	}
	return comp.Render(placements), nil
}

// Encode renders snap and returns the PNG bytes.
func (e *Exporter) Encode(ctx context.Context, snap scene.Snapshot) ([]byte, error) {
	img, err := e.Render(ctx, snap)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &RenderError{Stage: StageEncode, Err: err}
	}
	return buf.Bytes(), nil
}

// Generate exports snap to path. The file is written through a temporary
// file and a rename, so a failed export leaves no file behind.
func (e *Exporter) Generate(ctx context.Context, snap scene.Snapshot, path string) (Result, error) {
	if !e.inflight.TryAcquire(1) {
		return Result{}, ErrExportInProgress
	}
	defer e.inflight.Release(1)

	start := time.Now()
	data, err := e.Encode(ctx, snap)
	if err != nil {
		e.logger.Error("export failed", "path", path, "error", err)
		return Result{}, err
	}
	if err := writeFileAtomic(path, data); err != nil {
		err = &RenderError{Stage: StageWrite, Err: err}
		e.logger.Error("export failed", "path", path, "error", err)
		return Result{}, err
	}

	res := Result{Path: path, Width: int(snap.Frame.Width), Height: int(snap.Frame.Height), Bytes: len(data)}
	e.logger.Info("exported image", "path", path, "width", res.Width, "height", res.Height,
		"bytes", res.Bytes, "layers", len(snap.DrawOrder()), "elapsed", time.Since(start))
	return res, nil
}

// GenerateTo exports snap to w, such as a file chosen in a save dialog.
// Nothing is written unless encoding succeeds.
func (e *Exporter) GenerateTo(ctx context.Context, snap scene.Snapshot, w io.Writer) (Result, error) {
	if !e.inflight.TryAcquire(1) {
		return Result{}, ErrExportInProgress
	}
	defer e.inflight.Release(1)

	data, err := e.Encode(ctx, snap)
	if err != nil {
		e.logger.Error("export failed", "error", err)
		return Result{}, err
	}
	if _, err := w.Write(data); err != nil {
		err = &RenderError{Stage: StageWrite, Err: err}
		e.logger.Error("export failed", "error", err)
		return Result{}, err
	}
	e.logger.Info("exported image", "width", int(snap.Frame.Width), "height", int(snap.Frame.Height), "bytes", len(data))
	return Result{Width: int(snap.Frame.Width), Height: int(snap.Frame.Height), Bytes: len(data)}, nil
}

// Busy reports whether an export is running.
func (e *Exporter) Busy() bool {
	if !e.inflight.TryAcquire(1) {
		return true
	}
	e.inflight.Release(1)
	return false
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pico-export-*.png")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	tmpName = ""
	return nil
}
