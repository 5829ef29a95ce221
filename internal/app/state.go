// Package app wires the compositor core into one editing session.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"pico-compositor/internal/config"
	"pico-compositor/internal/export"
	picoimage "pico-compositor/internal/image"
	"pico-compositor/internal/interaction"
	"pico-compositor/internal/scaling"
	"pico-compositor/internal/scene"
	"pico-compositor/pkg/colorutil"
)

// Role says where an uploaded image goes.
type Role int

const (
	RoleBackground Role = iota
	RoleReference
)

func (r Role) String() string {
	if r == RoleReference {
		return "reference"
	}
	return "background"
}

// ParseRole parses "background" or "reference".
func ParseRole(s string) (Role, error) {
	switch s {
	case "background":
		return RoleBackground, nil
	case "reference":
		return RoleReference, nil
	}
	return 0, fmt.Errorf("unknown upload role %q", s)
}

// Session holds the scene and the controllers that edit it. One session
// backs one editing screen.
type Session struct {
	Config      config.Config
	Scene       *scene.Scene
	Decoder     *picoimage.Decoder
	Interaction *interaction.Controller
	Scaling     *scaling.Controller
	Exporter    *export.Exporter

	logger *slog.Logger

	mu   sync.Mutex
	keys *interaction.KeySubscription
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	sceneOpts       []scene.Option
	interactionOpts []interaction.Option
	exportOpts      export.Options
}

// WithSceneOptions passes options through to scene.New.
func WithSceneOptions(opts ...scene.Option) SessionOption {
	return func(o *sessionOptions) { o.sceneOpts = append(o.sceneOpts, opts...) }
}

// WithInteractionOptions passes options through to interaction.New.
func WithInteractionOptions(opts ...interaction.Option) SessionOption {
	return func(o *sessionOptions) { o.interactionOpts = append(o.interactionOpts, opts...) }
}

// WithExportLoader replaces how export re-loads layer images.
func WithExportLoader(load export.LoadFunc) SessionOption {
	return func(o *sessionOptions) { o.exportOpts.Load = load }
}

// NewSession builds a session from cfg.
func NewSession(cfg config.Config, logger *slog.Logger, opts ...SessionOption) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fill, err := colorutil.ParseHex(cfg.Canvas.FillColor)
	if err != nil {
		return nil, fmt.Errorf("canvas fill: %w", err)
	}

	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}

	sc := scene.New(append([]scene.Option{scene.WithAspect(cfg.Aspect())}, o.sceneOpts...)...)

	interactionOpts := append([]interaction.Option{
		interaction.WithDebounce(cfg.Interaction.DeselectDebounce),
		interaction.WithLogger(logger.With("component", "interaction")),
	}, o.interactionOpts...)

	o.exportOpts.FillColor = fill
	o.exportOpts.Logger = logger.With("component", "export")

	s := &Session{
		Config:      cfg,
		Scene:       sc,
		Decoder:     picoimage.NewDecoder(cfg.Intake.MaxDimension),
		Interaction: interaction.New(sc, interactionOpts...),
		Scaling: scaling.New(sc, scaling.Range{
			Min:  cfg.Scale.Min,
			Max:  cfg.Scale.Max,
			Step: cfg.Scale.Step,
		}, logger.With("component", "scaling")),
		Exporter: export.New(o.exportOpts),
		logger:   logger,
	}

	sc.On(scene.EventSelectionChanged, func(interface{}) { s.rearmKeys() })
	return s, nil
}

// Upload decodes an image and places it in the scene. Background uploads
// replace the background; reference uploads append a new top layer and
// return its id. On any error the scene is unchanged.
func (s *Session) Upload(role Role, r io.Reader, name string) (string, error) {
	asset, err := s.Decoder.Decode(r, name)
	if err != nil {
		var verr *picoimage.ValidationError
		if errors.As(err, &verr) {
			s.logger.Warn("upload rejected", "role", role, "file", name, "detail", verr.Detail())
		} else {
			s.logger.Error("upload failed", "role", role, "file", name, "error", err)
		}
		return "", err
	}

	var id string
	switch role {
	case RoleBackground:
		s.Scene.SetBackground(asset)
	case RoleReference:
		id = s.Scene.AddReference(asset)
	}
	s.logger.Info("image uploaded", "role", role, "file", name, "format", asset.Format,
		"width", asset.Width(), "height", asset.Height(), "id", id)
	return id, nil
}

// UploadFile is Upload for a file on disk.
func (s *Session) UploadFile(role Role, path string) (string, error) {
	if !picoimage.IsSupportedFormat(path) {
		return "", fmt.Errorf("%s: %w", path, picoimage.ErrUnsupportedFormat)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return s.Upload(role, f, filepath.Base(path))
}

// Mount routes Delete and Backspace from src to the session until Unmount.
// Mounting again replaces the previous subscription.
func (s *Session) Mount(src interaction.KeySource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys != nil {
		s.keys.Release()
	}
	s.keys = s.Interaction.Subscribe(src)
}

// Unmount releases the key subscription.
func (s *Session) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys != nil {
		s.keys.Release()
		s.keys = nil
	}
}

// Mounted reports whether a key subscription is active.
func (s *Session) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys != nil && s.keys.Active()
}

func (s *Session) rearmKeys() {
	s.mu.Lock()
	keys := s.keys
	s.mu.Unlock()
	if keys != nil {
		keys.Rearm()
	}
}

// Generate exports the current scene to path.
func (s *Session) Generate(ctx context.Context, path string) (export.Result, error) {
	return s.Exporter.Generate(ctx, s.Scene.Snapshot(), path)
}

// GenerateTo exports the current scene to w.
func (s *Session) GenerateTo(ctx context.Context, w io.Writer) (export.Result, error) {
	return s.Exporter.GenerateTo(ctx, s.Scene.Snapshot(), w)
}

// DefaultExportPath is where Generate writes when no path is chosen.
func (s *Session) DefaultExportPath() string {
	return s.Config.ExportPath()
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}
