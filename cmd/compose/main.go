// Command compose builds a composition from the command line and writes it
// as a PNG, without opening the editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"pico-compositor/internal/app"
	"pico-compositor/internal/config"
	"pico-compositor/internal/scene"
)

func main() {
	var refs placementList
	background := flag.String("background", "", "Background image path")
	backgroundAt := flag.String("background-at", "", "Background placement as x,y[,sx[,sy]]")
	flag.Var(&refs, "reference", "Reference image as path@x,y[,sx[,sy]] (repeatable, drawn in order)")
	aspect := flag.String("aspect", "", "Aspect ratio: 1:1, 4:3, 16:9, 2:1 or 9:16")
	out := flag.String("o", "", "Output PNG path (default from config, generated-image.png)")
	fill := flag.String("fill", "", "Canvas fill color, e.g. #27272a")
	configPath := flag.String("config", "", "Config file")
	flag.Parse()

	if *background == "" && len(refs) == 0 {
		fmt.Println("Usage: compose [-background <path>] [-reference path@x,y[,sx[,sy]]]... [-aspect 16:9] [-o out.png]")
		os.Exit(1)
	}

	var cfg config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *aspect != "" {
		cfg.Canvas.Aspect = *aspect
	}
	if *fill != "" {
		cfg.Canvas.FillColor = *fill
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	session, err := app.NewSession(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}

	if err := build(session, *background, *backgroundAt, refs); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	path := *out
	if path == "" {
		path = session.DefaultExportPath()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := session.Generate(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s: %dx%d, %d bytes\n", res.Path, res.Width, res.Height, res.Bytes)
}

// build loads the images into the session's scene and applies their
// placements.
func build(session *app.Session, background, backgroundAt string, refs placementList) error {
	s := session.Scene
	if background != "" {
		if _, err := session.UploadFile(app.RoleBackground, background); err != nil {
			return fmt.Errorf("background: %w", err)
		}
		if backgroundAt != "" {
			p, err := parsePlacement(background + "@" + backgroundAt)
			if err != nil {
				return err
			}
			if err := place(s, scene.BackgroundTarget, p); err != nil {
				return err
			}
		}
	}

	for _, ref := range refs {
		id, err := session.UploadFile(app.RoleReference, ref.Path)
		if err != nil {
			return fmt.Errorf("reference %s: %w", ref.Path, err)
		}
		if err := place(s, scene.ReferenceTarget(id), ref); err != nil {
			return err
		}
	}
	return nil
}

func place(s *scene.Scene, target scene.Target, p placement) error {
	if err := s.SetPosition(target, p.Position); err != nil {
		return err
	}
	if err := s.UpdateScale(target, scene.AxisWidth, p.ScaleX); err != nil {
		return err
	}
	return s.UpdateScale(target, scene.AxisHeight, p.ScaleY)
}
