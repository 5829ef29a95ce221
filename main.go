// Package main provides the entry point for the PICO Compositor desktop app.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"pico-compositor/internal/app"
	"pico-compositor/internal/config"
	"pico-compositor/internal/version"
	"pico-compositor/ui/mainwindow"
	"pico-compositor/ui/prefs"
)

const appID = "dev.pico.compositor"

func main() {
	configPath := flag.String("config", "", "Config file (default $PICO_CONFIG or ~/.config/pico-compositor/config.toml)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [background [reference...]]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
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

	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	logger.Info("starting", "version", version.Version, "commit", version.GitCommit, "aspect", cfg.Canvas.Aspect)

	session, err := app.NewSession(cfg, logger)
	if err != nil {
		logger.Error("create session", "error", err)
		os.Exit(1)
	}

	// Positional arguments preload the scene: background first, then references.
	for i, arg := range flag.Args() {
		role := app.RoleReference
		if i == 0 {
			role = app.RoleBackground
		}
		if _, err := session.UploadFile(role, arg); err != nil {
			logger.Error("preload image", "path", arg, "role", role, "error", err)
		}
	}

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.PicoTheme{})

	win := mainwindow.New(fyneApp, session, prefs.Load())
	win.ShowAndRun()

	logger.Info("exiting")
}
