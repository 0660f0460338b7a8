// Package main provides the entry point for the imgedit application.
package main

import (
	"flag"
	"fmt"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"imgedit/internal/app"
	"imgedit/internal/config"
	"imgedit/internal/logging"
	"imgedit/internal/version"
	"imgedit/ui/mainwindow"
	"imgedit/ui/prefs"
)

const appID = "io.github.imgedit"

func main() {
	configPath := flag.String("config", "", "settings file (default: user config dir)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	logging.SetLogger(logging.NewText(os.Stderr, level))
	logging.Logger().Info("starting", "version", version.Version, "commit", version.GitCommit)

	state := app.NewState(cfg)
	if cfg.Watch.Enabled {
		if err := state.WatchSource(); err != nil {
			logging.Logger().Warn("source watching disabled", "error", err)
		}
	}

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.Theme{})

	win := mainwindow.New(fyneApp, state, prefs.Load())
	win.SetConfigPath(*configPath)

	if flag.NArg() > 0 {
		path := flag.Arg(0)
		if err := win.OpenFile(path); err != nil {
			logging.Logger().Error("failed to open image", "path", path, "error", err)
		}
	} else {
		win.RestoreLastImage()
	}

	win.ShowAndRun()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			logging.Logger().Warn("using default settings", "error", err)
			return config.Default(), nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings %s: %w", path, err)
	}
	return cfg, nil
}
