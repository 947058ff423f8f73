package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"

	"ScalpSignal/internal/di"
	"ScalpSignal/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	uiMode := flag.String("ui", "", "override ui.mode (tui or headless)")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("config %s not found, using defaults", *configPath)
		cfg, err = config.Default()
	}
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *uiMode != "" {
		cfg.UI.Mode = *uiMode
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid -ui flag: %v", err)
		}
	}

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal or quit)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
