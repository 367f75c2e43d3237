package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/bdobrica/Hanabi/common/version"
	"github.com/bdobrica/Hanabi/internal/hanabi/app"
	"github.com/bdobrica/Hanabi/internal/hanabi/config"
	"github.com/bdobrica/Hanabi/internal/hanabi/observability"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Hanabi %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	observability.Setup(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !cfg.MatrixEnabled() {
		fmt.Fprintln(os.Stderr, "Error: MATRIX_HOMESERVER, MATRIX_USER_ID, and MATRIX_ACCESS_TOKEN are required")
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"config", observability.RedactSecrets(cfg.Describe(), cfg.Secrets()...))

	hanabi, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize Hanabi: %v\n", err)
		os.Exit(1)
	}
	defer hanabi.Stop()

	if err := hanabi.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running Hanabi: %v\n", err)
		os.Exit(1)
	}
}
