// Package main is the commander-forge command line: an HTTP API server plus
// one-shot deck generation and collection import.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ramonehamilton/commander-forge/internal/config"
	"github.com/ramonehamilton/commander-forge/internal/version"
)

const usage = `Usage: commander-forge [-config PATH] [-d] <command> [flags]

Commands:
  serve      Run the HTTP API
  generate   Build decks for a commander from the stored collection
  import     Import a collection file (text decklist or CSV)
  version    Print the version
`

var (
	configPath = flag.String("config", "", "Path to config.toml (default: ~/.commander-forge/config.toml)")
	debugMode  = flag.Bool("d", false, "Enable debug logging")
)

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if args[0] == "version" {
		fmt.Println(version.GetVersion())
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := setupLogger(cfg.App.DebugMode || *debugMode)

	switch args[0] {
	case "serve":
		err = runServe(cfg, logger, args[1:])
	case "generate":
		err = runGenerate(cfg, logger, args[1:])
	case "import":
		err = runImport(cfg, logger, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setupLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
