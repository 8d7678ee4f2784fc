package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramonehamilton/commander-forge/internal/api"
	"github.com/ramonehamilton/commander-forge/internal/collection"
	"github.com/ramonehamilton/commander-forge/internal/config"
	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
	"github.com/ramonehamilton/commander-forge/internal/deckexport"
	"github.com/ramonehamilton/commander-forge/internal/metrics"
	"github.com/ramonehamilton/commander-forge/internal/scryfall"
	"github.com/ramonehamilton/commander-forge/internal/storage"
)

// app holds the services shared by every command.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Manager
	provider  *scryfall.Provider
	generator *deckbuilder.Generator
	store     *storage.Service
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	delay, err := cfg.GetRequestDelay()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, err
	}
	throttle, err := cfg.GetThrottle()
	if err != nil {
		return nil, err
	}

	m := metrics.NewManager(metrics.WithRuntimeCollectors(true))

	client := scryfall.NewClient(scryfall.Options{
		BaseURL:      cfg.Scryfall.BaseURL,
		RequestDelay: delay,
		Timeout:      timeout,
		UserAgent:    cfg.Scryfall.UserAgent,
		MaxPages:     cfg.Scryfall.MaxPages,
		Observer:     m,
	})
	provider := scryfall.NewProvider(client)

	generator, err := deckbuilder.NewGenerator(deckbuilder.Config{
		Provider: provider,
		Throttle: throttle,
		Logger:   logger,
		Observer: m,
	})
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(storage.DefaultConfig(dbPath))
	if err != nil {
		return nil, err
	}
	logger.Debug("Opened database", "path", dbPath)

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		provider:  provider,
		generator: generator,
		store:     storage.NewService(db),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Error closing database", "error", err)
	}
}

func runServe(cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", cfg.API.Port, "API server port")
	watch := fs.String("watch", cfg.Collection.WatchFile, "Collection file to re-import whenever it changes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := api.NewServer(&api.Config{
		Port:           *port,
		AllowedOrigins: cfg.API.AllowedOrigins,
		RequestTimeout: api.DefaultConfig().RequestTimeout,
	}, &api.Dependencies{
		Generator:     a.generator,
		Decks:         a.store.Decks(),
		Collection:    a.store.Collection(),
		Validator:     a.provider,
		Metrics:       a.metrics,
		DefaultFormat: cfg.Generator.DefaultFormat,
	}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watch != "" {
		watcher := collection.NewWatcher(*watch, a.store, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Collection watcher stopped", "path", *watch, "error", err)
			}
		}()
	}

	if err := server.Start(); err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runGenerate(cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	commander := fs.String("commander", "", "Commander card name (required)")
	format := fs.String("format", cfg.Generator.DefaultFormat, "Game format")
	output := fs.String("output", string(deckexport.FormatCommander), "Output format: arena, text, commander or json")
	save := fs.Bool("save", false, "Store the generated decks")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *commander == "" {
		fs.Usage()
		return errors.New("-commander is required")
	}
	outFormat, err := deckexport.ParseFormat(*output)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	owned, err := a.store.Collection().ListOwned(ctx)
	if err != nil {
		return err
	}
	if len(owned) == 0 {
		logger.Warn("Collection is empty; import one with the import command")
	}

	options, err := a.generator.Generate(ctx, deckbuilder.Request{
		Commander:  *commander,
		Format:     *format,
		Collection: owned,
	})
	if err != nil {
		return err
	}

	for i, option := range options {
		if i > 0 {
			fmt.Println()
		}
		if err := deckexport.Write(os.Stdout, option, outFormat); err != nil {
			return err
		}
		if *save {
			saved, err := a.store.Decks().Save(ctx, "", option)
			if err != nil {
				return err
			}
			logger.Info("Saved deck", "id", saved.ID, "name", saved.Name)
		}
	}
	return nil
}

func runImport(cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "Collection file; .csv is read as CSV, anything else as a decklist (required)")
	merge := fs.Bool("merge", false, "Add to the stored collection instead of replacing it")
	validate := fs.Bool("validate", false, "Report cards Scryfall does not recognize")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return errors.New("-file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("open collection file: %w", err)
	}
	defer f.Close()

	result, err := collection.Parse(f, collection.FormatForPath(*file))
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		logger.Warn("Skipped line", "file", *file, "detail", w)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if *validate {
		unknown, err := a.provider.Validate(ctx, result.Cards)
		if err != nil {
			return fmt.Errorf("validate collection: %w", err)
		}
		for _, c := range unknown {
			logger.Warn("Unknown card", "name", c.Name, "set", c.SetCode)
		}
	}

	if err := a.store.ImportCollection(ctx, result.Cards, !*merge); err != nil {
		return err
	}

	entries, total, err := a.store.Collection().Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d entries (%d cards). Collection now holds %d entries, %d cards.\n",
		len(result.Cards), result.Total(), entries, total)
	return nil
}
