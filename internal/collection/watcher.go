package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
)

// DefaultDebounce is how long the watcher waits after the last change before importing.
const DefaultDebounce = 250 * time.Millisecond

// Importer stores an imported collection, replacing or adding to what is there.
type Importer interface {
	ImportCollection(ctx context.Context, cards []deckbuilder.OwnedCard, replace bool) error
}

// ImportFile parses the file at path, choosing the format from its extension,
// and replaces the stored collection with it.
func ImportFile(ctx context.Context, path string, importer Importer) (*ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection file: %w", err)
	}
	defer func() { _ = file.Close() }()

	result, err := Parse(file, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if err := importer.ImportCollection(ctx, result.Cards, true); err != nil {
		return nil, err
	}
	return result, nil
}

// Watcher re-imports a collection file whenever it changes on disk.
type Watcher struct {
	path     string
	importer Importer
	logger   *slog.Logger
	debounce time.Duration

	// OnImport, if set, is called after every import attempt.
	OnImport func(result *ImportResult, err error)
}

// NewWatcher creates a watcher for path. A nil logger uses slog.Default().
func NewWatcher(path string, importer Importer, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		importer: importer,
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// Run imports the file once if it exists, then watches it until ctx is done.
// The parent directory is watched so editors that replace the file on save
// are picked up.
func (w *Watcher) Run(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch collection directory: %w", err)
	}

	if _, statErr := os.Stat(w.path); statErr == nil {
		w.importOnce(ctx)
	}

	w.logger.Info("Watching collection file", "path", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(w.debounce)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", "error", watchErr)
		case <-timer.C:
			w.importOnce(ctx)
		}
	}
}

func (w *Watcher) importOnce(ctx context.Context) {
	result, err := ImportFile(ctx, w.path, w.importer)
	switch {
	case errors.Is(err, ErrEmptyImport):
		w.logger.Warn("Collection file has no cards", "path", w.path, "error", err)
	case err != nil:
		w.logger.Error("Failed to import collection file", "path", w.path, "error", err)
	default:
		w.logger.Info("Imported collection file",
			"path", w.path,
			"entries", len(result.Cards),
			"cards", result.Total(),
			"skipped", len(result.Warnings))
	}

	if w.OnImport != nil {
		w.OnImport(result, err)
	}
}
