package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/cli"
)

// debounceDelay groups the burst of events an editor produces on save.
const debounceDelay = 200 * time.Millisecond

// watch generates once, then again after every change to one of files,
// until ctx is cancelled or SIGINT is received. Errors are printed and
// watching continues. Without --force the first run refuses to overwrite
// existing outputs; the runs after it always overwrite.
func (g *generator) watch(ctx context.Context, files []string, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return alerr.Wrap(alerr.ErrFileRead, err, "cannot start file watcher")
	}
	defer watcher.Close()

	// Editors often replace files on save, so the directories are watched
	// and events are filtered by name.
	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return alerr.Wrap(alerr.ErrFileRead, err, "cannot resolve path").With("file", f)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return alerr.Wrap(alerr.ErrFileRead, err, "cannot watch directory").With("file", dir)
		}
	}

	g.regenerate(ctx, files, stderr)
	// Only the first run protects existing files. Later runs follow edits
	// of the schema and overwrite their outputs.
	g.force = true
	slog.Info("watching for changes", "files", len(files))

	timer := time.NewTimer(debounceDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			slog.Debug("schema file event", "file", event.Name, "op", event.Op.String())
			timer.Reset(debounceDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", "error", err)
		case <-timer.C:
			g.regenerate(ctx, files, stderr)
		}
	}
}

// regenerate runs the generator once and prints a failure instead of
// returning it.
func (g *generator) regenerate(ctx context.Context, files []string, stderr io.Writer) {
	if _, err := g.run(ctx, files); err != nil {
		fmt.Fprint(stderr, cli.FormatError(err))
	}
}
