package main

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/talgya/sector-forge/internal/tables"
)

const watchDebounce = 200 * time.Millisecond

// watchTables reloads the tables file after each burst of edits and calls
// rebuild. Rejected tables are logged and the previous ones stay in use.
func (a *app) watchTables(ctx context.Context, rebuild func() error) error {
	path := a.settings.TablesPath
	if path == "" {
		return errors.New("--watch needs a tables file (--tables or tables_path)")
	}
	path = filepath.Clean(path)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Editors often replace the file, so watch its directory.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return err
	}
	slog.Info("watching tables", "path", path)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.After(watchDebounce)
			}

		case <-pending:
			pending = nil
			t, err := tables.Load(path)
			if err != nil {
				slog.Warn("tables rejected", "path", path, "error", err)
				continue
			}
			a.useTables(t)
			if err := rebuild(); err != nil {
				slog.Error("rebuild failed", "error", err)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}
