package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleTime collapses the burst of events editors produce on save.
const settleTime = 200 * time.Millisecond

// Watch calls onChange with the re-read configuration every time cfile is
// written. Edits that do not validate are logged and skipped. Watch
// returns when ctx is done.
func Watch(ctx context.Context, cfile string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, editors often replace the file instead of
	// writing to it.
	if err := watcher.Add(filepath.Dir(cfile)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfile, err)
	}
	target := filepath.Clean(cfile)

	timer := time.NewTimer(settleTime)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			timer.Reset(settleTime)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Config watcher error", "error", err)
		case <-timer.C:
			conf, err := ReadConfig(cfile)
			if err != nil {
				slog.Error("Ignoring changed config file", "file", cfile, "error", err)
				continue
			}
			slog.Info("Config file changed", "file", cfile)
			onChange(conf)
		}
	}
}
