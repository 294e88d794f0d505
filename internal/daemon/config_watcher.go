package daemon

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docmerge/internal/logfields"
)

// configWatcher reloads configuration when the config file changes on disk.
// The parent directory is watched rather than the file itself so editors that
// replace the file (rename-over-write) keep triggering events.
type configWatcher struct {
	watcher    *fsnotify.Watcher
	configPath string
	onChange   func()
}

func newConfigWatcher(configPath string, onChange func()) (*configWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return &configWatcher{
		watcher:    watcher,
		configPath: configPath,
		onChange:   onChange,
	}, nil
}

func (w *configWatcher) run(ctx context.Context) {
	target := filepath.Clean(w.configPath)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("Config file changed", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Config watcher error", logfields.Error(err))
		}
	}
}

func (w *configWatcher) close() {
	_ = w.watcher.Close()
}
