package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultReloadWindow is how long the watcher waits for writes to settle.
const DefaultReloadWindow = 200 * time.Millisecond

// Watcher reloads a configuration file whenever it changes on disk.
type Watcher struct {
	loader   ports.ConfigLoader
	logger   ports.Logger
	cwd      string
	path     string
	window   time.Duration
	onChange func(*domain.Config)
}

// NewWatcher creates a watcher for the file at path. onChange receives every
// configuration that loads and validates; invalid edits are logged and skipped.
func NewWatcher(loader ports.ConfigLoader, logger ports.Logger, cwd, path string, onChange func(*domain.Config)) *Watcher {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(cwd, path)
	}
	return &Watcher{
		loader:   loader,
		logger:   logger,
		cwd:      cwd,
		path:     filepath.Clean(abs),
		window:   DefaultReloadWindow,
		onChange: onChange,
	}
}

// WithWindow overrides the settle window.
func (w *Watcher) WithWindow(window time.Duration) *Watcher {
	w.window = window
	return w
}

// Run watches until ctx is done. The parent directory is watched because
// editors often replace files through a rename.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create file watcher")
	}
	defer func() { _ = fsWatcher.Close() }()

	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to watch configuration directory"), "path", w.path)
	}

	debouncer := NewDebouncer(w.window, w.reload)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debouncer.Trigger()
			}
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log().Warn("configuration watcher: " + err.Error())
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.loader.Load(w.cwd, w.path)
	if err != nil {
		w.log().Error(zerr.Wrap(err, "failed to reload configuration"))
		return
	}
	w.log().Info("configuration reloaded from " + w.path)
	w.onChange(cfg)
}

func (w *Watcher) log() ports.Logger {
	if w.logger == nil {
		return discard{}
	}
	return w.logger
}

type discard struct{}

func (discard) Info(string) {}
func (discard) Warn(string) {}
func (discard) Error(error) {}
