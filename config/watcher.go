package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/yshengliao/mockwire/registry"
)

// Watcher hot-reloads a handler definition file into a registry. On each
// change the file is reloaded, recompiled, and swapped in atomically via
// Registry.Reset; a file that fails to load keeps the previous handlers
// in place.
type Watcher struct {
	path string
	reg  *registry.Registry
	log  *zap.Logger
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching path. The caller is responsible for the initial
// Load/Compile; the watcher only reacts to subsequent changes. Close the
// watcher to stop.
func Watch(path string, reg *registry.Registry, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: start watcher: %w", err)
	}
	// Watch the directory: editors often replace the file, which drops a
	// watch registered on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	w := &Watcher{path: path, reg: reg, log: log, fsw: fsw, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	f, err := Load(w.path)
	if err != nil {
		w.log.Warn("reload skipped, file failed to load", zap.String("path", w.path), zap.Error(err))
		return
	}
	hs, err := Compile(f)
	if err != nil {
		w.log.Warn("reload skipped, file failed to compile", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.reg.Reset(hs...)
	w.log.Info("handlers reloaded", zap.String("path", w.path), zap.Int("count", len(hs)))
}

// Close stops the watcher and waits for its loop to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
