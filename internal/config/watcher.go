package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	fs     *fsnotify.Watcher
	done   chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger
}

// Watch starts watching path. onChange runs on the watcher goroutine with
// each successfully reloaded config; files that fail to parse are logged and
// skipped. The directory is watched rather than the file so editors that
// replace the file by rename are still seen.
func Watch(path string, logger *slog.Logger, onChange func(*Config)) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fs: fsw, done: make(chan struct{}), logger: logger}
	w.wg.Add(1)
	go w.loop(filepath.Clean(path), onChange)
	return w, nil
}

func (w *Watcher) loop(path string, onChange func(*Config)) {
	defer w.wg.Done()

	// Debounce timer
	var debounce *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			cfg, err := LoadFrom(path)
			if err != nil {
				w.logger.Warn("config: reload failed", "path", path, "error", err)
				continue
			}
			w.logger.Info("config: reloaded", "path", path)
			onChange(cfg)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config: watch error", "error", err)
		}
	}
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
