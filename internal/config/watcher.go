package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounceTime batches the burst of filesystem events editors
// produce when rewriting a file.
const reloadDebounceTime = 200 * time.Millisecond

// Watcher reloads the configuration file when it changes on disk and
// publishes the result to a Store.
type Watcher struct {
	path     string
	store    *Store
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

// WatchConfig starts watching configPath. The containing directory is
// watched rather than the file itself, since editors typically replace
// the file on save.
func WatchConfig(configPath string, store *Store) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path, err := filepath.Abs(configPath)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		store:    store,
		watcher:  watcher,
		stopChan: make(chan struct{}),
	}
	go w.watchEvents()

	log.Printf("watching config file: %s", path)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stopChan)
	return w.watcher.Close()
}

// watchEvents batches filesystem events and reloads the file once the
// burst settles.
func (w *Watcher) watchEvents() {
	reloadTimer := time.NewTimer(reloadDebounceTime)
	reloadTimer.Stop()
	pendingReload := false

	for {
		select {
		case <-w.stopChan:
			return

		case <-reloadTimer.C:
			if pendingReload {
				pendingReload = false
				w.reload()
			}

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				pendingReload = true
				reloadTimer.Reset(reloadDebounceTime)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("config watch error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		log.Printf("failed to reload config %s: %v", w.path, err)
		return
	}
	w.store.Replace(cfg)
	log.Printf("config reloaded: %s", w.path)
}
