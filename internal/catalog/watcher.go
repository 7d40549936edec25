package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"december/internal/logging"
)

// reloadDebounce coalesces editor save bursts into one reload.
const reloadDebounce = 200 * time.Millisecond

// Watcher reloads the catalog when its manifest directory changes.
type Watcher struct {
	catalog *Catalog
	fsw     *fsnotify.Watcher

	mu       sync.Mutex
	timer    *time.Timer
	stopOnce sync.Once
	done     chan struct{}
}

// Watch starts a watcher over the catalog's manifest directory. Changes to
// the manifest or any listed document trigger a debounced reload. The
// watcher stops when ctx is canceled or Close is called.
func Watch(ctx context.Context, c *Catalog) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(c.manifestPath)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{catalog: c, fsw: fsw, done: make(chan struct{})}
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.scheduleReload(ctx)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.CatalogWarn("watch error: %v", err)
		}
	}
}

func (w *Watcher) scheduleReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDebounce, func() {
		if err := w.catalog.reload(ctx); err != nil {
			logging.CatalogWarn("reload failed: %v", err)
			return
		}
		logging.CatalogDebug("catalog reloaded after file change")
	})
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.fsw.Close()
		<-w.done
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
	return err
}
