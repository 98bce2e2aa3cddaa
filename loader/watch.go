package loader

import (
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the Watcher waits for a burst of file events
// to settle before reloading.
const DefaultDebounce = 100 * time.Millisecond

var errWatcherClosed = errors.New("watcher closed")

// Watcher keeps one table loaded and rebuilds it whenever the directory
// changes. While the directory fails to load, Routes returns that error.
type Watcher struct {
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher

	mu    sync.RWMutex
	table *Table
	err   error

	generation *atomic.Int64
	done       chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
	closeErr   error
}

func NewWatcher(dir string) (*Watcher, error) {
	return NewWatcherWithDebounce(dir, DefaultDebounce)
}

func NewWatcherWithDebounce(dir string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, &LoadError{Dir: dir, Err: err}
	}

	w := &Watcher{
		dir:        dir,
		debounce:   debounce,
		watcher:    fw,
		generation: atomic.NewInt64(0),
		done:       make(chan struct{}),
	}
	w.reload()

	w.wg.Add(1)
	go w.watchForChanges()

	zap.L().Debug("watching handler directory", zap.String("dir", dir))

	return w, nil
}

// Routes returns the current table with a reference taken for the caller.
func (w *Watcher) Routes() (*Table, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.err != nil {
		return nil, w.err
	}
	return w.table.Retain(), nil
}

// Generation counts completed reloads, the initial load included.
func (w *Watcher) Generation() int64 {
	return w.generation.Load()
}

func (w *Watcher) reload() {
	table, err := Load(w.dir)

	w.mu.Lock()
	old := w.table
	w.table, w.err = table, err
	w.mu.Unlock()

	if err != nil {
		zap.L().Debug("reload failed", zap.String("dir", w.dir), zap.Error(err))
	} else {
		zap.L().Debug("handlers reloaded", zap.String("dir", w.dir), zap.Int("routes", table.Len()))
	}

	if old != nil {
		old.Close()
	}
	w.generation.Inc()
}

func (w *Watcher) watchForChanges() {
	defer w.wg.Done()

	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}

	for {
		select {
		case <-w.done:
			debounceTimer.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			zap.L().Debug("handler file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()))
			debounceTimer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			zap.L().Error("file watcher error", zap.Error(err))

		case <-debounceTimer.C:
			w.reload()
		}
	}
}

// Close stops watching and drops the watcher's reference to the table.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		err := w.watcher.Close()
		w.wg.Wait()

		w.mu.Lock()
		table := w.table
		w.table = nil
		w.err = &LoadError{Dir: w.dir, Err: errWatcherClosed}
		w.mu.Unlock()

		if table != nil {
			err = multierr.Append(err, table.Close())
		}
		w.closeErr = err
	})
	return w.closeErr
}
