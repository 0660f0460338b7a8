package app

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"imgedit/internal/debounce"
	"imgedit/internal/logging"
)

// SourceWatcher reports when the open image file changes on disk. Bursts of
// writes are coalesced and reported once the file has been quiet for the
// settle time.
type SourceWatcher struct {
	mu          sync.Mutex
	fs          *fsnotify.Watcher
	path        string
	dir         string
	ignoreUntil time.Time
	onChange    func(path string)
	settle      *debounce.Debouncer
	stopCh      chan struct{}
	done        chan struct{}
}

// NewSourceWatcher starts a watcher. Call Close when done.
func NewSourceWatcher(settle time.Duration) (*SourceWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &SourceWatcher{
		fs:     fs,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	w.settle = debounce.New(settle, w.fire)
	go w.watchLoop()
	return w, nil
}

// OnChange sets the callback run when the watched file has changed. It runs
// on a background goroutine.
func (w *SourceWatcher) OnChange(callback func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = callback
}

// Watch switches the watch to path. The directory is watched rather than the
// file so that editors which save by rename are noticed.
func (w *SourceWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dir != "" && w.dir != dir {
		if err := w.fs.Remove(w.dir); err != nil {
			logging.Logger().Debug("failed to stop watching", "dir", w.dir, "error", err)
		}
		w.dir = ""
	}
	if w.dir == "" {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.path = abs
	w.dir = dir
	return nil
}

// Path returns the watched file.
func (w *SourceWatcher) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// IgnoreFor suppresses change reports for d, covering the editor's own
// writes.
func (w *SourceWatcher) IgnoreFor(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ignoreUntil = time.Now().Add(d)
}

// Close stops the watcher.
func (w *SourceWatcher) Close() error {
	select {
	case <-w.stopCh:
		return nil
	default:
	}
	close(w.stopCh)
	err := w.fs.Close()
	<-w.done
	w.settle.Cancel()
	return err
}

func (w *SourceWatcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				w.settle.Call()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logging.Logger().Warn("file watcher error", "error", err)
		}
	}
}

func (w *SourceWatcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.path == "" || filepath.Clean(ev.Name) != w.path {
		return false
	}
	return time.Now().After(w.ignoreUntil)
}

func (w *SourceWatcher) fire() {
	w.mu.Lock()
	path, cb := w.path, w.onChange
	w.mu.Unlock()
	if path == "" || cb == nil {
		return
	}
	logging.Logger().Info("source file changed", "path", path)
	cb(path)
}
