package codebase

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change is reported for every file the watcher re-parsed or dropped.
// File is nil when the file was removed.
type Change struct {
	Path string
	File *FileInfo
}

// DefaultDebounce is how long the watcher waits for the file system to
// settle before re-parsing.
const DefaultDebounce = 100 * time.Millisecond

// FileWatcher keeps a Codebase in sync with the file system. Affected
// files are re-parsed once no event has arrived for the debounce interval.
type FileWatcher struct {
	codebase *Codebase
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]fsnotify.Op

	// OnChange, if set, is called from the watcher goroutine after each
	// re-parse or removal.
	OnChange func(Change)
}

func NewFileWatcher(c *Codebase) (*FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &FileWatcher{
		codebase: c,
		watcher:  fsw,
		debounce: DefaultDebounce,
		pending:  make(map[string]fsnotify.Op),
	}, nil
}

// SetDebounce changes the quiet interval. A non-positive d selects
// DefaultDebounce.
func (w *FileWatcher) SetDebounce(d time.Duration) {
	if d <= 0 {
		d = DefaultDebounce
	}
	w.debounce = d
}

// Start scans the codebase, watches every directory below its root and
// processes events until ctx is done or Stop is called.
func (w *FileWatcher) Start(ctx context.Context) error {
	if err := w.codebase.ScanAll(); err != nil {
		return fmt.Errorf("scan %s: %w", w.codebase.RootDir(), err)
	}
	if err := w.addRecursive(w.codebase.RootDir()); err != nil {
		return fmt.Errorf("watch %s: %w", w.codebase.RootDir(), err)
	}
	go w.run(ctx, w.watcher.Events, w.watcher.Errors)
	return nil
}

func (w *FileWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *FileWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.codebase.log.Warningf("watch %s: %s", path, err)
		}
		return nil
	})
}

func (w *FileWatcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if w.handle(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.codebase.log.Errorf("watch: %s", err)
		case <-timer.C:
			w.flush()
		}
	}
}

// handle queues event and reports whether a re-parse is now due.
func (w *FileWatcher) handle(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.codebase.log.Warningf("watch %s: %s", event.Name, err)
			}
			return false
		}
	}
	if !w.codebase.Wants(event.Name) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[event.Name] |= event.Op
	return true
}

func (w *FileWatcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.mu.Unlock()

	for path := range pending {
		change := Change{Path: path}
		if err := w.codebase.ScanFile(path); err != nil {
			w.codebase.RemoveFile(path)
		} else {
			change.File = w.codebase.GetFile(path)
		}
		if w.OnChange != nil {
			w.OnChange(change)
		}
	}
}
