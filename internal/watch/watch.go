// Package watch reports edits to a project's configuration layers.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bianoble/macrame/internal/config"
	"github.com/bianoble/macrame/internal/logger"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches directories and reports changes to selected files in
// them. Directories are watched rather than files so that files replaced by
// a rename, or created after the watch started, are still seen.
type Watcher struct {
	fsw       *fsnotify.Watcher
	log       logger.Logger
	debounce  time.Duration
	mu        sync.RWMutex
	names     map[string]map[string]bool
	callbacks []func(path string)
	closeOnce sync.Once
}

// New returns a Watcher. A zero debounce uses DefaultDebounce.
func New(log logger.Logger, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Watcher{
		fsw:      fsw,
		log:      log,
		debounce: debounce,
		names:    make(map[string]map[string]bool),
	}, nil
}

// Add watches dir for changes to the files with the given base names. A
// missing directory is skipped.
func (w *Watcher) Add(dir string, names ...string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, err := os.Stat(abs); errors.Is(err, fs.ErrNotExist) {
		w.log.Debug("Not watching missing directory", "dir", abs)
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.names[abs]; !ok {
		if err := w.fsw.Add(abs); err != nil {
			return fmt.Errorf("failed to watch %s: %w", abs, err)
		}
		w.names[abs] = make(map[string]bool)
	}
	for _, n := range names {
		w.names[abs][n] = true
	}
	return nil
}

// AddProject watches every configuration layer of root and port, plus the
// dotenv file when envFile is set.
func (w *Watcher) AddProject(root, port, envFile string) error {
	var rootNames []string
	for _, ext := range config.Extensions {
		rootNames = append(rootNames, config.RootConfigName+ext)
	}
	if envFile != "" {
		if !filepath.IsAbs(envFile) {
			envFile = filepath.Join(root, envFile)
		}
		if err := w.Add(filepath.Dir(envFile), filepath.Base(envFile)); err != nil {
			return err
		}
	}
	if err := w.Add(root, rootNames...); err != nil {
		return err
	}
	if port == "" {
		return nil
	}
	var portNames []string
	for _, ext := range config.Extensions {
		portNames = append(portNames, config.PortConfigName+ext)
	}
	return w.Add(filepath.Join(root, config.PortsDir, port), portNames...)
}

// OnChange registers a callback invoked with the path of the last file that
// changed in a burst.
func (w *Watcher) OnChange(callback func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.notify(pending)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.names[filepath.Dir(event.Name)][filepath.Base(event.Name)]
}

func (w *Watcher) notify(path string) {
	w.mu.RLock()
	callbacks := make([]func(string), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()
	w.log.Debug("Configuration changed", "path", path)
	for _, cb := range callbacks {
		if cb != nil {
			cb(path)
		}
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var closeErr error
	w.closeOnce.Do(func() {
		if err := w.fsw.Close(); err != nil {
			closeErr = fmt.Errorf("failed to close watcher: %w", err)
		}
	})
	return closeErr
}
