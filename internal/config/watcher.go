package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hirelens/matchdex/internal/domain/weights"
)

// DefaultDebounce spaces reloads so an editor that writes a file in several
// syscalls triggers one reload, not five.
const DefaultDebounce = time.Second

// Watcher reloads a weights preset file on change. An update that fails to
// parse or validate is logged and dropped; the previous preset keeps serving.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(weights.Weights)
	logger   *zap.Logger

	mu      sync.Mutex
	fw      *fsnotify.Watcher
	timer   *time.Timer
	reload  chan struct{}
	stop    chan struct{}
	running bool
}

// NewWatcher creates a watcher for one weights file. onChange receives every
// successfully parsed and validated preset. debounce <= 0 selects
// DefaultDebounce.
func NewWatcher(path string, debounce time.Duration, onChange func(weights.Weights), logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		reload:   make(chan struct{}, 1),
		logger:   logger,
	}
}

// Start begins watching the file's directory. Watching the directory rather
// than the file catches atomic replacement, which renames a temp file over
// the watched path and never fires on the old file handle.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("weights watcher already running")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.fw = fw
	w.stop = make(chan struct{})
	w.running = true
	go w.loop(fw, w.stop)

	w.logger.Info("Weights watcher started",
		zap.String("path", w.path),
		zap.Duration("debounce", w.debounce))
	return nil
}

// Stop stops watching. Safe to call when not running and safe to call twice.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.stop)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.fw.Close()
	w.running = false
	w.logger.Info("Weights watcher stopped")
}

func (w *Watcher) loop(fw *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if w.matches(event) {
				w.schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Weights watcher error", zap.Error(err))
		case <-w.reload:
			w.apply()
		case <-stop:
			return
		}
	}
}

// matches reports whether the event concerns the watched file. Write, create
// and rename all count; atomic replacement surfaces as create or rename.
func (w *Watcher) matches(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(w.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.reload <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) apply() {
	loaded, err := LoadWeightsFile(w.path)
	if err != nil {
		w.logger.Warn("Keeping previous weights, reload failed",
			zap.String("path", w.path), zap.Error(err))
		return
	}
	w.logger.Info("Weights file reloaded",
		zap.String("path", w.path), zap.String("version", loaded.Version))
	w.onChange(loaded)
}
