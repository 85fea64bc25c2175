package input

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yildizm/LungScan/internal/logger"
)

// DefaultSettleDelay is how long a dropped file must stay quiet before it is delivered
const DefaultSettleDelay = 250 * time.Millisecond

// Watcher turns files dropped into a directory into selection events
type Watcher struct {
	dir     string
	settle  time.Duration
	watcher *fsnotify.Watcher
	log     *logger.Logger

	paths  chan string
	errors chan error
	done   chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
	wg      sync.WaitGroup
}

// NewWatcher starts watching dir. Close must be called to release it.
func NewWatcher(dir string, settle time.Duration, log *logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Discard()
	}
	if settle <= 0 {
		settle = DefaultSettleDelay
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		settle:  settle,
		watcher: fw,
		log:     log.WithComponent("watch"),
		paths:   make(chan string, 8),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Paths delivers visible files that were created or finished writing
func (w *Watcher) Paths() <-chan string {
	return w.paths
}

// Errors delivers watcher failures
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Dir returns the watched directory
func (w *Watcher) Dir() string {
	return w.dir
}

// Close stops the watcher and closes the Paths channel
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	close(w.paths)
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error: %v", err)
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	// Validation happens on selection, only hidden files and directories stop here
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}
	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return
	}

	w.log.Debug("drop folder event %s on %s", event.Op, name)
	w.schedule(event.Name)
}

// schedule restarts the settle timer for path
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok && t.Stop() {
		w.wg.Done()
	}

	w.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] != timer {
			w.mu.Unlock()
			return
		}
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case w.paths <- path:
		case <-w.done:
		}
	})
	w.pending[path] = timer
}
