package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

const defaultDebounce = 500 * time.Millisecond

var defaultExtensions = []string{".md", ".markdown"}

// Handler receives the batch of changed paths collected during a debounce window.
type Handler func(ctx context.Context, paths []string) error

// Config controls which files the watcher reacts to and how event bursts
// are coalesced.
type Config struct {
	// Directory is the content root watched recursively.
	Directory string
	// Debounce is the quiet period before changed paths are flushed to the handler.
	Debounce time.Duration
	// Extensions filters events to matching file suffixes. Defaults to Markdown files.
	Extensions []string
}

// Watcher observes a content directory and invokes a handler with batched
// change sets. Rapid event bursts (editor save, git checkout) collapse into
// a single handler invocation.
type Watcher struct {
	cfg     Config
	handler Handler
	logger  interfaces.Logger

	fsWatcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	started bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher rooted at cfg.Directory. The handler is
// required; it runs on the watcher goroutine after each debounce window.
func NewWatcher(cfg Config, handler Handler, logger interfaces.Logger) (*Watcher, error) {
	if strings.TrimSpace(cfg.Directory) == "" {
		return nil, errors.New("watch: directory is required")
	}
	if handler == nil {
		return nil, errors.New("watch: handler is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = defaultExtensions
	}
	if logger == nil {
		logger = logging.NoOp()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		cfg:       cfg,
		handler:   handler,
		logger:    logger,
		fsWatcher: fsWatcher,
		pending:   map[string]struct{}{},
	}, nil
}

// Start registers the directory tree and begins dispatching change batches.
// The watcher stops when ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("watch: already started")
	}
	w.started = true
	w.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	if err := w.addRecursive(w.cfg.Directory); err != nil {
		cancel()
		return err
	}

	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Info("watch.started", "directory", w.cfg.Directory, "debounce_ms", w.cfg.Debounce.Milliseconds())
	return nil
}

// Stop cancels the watch loop and releases the filesystem watcher.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.fsWatcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	flush := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return

		case <-flush:
			w.dispatch(ctx)

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, flush)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch.error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, flush chan struct{}) {
	if event.Op.Has(fsnotify.Create) {
		// New subdirectories need their own watch registration.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("watch.add_dir_failed", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	if !w.matches(event.Name) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.Debounce, func() {
		select {
		case flush <- struct{}{}:
		default:
		}
	})
	w.mu.Unlock()
}

func (w *Watcher) dispatch(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = map[string]struct{}{}
	w.mu.Unlock()

	sort.Strings(paths)

	w.logger.Debug("watch.dispatch", "changed_count", len(paths))
	if err := w.handler(ctx, paths); err != nil {
		w.logger.Error("watch.handler_failed", "error", err, "changed_count", len(paths))
	}
}

func (w *Watcher) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range w.cfg.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if name := entry.Name(); name != "." && strings.HasPrefix(name, ".") {
			return fs.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}
