package fswatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/life-assistant/internal/ports"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher signals when one of a fixed set of files in a directory is created,
// written or renamed into place. Bursts of events collapse into one pending
// signal.
type Watcher struct {
	dir     string
	names   map[string]struct{}
	watcher *fsnotify.Watcher
	events  chan struct{}
	logger  *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ ports.Notifier = (*Watcher)(nil)

// New watches dir for changes to the named files. An empty names list matches
// every file in dir.
func New(dir string, names []string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create watched directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	return &Watcher{
		dir:     dir,
		names:   set,
		watcher: watcher,
		events:  make(chan struct{}, 1),
		logger:  logger,
	}, nil
}

func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Run forwards matching filesystem events until ctx is done, then closes the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.matches(event) {
				w.signal()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.String("dir", w.dir), zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.watcher.Close()
	})

	return w.closeErr
}

func (w *Watcher) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	if len(w.names) == 0 {
		return true
	}

	_, ok := w.names[filepath.Base(event.Name)]
	return ok
}

func (w *Watcher) signal() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
