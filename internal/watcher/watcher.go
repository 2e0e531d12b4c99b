// Package watcher keeps a corpus in sync with its directory. Filesystem
// events are debounced into a single re-ingestion; the pipeline's content
// hashing makes re-ingesting unchanged files cheap.
package watcher

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/opskb/opskb/internal/ingest"
)

// DefaultDebounce is the wait after the last event before re-ingesting.
const DefaultDebounce = 2 * time.Second

// Watcher watches one corpus root.
type Watcher struct {
	root     string
	debounce time.Duration
	log      *slog.Logger
	reingest func(ctx context.Context)

	mu    sync.Mutex
	timer *time.Timer
	fire  chan struct{}
}

// New creates a watcher over root. reingest is called after the filesystem
// settles; it runs on the watcher's goroutine, one call at a time.
func New(root string, debounce time.Duration, log *slog.Logger, reingest func(ctx context.Context)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		log:      log,
		reingest: reingest,
		fire:     make(chan struct{}, 1),
	}
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.addRecursive(fsw, w.root); err != nil {
		return err
	}
	w.log.InfoContext(ctx, "watch.started", "root", w.root, "debounce", w.debounce.String())

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WarnContext(ctx, "watch.error", "error", err)

		case <-w.fire:
			w.log.InfoContext(ctx, "watch.reingest", "root", w.root)
			w.reingest(ctx)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	// New directories need their own watch before their files produce
	// events.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(fsw, event.Name); err != nil {
				w.log.WarnContext(ctx, "watch.add_dir_failed",
					"path", event.Name, "error", err)
			}
			w.schedule()
			return
		}
	}

	if !ingest.SupportedExtension(event.Name) {
		return
	}
	if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		w.log.DebugContext(ctx, "watch.event",
			"path", event.Name, "op", event.Op.String())
		w.schedule()
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// addRecursive watches path and every directory below it. Non-directory
// paths are ignored.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(p)
		}
		return nil
	})
}
