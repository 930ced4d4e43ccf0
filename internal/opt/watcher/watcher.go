// Package watcher turns filesystem churn in the docs dir into debounced
// rescan triggers.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/traitdex/traitdex/internal/opt/loader"
)

type Watcher struct {
	l        *slog.Logger
	docsDir  string
	debounce time.Duration
	notify   func()
}

// New creates a watcher that calls notify after fragment churn settles for
// the debounce window. The callback must be cheap and non-blocking; the
// pipeline's trigger collapses overlapping notifications on its own.
func New(docsDir string, debounce time.Duration, notify func()) *Watcher {
	return &Watcher{
		l:        slog.With("component", "watcher"),
		docsDir:  docsDir,
		debounce: debounce,
		notify:   notify,
	}
}

func (w *Watcher) log() *slog.Logger {
	if w.l != nil {
		return w.l
	}
	return slog.With("component", "watcher")
}

// Run blocks until the context is canceled. The docs dir is watched
// recursively; directories created later are picked up from their create
// events.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() {
		_ = fsw.Close()
	}()

	if err := w.addRecursive(fsw, w.docsDir); err != nil {
		return err
	}

	// The timer is armed on the first relevant event and re-armed on every
	// following one; it fires only after the build goes quiet.
	debounce := time.NewTimer(w.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounce.C:
			armed = false
			w.log().Debug("rescan triggered")
			w.notify()

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}
			if event.Op.Has(fsnotify.Create) {
				if err := w.maybeWatchDir(fsw, event.Name); err != nil {
					w.log().Warn("cannot watch new dir", slog.Any("err", err))
				}
			}
			if !w.relevant(event) {
				continue
			}
			if armed {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
			}
			debounce.Reset(w.debounce)
			armed = true

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			w.log().Warn("fsnotify watcher error", slog.Any("err", err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(filepath.Base(event.Name), loader.FragmentSuffix) {
		return false
	}
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				return fmt.Errorf("watch dir %s: %w", filepath.ToSlash(path), err)
			}
		}
		return nil
	})
}

// maybeWatchDir registers a freshly created directory (and anything already
// inside it). Create events for plain files are ignored here.
func (w *Watcher) maybeWatchDir(fsw *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		// vanished between the event and the stat
		return nil
	}
	if !info.IsDir() {
		return nil
	}
	return w.addRecursive(fsw, path)
}
