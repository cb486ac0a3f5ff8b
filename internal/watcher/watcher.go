// Package watcher triggers reconciliation runs when watched roots
// change on disk. Filesystem events are debounced so a burst of writes
// (a copy in progress, an unpacking archive) causes one run, and a
// periodic rescan catches changes the event stream missed, which NAS
// mounts routinely do.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"reelsync/internal/logging"
)

// TriggerFunc runs one reconciliation pass. Returning an error does not
// stop the watcher; it is logged and the next trigger proceeds.
type TriggerFunc func(ctx context.Context) error

type Watcher struct {
	debounce time.Duration
	rescan   time.Duration
	log      *slog.Logger
}

func New(debounce, rescan time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		debounce: debounce,
		rescan:   rescan,
		log:      logging.WithComponent(logger, "watcher"),
	}
}

// Run watches the given roots until the context is cancelled. Each
// debounced event burst and each rescan interval invokes trigger once.
func (w *Watcher) Run(ctx context.Context, roots []string, trigger TriggerFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	for _, root := range roots {
		if err := addRecursive(fw, root); err != nil {
			return err
		}
		w.log.Info("watching root", logging.String(logging.FieldRoot, root))
	}

	debounce := time.NewTimer(w.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	// A non-positive interval disables the periodic rescan; a nil channel
	// never fires.
	var rescanC <-chan time.Time
	if w.rescan > 0 {
		ticker := time.NewTicker(w.rescan)
		defer ticker.Stop()
		rescanC = ticker.C
	}

	fire := func(reason string) {
		w.log.Info("triggering reconciliation", logging.String("reason", reason))
		if err := trigger(ctx); err != nil && ctx.Err() == nil {
			w.log.Error("reconciliation failed", logging.Error(err))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				// New directories must be watched before anything
				// lands inside them.
				if err := addRecursive(fw, event.Name); err != nil {
					w.log.Warn("watch new path", logging.String(logging.FieldPath, event.Name), logging.Error(err))
				}
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) ||
				event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				w.log.Debug("filesystem event",
					logging.String(logging.FieldPath, event.Name),
					logging.String("op", event.Op.String()),
				)
				if pending && !debounce.Stop() {
					<-debounce.C
				}
				debounce.Reset(w.debounce)
				pending = true
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", logging.Error(err))
		case <-debounce.C:
			pending = false
			fire("filesystem change")
		case <-rescanC:
			fire("periodic rescan")
		}
	}
}

// addRecursive watches path and every directory below it. Files and
// vanished paths are ignored; fsnotify only needs directories.
func addRecursive(fw *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Entries can disappear mid-walk; skip rather than fail.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}
