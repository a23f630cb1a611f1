// Package watch reports replays once Slippi has finished writing them.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/suykerbuyk/combo-finder/internal/discover"
	"github.com/suykerbuyk/combo-finder/internal/logging"
)

// DefaultSettle is how long a replay must stay unchanged before it is
// considered complete.
const DefaultSettle = 2 * time.Second

// Watcher watches a directory tree for replays.
type Watcher struct {
	root    string
	settle  time.Duration
	handle  func(path string)
	log     logging.Interface
	pending map[string]time.Time
	handled map[string]stamp
}

// stamp identifies the contents of a replay that was already handled.
type stamp struct {
	size    int64
	modTime time.Time
}

// New returns a watcher calling handle for each replay under root that has
// not changed for settle. A replay is handled again only if its size or
// modification time changed since. handle runs on the Run goroutine.
func New(root string, settle time.Duration, handle func(path string), log logging.Interface) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Watcher{
		root:    root,
		settle:  settle,
		handle:  handle,
		log:     log,
		pending: make(map[string]time.Time),
		handled: make(map[string]stamp),
	}
}

// Run watches until ctx is done. Replays still pending at that point are
// dropped.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	w.log.Infof("watching %s", w.root)

	tick := time.NewTicker(max(w.settle/4, 10*time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.event(fw, ev)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("watch: %v", err)

		case now := <-tick.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) event(fw *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
			if err := w.addTree(fw, ev.Name); err != nil {
				w.log.Warnf("watch %s: %v", ev.Name, err)
			}
			return
		}
	}

	if !discover.IsReplay(ev.Name) {
		return
	}
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		w.pending[ev.Name] = time.Now()
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		delete(w.pending, ev.Name)
		delete(w.handled, ev.Name)
	}
}

func (w *Watcher) flush(now time.Time) {
	for path, changed := range w.pending {
		if now.Sub(changed) < w.settle {
			continue
		}
		delete(w.pending, path)

		st, err := os.Stat(path)
		if err != nil {
			continue
		}
		cur := stamp{size: st.Size(), modTime: st.ModTime()}
		if prev, ok := w.handled[path]; ok && prev == cur {
			w.log.Debugf("replay unchanged: %s", path)
			continue
		}
		w.handled[path] = cur
		w.log.Debugf("replay settled: %s", path)
		w.handle(path)
	}
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
