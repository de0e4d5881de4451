// Package watch reports repository file changes for live review reload.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/lenslet/lens/internal/core/logging"
)

// debounceWindow is how long a burst of filesystem events coalesces before
// one change set is delivered.
const debounceWindow = 500 * time.Millisecond

// Event carries the repository-relative paths that changed within one
// debounce window, sorted and slash-separated.
type Event struct {
	Paths []string
}

// Watcher watches a repository tree recursively and delivers coalesced
// change sets. VCS metadata directories and node_modules are never watched.
type Watcher struct {
	root     string
	fs       *fsnotify.Watcher
	events   chan Event
	debounce time.Duration
	log      zerolog.Logger

	done chan struct{}
	wg   sync.WaitGroup
}

// New starts watching the tree rooted at root.
func New(root string) (*Watcher, error) {
	return newWatcher(root, debounceWindow)
}

func newWatcher(root string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     root,
		fs:       fsw,
		events:   make(chan Event, 1),
		debounce: debounce,
		log:      logging.Component("watch"),
		done:     make(chan struct{}),
	}
	if err := w.watchTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Events returns the channel carrying change sets. It holds at most one
// event; a set nobody consumed folds into the next burst instead of being
// dropped. The channel closes when the watcher closes.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops watching and closes the events channel.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	close(w.events)
	return err
}

// watchTree adds dir and every directory below it, skipping ignored trees.
// fsnotify watches single directories only, so recursion is maintained here
// and in run when new directories appear.
func (w *Watcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && ignoredDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var (
		pending map[string]struct{}
		timer   *time.Timer
		flush   <-chan time.Time
	)
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				w.watchNewDir(ev.Name)
			}
			path, ok := w.normalize(ev)
			if !ok {
				continue
			}
			if pending == nil {
				pending = make(map[string]struct{})
			}
			pending[path] = struct{}{}
			// The window is fixed from the first event of a burst, not
			// extended per event, so a steady stream of writes still
			// flushes every debounce period.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				flush = timer.C
			}
		case <-flush:
			w.deliver(pending)
			pending, timer, flush = nil, nil, nil
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Debug().Err(err).Msg("watch error")
		}
	}
}

// watchNewDir extends the watch to a directory created after startup.
// Files written into it before the watch lands are missed, an inotify gap
// the next write closes.
func (w *Watcher) watchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || ignoredDir(info.Name()) {
		return
	}
	if err := w.watchTree(path); err != nil {
		w.log.Debug().Err(err).Str("dir", path).Msg("watch new directory")
	}
}

// normalize maps an fsnotify event to a repository-relative slash path.
// Chmod-only events and paths inside ignored trees report false.
func (w *Watcher) normalize(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return "", false
	}
	path := ev.Name
	if rel, err := filepath.Rel(w.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		path = rel
	}
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	if path == "" || path == "." {
		return "", false
	}
	if pathIgnored(path) {
		return "", false
	}
	return path, true
}

func (w *Watcher) deliver(pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}
	for {
		select {
		case w.events <- Event{Paths: sortedPaths(pending)}:
			return
		default:
		}
		// Channel full: fold the unconsumed set into this one and retry.
		select {
		case prev := <-w.events:
			for _, p := range prev.Paths {
				pending[p] = struct{}{}
			}
		default:
		}
	}
}

func sortedPaths(set map[string]struct{}) []string {
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func pathIgnored(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if ignoredDir(seg) {
			return true
		}
	}
	return false
}

func ignoredDir(name string) bool {
	switch name {
	case ".git", ".jj", "node_modules":
		return true
	}
	return false
}
