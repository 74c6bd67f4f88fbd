// Package watchload re-runs a pipeline compilation whenever one of its four
// input artifact files changes on disk, debouncing rapid successive writes
// and skipping a write whose content hash didn't actually change.
package watchload

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc re-runs a compilation from scratch. Errors are the caller's to
// report; Watcher only decides when to call it.
type RunFunc func()

// Watcher watches a fixed set of artifact paths and calls Run, debounced,
// whenever one of them changes.
type Watcher struct {
	paths    []string
	run      RunFunc
	debounce time.Duration
	verbose  bool

	watcher *fsnotify.Watcher
	hashes  *contentHashTracker

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	done    chan struct{}
}

// Options configures a Watcher.
type Options struct {
	Paths    []string
	Run      RunFunc
	Debounce time.Duration // defaults to 300ms
	Verbose  bool
}

// New creates a Watcher over opts.Paths. It does not start watching until
// Start is called.
func New(opts Options) (*Watcher, error) {
	if len(opts.Paths) == 0 {
		return nil, fmt.Errorf("watchload: no paths to watch")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watchload: create fsnotify watcher: %w", err)
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	w := &Watcher{
		paths:    opts.Paths,
		run:      opts.Run,
		debounce: debounce,
		verbose:  opts.Verbose,
		watcher:  fw,
		hashes:   newContentHashTracker(),
		done:     make(chan struct{}),
	}
	return w, nil
}

// Start adds every watched path to the underlying fsnotify watcher and
// begins the event loop in a background goroutine. Start returns once
// watching has begun; call Stop to end it.
func (w *Watcher) Start() error {
	for _, p := range w.paths {
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("watchload: watch %q: %w", p, err)
		}
		// Seed the hash tracker so the first real edit is the first trigger,
		// not the act of starting to watch.
		w.hashes.snapshot(p)
	}
	go w.eventLoop()
	return nil
}

// Stop ends the event loop and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	_ = w.watcher.Close()
	<-w.done
}

func (w *Watcher) eventLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !w.hashes.changed(event.Name) {
		return
	}
	w.schedule()
}

// schedule resets the debounce timer so a burst of saves across all four
// artifact files collapses into exactly one re-run.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.run)
}

// contentHashTracker skips a write event whose file content is unchanged
// from the last observed snapshot (some editors emit a no-op rewrite on
// save).
type contentHashTracker struct {
	mu     sync.Mutex
	hashes map[string]string
}

func newContentHashTracker() *contentHashTracker {
	return &contentHashTracker{hashes: make(map[string]string)}
}

func (t *contentHashTracker) snapshot(path string) {
	h, err := hashFile(path)
	if err != nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hashes[path] = h
}

func (t *contentHashTracker) changed(path string) bool {
	h, err := hashFile(path)
	if err != nil {
		// Unreadable (e.g. mid-write, or deleted): treat as changed so the
		// caller's re-run surfaces the read error itself.
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	old, ok := t.hashes[path]
	t.hashes[path] = h
	return !ok || old != h
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
