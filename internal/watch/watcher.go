// Package watch reloads an open archive when its file changes on disk.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mangaview/internal/log"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/blake3"
)

// Change is a settled modification of the watched archive.
type Change struct {
	Path      string
	Size      int64
	Digest    [32]byte // blake3 of the new contents
	Timestamp time.Time
	Op        fsnotify.Op
}

// Watcher monitors one archive file. The parent directory is watched so that
// editors and downloaders that replace the file by rename are seen too.
type Watcher struct {
	path  string
	quiet time.Duration
	log   log.Sink

	// Channel to receive settled changes
	changes chan Change

	// Channel to signal stop
	stopChan chan struct{}
	done     chan struct{}

	fsWatcher *fsnotify.Watcher

	// Only touched by Start and the loop goroutine.
	digest [32]byte

	mutex   sync.RWMutex
	running bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithQuiet sets how long the file must stay unchanged before a Change is sent.
func WithQuiet(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.quiet = d
		}
	}
}

// WithLogger sets the log sink.
func WithLogger(sink log.Sink) Option {
	return func(w *Watcher) {
		if sink != nil {
			w.log = sink
		}
	}
}

// New creates a watcher for the archive at path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("error accessing archive: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", abs)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		path:      abs,
		quiet:     250 * time.Millisecond,
		log:       log.LogWithFields(log.F("archive", abs)),
		changes:   make(chan Change, 1),
		fsWatcher: fsWatcher,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path of the watched archive.
func (w *Watcher) Path() string { return w.path }

// Changes delivers one Change per burst of file events. It is closed by Stop.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}

	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	if data, err := os.ReadFile(w.path); err == nil {
		w.digest = blake3.Sum256(data)
	}

	w.running = true
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop(w.stopChan, w.done)

	w.log.Infof("watching archive")
	return nil
}

func (w *Watcher) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending fsnotify.Op
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			pending |= event.Op
			if timer == nil {
				timer = time.NewTimer(w.quiet)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.quiet)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			op := pending
			pending = 0
			data, err := os.ReadFile(w.path)
			if err != nil {
				// Renamed away and not replaced (yet).
				if !os.IsNotExist(err) {
					w.log.Errorf("error reading archive: %v", err)
				}
				continue
			}
			sum := blake3.Sum256(data)
			if sum == w.digest {
				w.log.Debugf("archive touched but unchanged")
				continue
			}
			w.digest = sum
			change := Change{Path: w.path, Size: int64(len(data)), Digest: sum, Timestamp: time.Now(), Op: op}
			select {
			case w.changes <- change:
			default:
				// A change is already queued; the reader will reload the latest file anyway.
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Errorf("fsnotify watcher error: %v", err)

		case <-stop:
			return
		}
	}
}

// Stop halts watching and closes the Changes channel.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if !w.running {
		return
	}

	close(w.stopChan)
	if err := w.fsWatcher.Close(); err != nil {
		w.log.Errorf("error closing fsnotify watcher: %v", err)
	}
	<-w.done
	w.running = false
	close(w.changes)
	w.log.Infof("watcher stopped")
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}
