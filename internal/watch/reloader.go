package watch

import (
	"context"
	"sync"
	"time"

	"mangaview/internal/log"
)

// ReloadFunc re-opens the archive after a change.
type ReloadFunc func(ctx context.Context) error

// Status summarizes a Reloader.
type Status struct {
	Running    bool
	Path       string
	Reloads    int
	Failures   int
	LastReload time.Time
	LastError  error
}

// Reloader connects a Watcher to a viewer reload.
type Reloader struct {
	watcher  *Watcher
	reload   ReloadFunc
	callback func(Change, error)

	mutex  sync.RWMutex
	status Status
}

// NewReloader creates a reloader calling reload for every settled change.
func NewReloader(w *Watcher, reload ReloadFunc) *Reloader {
	return &Reloader{
		watcher: w,
		reload:  reload,
		status:  Status{Path: w.Path()},
	}
}

// SetCallback registers a function notified after each reload attempt.
func (r *Reloader) SetCallback(fn func(Change, error)) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.callback = fn
}

// Run starts the watcher and reloads until ctx is done. The watcher is
// stopped on return.
func (r *Reloader) Run(ctx context.Context) error {
	if err := r.watcher.Start(); err != nil {
		return err
	}
	defer r.watcher.Stop()

	r.mutex.Lock()
	r.status.Running = true
	r.mutex.Unlock()
	defer func() {
		r.mutex.Lock()
		r.status.Running = false
		r.mutex.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-r.watcher.Changes():
			if !ok {
				return nil
			}
			err := r.reload(ctx)
			r.record(change, err)
		}
	}
}

func (r *Reloader) record(change Change, err error) {
	r.mutex.Lock()
	r.status.LastReload = change.Timestamp
	r.status.LastError = err
	if err != nil {
		r.status.Failures++
	} else {
		r.status.Reloads++
	}
	cb := r.callback
	r.mutex.Unlock()

	fields := log.LogWithFields(log.F("archive", change.Path), log.F("size", change.Size))
	if err != nil {
		fields.Warnf("reload failed: %v", err)
	} else {
		fields.Info("archive reloaded")
	}
	if cb != nil {
		cb(change, err)
	}
}

// Status returns a snapshot of the reloader.
func (r *Reloader) Status() Status {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.status
}
