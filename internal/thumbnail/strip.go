// Package thumbnail maintains the strip of small page previews around the
// current page.
package thumbnail

import (
	"context"
	"image"
	"sync"

	"mangaview/internal/archive"
	"mangaview/internal/imaging"
	"mangaview/internal/loader"
	"mangaview/internal/log"
	"mangaview/internal/resource"

	"golang.org/x/sync/errgroup"
)

// Owner labels every handle the strip mints.
const Owner = "thumbnail"

// Mode selects how a thumbnail reaches the renderer.
type Mode int

const (
	// Bitmap decodes and scales the page, releasing the handle straight away.
	Bitmap Mode = iota
	// Reference passes the handle through; it stays live until the next
	// refresh or Close.
	Reference
)

// ParseMode maps the config value to a Mode. Unknown values fall back to Bitmap.
func ParseMode(s string) Mode {
	if s == "reference" {
		return Reference
	}
	return Bitmap
}

func (m Mode) String() string {
	if m == Reference {
		return "reference"
	}
	return "bitmap"
}

// Thumbnail is one loaded slot.
type Thumbnail struct {
	Index   int
	Name    string
	Current bool
	Image   image.Image      // set in Bitmap mode
	Handle  *resource.Handle // set in Reference mode, owned by the strip
}

// Renderer displays the strip. Calls for one strip are serialized and only
// ever describe the latest window.
type Renderer interface {
	// Reset announces a new window [start, end] around current.
	Reset(start, end, current int)
	Place(t Thumbnail)
	Failed(index int, err error)
}

// Window returns the inclusive slot range around index, clamped to
// [0, count-1]. An empty list yields (0, -1).
func Window(index, count, before, after int) (start, end int) {
	if count <= 0 {
		return 0, -1
	}
	index = min(max(index, 0), count-1)
	return max(0, index-before), min(count-1, index+after)
}

// Option configures a Strip.
type Option func(*Strip)

// WithWindow sets how many pages are shown around the current one.
func WithWindow(before, after int) Option {
	return func(s *Strip) {
		s.before, s.after = max(before, 0), max(after, 0)
	}
}

// WithMode selects Bitmap or Reference delivery.
func WithMode(m Mode) Option {
	return func(s *Strip) { s.mode = m }
}

// WithSize sets the longest thumbnail edge in Bitmap mode.
func WithSize(px int) Option {
	return func(s *Strip) {
		if px > 0 {
			s.size = px
		}
	}
}

// WithWorkers bounds concurrent slot loads per refresh.
func WithWorkers(n int) Option {
	return func(s *Strip) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the log sink.
func WithLogger(sink log.Sink) Option {
	return func(s *Strip) {
		if sink != nil {
			s.log = sink
		}
	}
}

// Strip loads thumbnails for a window of pages. Each Refresh starts a new
// generation; results belonging to an older generation are released and
// dropped.
type Strip struct {
	renderer Renderer
	before   int
	after    int
	mode     Mode
	size     int
	workers  int
	log      log.Sink

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	held   []*resource.Handle
	closed bool

	inflight sync.WaitGroup
}

// New creates a strip drawing into r.
func New(r Renderer, opts ...Option) *Strip {
	s := &Strip{
		renderer: r,
		before:   3,
		after:    5,
		mode:     Bitmap,
		size:     96,
		workers:  4,
		log:      log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode reports the delivery mode.
func (s *Strip) Mode() Mode { return s.mode }

// Refresh shows the window around index and loads every slot in it. It
// returns once all slots of this generation have been placed, failed or been
// superseded.
func (s *Strip) Refresh(ctx context.Context, l loader.Loader, pages archive.PageList, index int) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.releaseHeldLocked()

	start, end := Window(index, pages.Len(), s.before, s.after)
	s.renderer.Reset(start, end, index)
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	if l == nil || end < start {
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i := start; i <= end; i++ {
		i := i
		g.Go(func() error {
			s.loadSlot(ctx, gen, l, pages, i, index)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Strip) loadSlot(ctx context.Context, gen uint64, l loader.Loader, pages archive.PageList, i, current int) {
	if ctx.Err() != nil {
		return
	}
	page, err := l.LoadPage(ctx, pages, i, Owner)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.With(log.F("page", i)).Warnf("thumbnail load failed: %v", err)
		s.mu.Lock()
		if s.gen == gen {
			s.renderer.Failed(i, err)
		}
		s.mu.Unlock()
		return
	}

	thumb := Thumbnail{Index: i, Name: page.Name, Current: i == current}
	if s.mode == Bitmap {
		img, _, err := imaging.DecodeUpright(page.Bytes)
		page.Handle.Release()
		if err != nil {
			s.log.With(log.F("page", i), log.F("entry", page.Name)).Warnf("thumbnail decode failed: %v", err)
			s.mu.Lock()
			if s.gen == gen {
				s.renderer.Failed(i, err)
			}
			s.mu.Unlock()
			return
		}
		thumb.Image = imaging.Fit(img, s.size)
	} else {
		thumb.Handle = page.Handle
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		page.Handle.Release()
		return
	}
	if thumb.Handle != nil {
		s.held = append(s.held, thumb.Handle)
	}
	s.renderer.Place(thumb)
}

func (s *Strip) releaseHeldLocked() {
	for _, h := range s.held {
		h.Release()
	}
	s.held = nil
}

// Held reports how many reference-mode handles the strip currently owns.
func (s *Strip) Held() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held)
}

// Clear drops the current window without closing the strip.
func (s *Strip) Clear() {
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.releaseHeldLocked()
	if !s.closed {
		s.renderer.Reset(0, -1, -1)
	}
	s.mu.Unlock()
}

// Close releases every handle and waits for in-flight refreshes. Further
// refreshes are ignored.
func (s *Strip) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.inflight.Wait()

	s.mu.Lock()
	s.releaseHeldLocked()
	s.mu.Unlock()
}
