// Package viewer drives a paged view over one ZIP archive: which page is
// shown, which resource handle the host surface holds, and when the thumbnail
// strip refreshes.
//
// Page loads may complete out of order. Every request takes a token and only
// the newest one may touch the surface; older results are released unseen.
package viewer

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"mangaview/internal/archive"
	"mangaview/internal/clipboard"
	"mangaview/internal/errors"
	"mangaview/internal/imaging"
	"mangaview/internal/loader"
	"mangaview/internal/log"
	"mangaview/internal/resource"
	"mangaview/internal/thumbnail"
)

// MainOwner labels handles assigned to the main surface.
const MainOwner = "main"

// Keys understood by HandleKey.
const (
	KeyLeft  = "ArrowLeft"
	KeyRight = "ArrowRight"
	KeyHome  = "Home"
	KeyEnd   = "End"
)

// ActionCopy is the context menu action that copies the page image.
const ActionCopy = "copy"

// Surface is where the host displays the current page. Calls are made while
// the controller holds its lock, so implementations must not call back into
// the controller synchronously.
type Surface interface {
	AssignImage(h *resource.Handle)
	ClearImage(message string)
}

var instances atomic.Int64

// Controller is the paged viewer state machine.
type Controller struct {
	id         string
	surface    Surface
	strip      *thumbnail.Strip
	clip       clipboard.Writer
	log        log.Sink
	registry   *resource.Registry
	newLoader  LoaderFactory
	debounce   time.Duration
	extensions []string

	mu      sync.Mutex
	kind    Kind
	index   int // last page shown successfully, -1 when none
	target  int // most recently requested page
	message string
	path    string
	idx     *archive.Index
	pages   archive.PageList
	loader  loader.Loader
	current *resource.Handle
	buffer  []byte

	token      uint64 // bumped by every page request
	generation uint64 // bumped whenever the archive is replaced or closed
	loadCancel context.CancelFunc
	timer      *time.Timer
	thumbs     sync.WaitGroup
}

// New creates a controller drawing into surface.
func New(surface Surface, opts ...Option) *Controller {
	c := &Controller{
		id:       strconv.FormatInt(instances.Add(1), 10),
		surface:  surface,
		log:      log.Discard(),
		registry: resource.NewRegistry(),
		debounce: 100 * time.Millisecond,
		index:    -1,
		target:   -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(log.F("viewer", c.id))
	if c.newLoader == nil {
		c.newLoader = func(idx *archive.Index, reg *resource.Registry) loader.Loader {
			return loader.NewCached(idx, reg, loader.WithLogger(c.log))
		}
	}
	return c
}

// ID identifies the controller in log lines.
func (c *Controller) ID() string { return c.id }

// Registry returns the registry minting this controller's handles.
func (c *Controller) Registry() *resource.Registry { return c.registry }

// SetFile reads the archive at path and shows its first page.
func (c *Controller) SetFile(ctx context.Context, path string) error {
	return c.open(ctx, path, nil, 0)
}

// OpenArchive shows the first page of the archive in data.
func (c *Controller) OpenArchive(ctx context.Context, data []byte) error {
	return c.open(ctx, "", data, 0)
}

// Reload re-reads the file given to SetFile and tries to stay on the same
// page, clamped to the new page count.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	path, target := c.path, c.target
	c.mu.Unlock()
	if path == "" {
		return errors.New("no file to reload")
	}
	c.log.Infof("reloading %s", path)
	return c.open(ctx, path, nil, max(target, 0))
}

func (c *Controller) open(ctx context.Context, path string, data []byte, start int) error {
	c.mu.Lock()
	c.teardownLocked()
	gen := c.generation
	c.path = path
	c.mu.Unlock()

	var opts []archive.Option
	if len(c.extensions) > 0 {
		opts = append(opts, archive.WithExtensions(c.extensions...))
	}

	var (
		idx *archive.Index
		err error
	)
	if path != "" {
		idx, err = archive.OpenFile(path, opts...)
	} else {
		idx, err = archive.Open(data, opts...)
	}
	if err == nil && idx.Len() == 0 {
		err = errors.NewEmptyArchiveError(path)
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.failLocked(err)
		c.mu.Unlock()
		c.log.Warnf("cannot open archive: %v", err)
		return err
	}
	c.idx = idx
	c.pages = idx.ImageEntryNames()
	c.loader = c.newLoader(idx, c.registry)
	start = min(start, c.pages.Len()-1)
	c.mu.Unlock()

	c.log.With(log.F("pages", idx.Len()), log.F("path", path)).Infof("archive opened")
	return c.ShowPage(ctx, start)
}

// ShowPage loads page i and assigns it to the surface. Out-of-range indexes
// and calls without an open archive are ignored. A request superseded by a
// newer one returns nil without touching the surface.
func (c *Controller) ShowPage(ctx context.Context, i int) error {
	c.mu.Lock()
	if c.loader == nil || !c.pages.Valid(i) {
		c.mu.Unlock()
		return nil
	}
	c.token++
	token := c.token
	c.target = i
	if c.loadCancel != nil {
		c.loadCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.loadCancel = cancel
	l, pages := c.loader, c.pages
	c.mu.Unlock()
	defer cancel()

	page, err := l.LoadPage(ctx, pages, i, MainOwner)

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token {
		if page != nil {
			page.Handle.Release()
		}
		c.log.With(log.F("page", i)).Debugf("discarding superseded load")
		return nil
	}
	c.loadCancel = nil
	if err != nil {
		c.log.With(log.F("page", i)).Warnf("cannot show page: %v", err)
		c.failLocked(err)
		return err
	}

	c.releaseCurrentLocked()
	c.current = page.Handle
	c.buffer = page.Bytes
	c.kind = Ready
	c.index = i
	c.message = ""
	c.surface.AssignImage(page.Handle)
	c.scheduleThumbnailsLocked(i)
	return nil
}

// NextPage shows the page after the most recently requested one.
func (c *Controller) NextPage(ctx context.Context) error {
	return c.step(ctx, 1)
}

// PreviousPage shows the page before the most recently requested one.
func (c *Controller) PreviousPage(ctx context.Context) error {
	return c.step(ctx, -1)
}

func (c *Controller) step(ctx context.Context, delta int) error {
	c.mu.Lock()
	target := c.target
	c.mu.Unlock()
	if target < 0 {
		return nil
	}
	return c.ShowPage(ctx, target+delta)
}

// FirstPage shows page 0.
func (c *Controller) FirstPage(ctx context.Context) error {
	return c.ShowPage(ctx, 0)
}

// LastPage shows the final page.
func (c *Controller) LastPage(ctx context.Context) error {
	c.mu.Lock()
	n := c.pages.Len()
	c.mu.Unlock()
	return c.ShowPage(ctx, n-1)
}

// HandleKey maps navigation keys to page changes. Other keys are ignored.
func (c *Controller) HandleKey(ctx context.Context, key string) error {
	switch key {
	case KeyLeft:
		return c.PreviousPage(ctx)
	case KeyRight:
		return c.NextPage(ctx)
	case KeyHome:
		return c.FirstPage(ctx)
	case KeyEnd:
		return c.LastPage(ctx)
	}
	return nil
}

// HandleContextAction runs a context menu action on the shown page.
func (c *Controller) HandleContextAction(ctx context.Context, action string) error {
	switch action {
	case ActionCopy:
		return c.CopyCurrent(ctx)
	}
	return errors.Newf("unknown action %q", action)
}

// CopyCurrent puts the shown page on the clipboard as PNG.
func (c *Controller) CopyCurrent(ctx context.Context) error {
	c.mu.Lock()
	buf, index := c.buffer, c.index
	c.mu.Unlock()

	if c.clip == nil {
		return errors.NewClipboardError("no clipboard available", errors.ClipboardUnavailable, nil)
	}
	if len(buf) == 0 {
		return errors.ErrNothingToCopy
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	png, err := imaging.ToPNG(buf)
	if err != nil {
		return errors.NewClipboardError("cannot convert page image", errors.ClipboardWriteFailed, err)
	}
	if err := c.clip.WriteImage(png); err != nil {
		c.log.With(log.F("page", index)).Warnf("copy failed: %v", err)
		if errors.IsClipboardError(err) {
			return err
		}
		return errors.NewClipboardError("clipboard write failed", errors.ClipboardWriteFailed, err)
	}
	c.log.With(log.F("page", index)).Infof("page copied to clipboard (%d bytes)", len(png))
	return nil
}

// Close releases every handle, closes the thumbnail strip and the loader.
// The controller is Empty afterwards; it may open another archive, but
// without thumbnails.
func (c *Controller) Close() {
	c.mu.Lock()
	c.teardownLocked()
	c.path = ""
	c.mu.Unlock()

	c.thumbs.Wait()
	if c.strip != nil {
		c.strip.Close()
	}
	c.sweepHandles()
	c.log.Debugf("viewer closed")
}

// sweepHandles releases handles still live under this viewer's owners, which
// means a surface or renderer kept one past its release point.
func (c *Controller) sweepHandles() {
	for _, owner := range c.registry.Owners() {
		if owner != MainOwner && owner != thumbnail.Owner {
			continue
		}
		if n := c.registry.ReleaseOwned(owner); n > 0 {
			c.log.With(log.F("owner", owner)).Warnf("released %d leaked handles on close", n)
		}
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		Kind:    c.kind,
		Index:   c.index,
		Count:   c.pages.Len(),
		Message: c.message,
		Path:    c.path,
	}
	if c.pages.Valid(c.index) {
		s.Name = c.pages[c.index]
	}
	return s
}

// Pages returns a copy of the page list.
func (c *Controller) Pages() archive.PageList {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(archive.PageList(nil), c.pages...)
}

// PageInfo returns the "i / n" label for the shown page, or "" when nothing is shown.
func (c *Controller) PageInfo() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index < 0 || c.pages.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("%d / %d", c.index+1, c.pages.Len())
}

// Current returns the bytes of the shown page.
func (c *Controller) Current() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

func (c *Controller) failLocked(err error) {
	c.releaseCurrentLocked()
	c.buffer = nil
	c.kind = Error
	c.message = errors.UserMessage(err)
	c.surface.ClearImage(c.message)
}

func (c *Controller) releaseCurrentLocked() {
	if c.current != nil {
		c.current.Release()
		c.current = nil
	}
}

// teardownLocked drops the archive and everything derived from it.
func (c *Controller) teardownLocked() {
	c.token++
	c.generation++
	if c.loadCancel != nil {
		c.loadCancel()
		c.loadCancel = nil
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.strip != nil {
		c.strip.Clear()
	}
	hadImage := c.current != nil
	c.releaseCurrentLocked()
	if c.loader != nil {
		if err := c.loader.Close(); err != nil {
			c.log.Warnf("closing loader: %v", err)
		}
		c.loader = nil
	}
	c.idx = nil
	c.pages = nil
	c.buffer = nil
	c.index = -1
	c.target = -1
	c.message = ""
	if c.kind != Empty || hadImage {
		c.surface.ClearImage("")
	}
	c.kind = Empty
}

func (c *Controller) scheduleThumbnailsLocked(index int) {
	if c.strip == nil {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	gen, l, pages := c.generation, c.loader, c.pages
	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		if gen != c.generation {
			c.mu.Unlock()
			return
		}
		c.thumbs.Add(1)
		c.mu.Unlock()
		defer c.thumbs.Done()
		c.strip.Refresh(context.Background(), l, pages, index)
	})
}
