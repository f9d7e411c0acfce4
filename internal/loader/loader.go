// Package loader turns a page index into bytes plus a fresh resource handle.
package loader

import (
	"context"
	"sync"

	"mangaview/internal/archive"
	"mangaview/internal/errors"
	"mangaview/internal/log"
	"mangaview/internal/resource"

	"golang.org/x/sync/semaphore"
)

// Page is one loaded page. The caller owns Handle and must release it.
type Page struct {
	Index  int
	Name   string
	Bytes  []byte
	Handle *resource.Handle
}

// Loader loads pages of one archive.
type Loader interface {
	LoadPage(ctx context.Context, pages archive.PageList, index int, owner string) (*Page, error)
	Close() error
}

// Option configures a loader.
type Option func(*base)

// WithWorkers bounds the number of concurrent entry decodes.
func WithWorkers(n int) Option {
	return func(b *base) {
		if n > 0 {
			b.workers = int64(n)
		}
	}
}

// WithLogger sets the log sink.
func WithLogger(sink log.Sink) Option {
	return func(b *base) {
		if sink != nil {
			b.log = sink
		}
	}
}

// WithExtensions forwards the image extension filter to archives the loader opens.
func WithExtensions(exts ...string) Option {
	return func(b *base) {
		b.extensions = exts
	}
}

type base struct {
	registry   *resource.Registry
	workers    int64
	sem        *semaphore.Weighted
	log        log.Sink
	extensions []string
}

func newBase(reg *resource.Registry, opts []Option) base {
	b := base{
		registry: reg,
		workers:  4,
		log:      log.Discard(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.registry == nil {
		b.registry = resource.NewRegistry()
	}
	b.sem = semaphore.NewWeighted(b.workers)
	return b
}

// load runs read under the worker bound and mints a handle for the result.
func (b *base) load(ctx context.Context, pages archive.PageList, index int, owner string, read func(name string) ([]byte, error)) (*Page, error) {
	if !pages.Valid(index) {
		return nil, errors.NewPageLoadError("page out of range", "", index, errors.PageOutOfRange, nil)
	}
	name := pages[index]

	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	data, err := read(name)
	b.sem.Release(1)
	if err != nil {
		b.log.With(log.F("page", index), log.F("entry", name)).Warnf("page load failed: %v", err)
		return nil, withIndex(err, name, index)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.log.With(log.F("page", index), log.F("entry", name), log.F("owner", owner)).Debugf("page loaded (%d bytes)", len(data))
	return &Page{
		Index:  index,
		Name:   name,
		Bytes:  data,
		Handle: b.registry.Mint(owner, name, data),
	}, nil
}

func withIndex(err error, name string, index int) error {
	var pageErr *errors.PageLoadError
	if errors.As(err, &pageErr) {
		return errors.NewPageLoadError(pageErr.Message(), name, index, pageErr.Kind(), pageErr.Unwrap())
	}
	return errors.NewPageLoadError("cannot load page", name, index, errors.PageDecodeFailed, err)
}

// Cached keeps the decoded archive for its whole lifetime.
type Cached struct {
	base
	mu  sync.RWMutex
	idx *archive.Index
}

// NewCached creates a loader reading from an already decoded archive.
func NewCached(idx *archive.Index, reg *resource.Registry, opts ...Option) *Cached {
	return &Cached{base: newBase(reg, opts), idx: idx}
}

// LoadPage reads pages[index] from the cached archive.
func (c *Cached) LoadPage(ctx context.Context, pages archive.PageList, index int, owner string) (*Page, error) {
	c.mu.RLock()
	idx := c.idx
	c.mu.RUnlock()
	if idx == nil {
		return nil, errors.NewPageLoadError("loader closed", "", index, errors.PageDecodeFailed, nil)
	}
	return c.load(ctx, pages, index, owner, idx.Entry)
}

// Close drops the cached archive.
func (c *Cached) Close() error {
	c.mu.Lock()
	c.idx = nil
	c.mu.Unlock()
	return nil
}

// Reopening decodes the archive again for every page load, trading speed for
// not holding the decoded directory between loads.
type Reopening struct {
	base
	mu  sync.RWMutex
	raw []byte
}

// NewReopening creates a loader over raw archive bytes.
func NewReopening(raw []byte, reg *resource.Registry, opts ...Option) *Reopening {
	return &Reopening{base: newBase(reg, opts), raw: raw}
}

// LoadPage re-opens the archive and reads pages[index].
func (r *Reopening) LoadPage(ctx context.Context, pages archive.PageList, index int, owner string) (*Page, error) {
	r.mu.RLock()
	raw := r.raw
	r.mu.RUnlock()
	if raw == nil {
		return nil, errors.NewPageLoadError("loader closed", "", index, errors.PageDecodeFailed, nil)
	}
	return r.load(ctx, pages, index, owner, func(name string) ([]byte, error) {
		var opts []archive.Option
		if len(r.extensions) > 0 {
			opts = append(opts, archive.WithExtensions(r.extensions...))
		}
		idx, err := archive.Open(raw, opts...)
		if err != nil {
			return nil, err
		}
		return idx.Entry(name)
	})
}

// Close drops the raw bytes.
func (r *Reopening) Close() error {
	r.mu.Lock()
	r.raw = nil
	r.mu.Unlock()
	return nil
}

// New picks the loader policy: cached keeps idx, otherwise pages are re-read
// from idx.Raw() on every load.
func New(idx *archive.Index, cached bool, reg *resource.Registry, opts ...Option) Loader {
	if cached {
		return NewCached(idx, reg, opts...)
	}
	return NewReopening(idx.Raw(), reg, opts...)
}
