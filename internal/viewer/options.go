package viewer

import (
	"time"

	"mangaview/internal/archive"
	"mangaview/internal/clipboard"
	"mangaview/internal/config"
	"mangaview/internal/loader"
	"mangaview/internal/log"
	"mangaview/internal/resource"
	"mangaview/internal/thumbnail"
)

// LoaderFactory builds the page loader for a freshly opened archive.
type LoaderFactory func(idx *archive.Index, reg *resource.Registry) loader.Loader

// Option adds a capability to a Controller.
type Option func(*Controller)

// WithThumbnails attaches a thumbnail strip. The controller closes it on Close.
func WithThumbnails(s *thumbnail.Strip) Option {
	return func(c *Controller) { c.strip = s }
}

// WithClipboard enables CopyCurrent.
func WithClipboard(w clipboard.Writer) Option {
	return func(c *Controller) { c.clip = w }
}

// WithLogger sets the sink; the controller scopes it with its own id.
func WithLogger(sink log.Sink) Option {
	return func(c *Controller) {
		if sink != nil {
			c.log = sink
		}
	}
}

// WithRegistry shares a handle registry, mainly so tests can count live handles.
func WithRegistry(reg *resource.Registry) Option {
	return func(c *Controller) {
		if reg != nil {
			c.registry = reg
		}
	}
}

// WithLoaderFactory overrides the loader built for each archive.
func WithLoaderFactory(f LoaderFactory) Option {
	return func(c *Controller) {
		if f != nil {
			c.newLoader = f
		}
	}
}

// WithDebounce sets the delay between a page change and the thumbnail refresh.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// WithConfig applies the viewer and archive sections of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(c *Controller) {
		if cfg == nil {
			return
		}
		c.debounce = cfg.Viewer.ThumbnailDebounce
		c.extensions = cfg.Archive.Extensions
		cached, workers := cfg.Viewer.CacheArchive, cfg.Viewer.Workers
		exts := cfg.Archive.Extensions
		c.newLoader = func(idx *archive.Index, reg *resource.Registry) loader.Loader {
			return loader.New(idx, cached, reg,
				loader.WithWorkers(workers),
				loader.WithExtensions(exts...),
				loader.WithLogger(c.log))
		}
	}
}
