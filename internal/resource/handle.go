// Package resource mints revocable handles over decoded page bytes.
//
// A Handle is the Go counterpart of a blob URL: a transient reference that a
// display surface resolves to bytes. Every handle records its owner when it is
// minted and must be released by that owner, either when a newer handle
// supersedes it or when the owner is torn down. The Registry keeps track of
// live handles so leaks are observable.
package resource

import (
	"fmt"
	"net/url"
	"path"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Scheme prefixes every handle URI.
const Scheme = "mangaview"

// Handle is a revocable reference to one page's bytes.
type Handle struct {
	uri      string
	name     string
	owner    string
	data     []byte
	registry *Registry
	released atomic.Bool
}

// URI returns the handle's address, e.g. mangaview://<id>/001.png.
func (h *Handle) URI() string { return h.uri }

// Name returns the archive entry the handle was minted for.
func (h *Handle) Name() string { return h.name }

// Owner returns the label recorded when the handle was minted.
func (h *Handle) Owner() string { return h.owner }

// Bytes returns the underlying bytes, or nil once released.
func (h *Handle) Bytes() []byte {
	if h.released.Load() {
		return nil
	}
	return h.data
}

// Released reports whether Release has been called.
func (h *Handle) Released() bool { return h.released.Load() }

// Release revokes the handle. Calling it more than once is a no-op.
func (h *Handle) Release() {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return
	}
	if h.registry != nil {
		h.registry.forget(h.uri)
	}
}

// Registry mints handles and resolves live URIs.
type Registry struct {
	mu     sync.Mutex
	live   map[string]*Handle
	minted atomic.Int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[string]*Handle)}
}

// Mint creates a live handle for name holding data, owned by owner.
func (r *Registry) Mint(owner, name string, data []byte) *Handle {
	h := &Handle{
		uri:      fmt.Sprintf("%s://%s/%s", Scheme, uuid.NewString(), url.PathEscape(path.Base(name))),
		name:     name,
		owner:    owner,
		data:     data,
		registry: r,
	}
	r.mu.Lock()
	r.live[h.uri] = h
	r.mu.Unlock()
	r.minted.Add(1)
	return h
}

// Resolve returns the bytes behind a live URI.
func (r *Registry) Resolve(uri string) ([]byte, bool) {
	r.mu.Lock()
	h, ok := r.live[uri]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	data := h.Bytes()
	return data, data != nil
}

// Live returns the number of handles not yet released.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// LiveOwned returns the number of live handles minted for owner.
func (r *Registry) LiveOwned(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, h := range r.live {
		if h.owner == owner {
			n++
		}
	}
	return n
}

// Owners lists the owners holding live handles, sorted.
func (r *Registry) Owners() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	for _, h := range r.live {
		seen[h.owner] = true
	}
	owners := make([]string, 0, len(seen))
	for o := range seen {
		owners = append(owners, o)
	}
	sort.Strings(owners)
	return owners
}

// Minted returns how many handles were ever minted.
func (r *Registry) Minted() int64 {
	return r.minted.Load()
}

// ReleaseOwned releases every live handle minted for owner and returns the count.
func (r *Registry) ReleaseOwned(owner string) int {
	r.mu.Lock()
	var victims []*Handle
	for _, h := range r.live {
		if h.owner == owner {
			victims = append(victims, h)
		}
	}
	r.mu.Unlock()
	for _, h := range victims {
		h.Release()
	}
	return len(victims)
}

func (r *Registry) forget(uri string) {
	r.mu.Lock()
	delete(r.live, uri)
	r.mu.Unlock()
}
