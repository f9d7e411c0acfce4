package thumbnail

import (
	"context"
	"fmt"
	"image/color"
	"sort"
	"sync"
	"testing"
	"time"

	"mangaview/internal/archive"
	"mangaview/internal/loader"
	"mangaview/internal/resource"
	"mangaview/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	resets  [][3]int
	placed  []Thumbnail
	failed  map[int]error
	onPlace func(Thumbnail)
}

func newRecorder() *recorder {
	return &recorder{failed: map[int]error{}}
}

func (r *recorder) Reset(start, end, current int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets = append(r.resets, [3]int{start, end, current})
	r.placed = nil
	r.failed = map[int]error{}
}

func (r *recorder) Place(t Thumbnail) {
	r.mu.Lock()
	r.placed = append(r.placed, t)
	fn := r.onPlace
	r.mu.Unlock()
	if fn != nil {
		fn(t)
	}
}

func (r *recorder) Failed(index int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[index] = err
}

func (r *recorder) placedIndexes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for _, t := range r.placed {
		out = append(out, t.Index)
	}
	sort.Ints(out)
	return out
}

func pngBook(t *testing.T, n int) []testutils.Entry {
	t.Helper()
	var entries []testutils.Entry
	for i := 0; i < n; i++ {
		entries = append(entries, testutils.Entry{
			Name: fmt.Sprintf("%02d.png", i+1),
			Data: testutils.PNG(t, 200, 100, color.White),
		})
	}
	return entries
}

func setup(t *testing.T, entries []testutils.Entry) (*archive.Index, loader.Loader, *resource.Registry) {
	t.Helper()
	idx, err := archive.Open(testutils.BuildZip(t, entries...))
	require.NoError(t, err)
	reg := resource.NewRegistry()
	return idx, loader.NewCached(idx, reg), reg
}

func TestWindow(t *testing.T) {
	tests := []struct {
		index, count, before, after int
		start, end                  int
	}{
		{0, 20, 3, 5, 0, 5},
		{10, 20, 3, 5, 7, 15},
		{19, 20, 3, 5, 16, 19},
		{0, 1, 3, 5, 0, 0},
		{2, 4, 0, 0, 2, 2},
		{0, 0, 3, 5, 0, -1},
		{50, 10, 3, 5, 6, 9},
	}
	for _, tt := range tests {
		start, end := Window(tt.index, tt.count, tt.before, tt.after)
		assert.Equal(t, tt.start, start, "start for %+v", tt)
		assert.Equal(t, tt.end, end, "end for %+v", tt)
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, Reference, ParseMode("reference"))
	assert.Equal(t, Bitmap, ParseMode("bitmap"))
	assert.Equal(t, Bitmap, ParseMode(""))
	assert.Equal(t, "reference", Reference.String())
}

func TestRefreshBitmap(t *testing.T) {
	idx, l, reg := setup(t, pngBook(t, 12))
	rec := newRecorder()
	s := New(rec, WithSize(50))

	s.Refresh(context.Background(), l, idx.ImageEntryNames(), 4)

	assert.Equal(t, [][3]int{{1, 9, 4}}, rec.resets)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, rec.placedIndexes())
	for _, th := range rec.placed {
		require.NotNil(t, th.Image)
		assert.Nil(t, th.Handle)
		assert.Equal(t, 50, th.Image.Bounds().Dx())
		assert.Equal(t, th.Index == 4, th.Current)
	}
	assert.Equal(t, 0, reg.Live(), "bitmap mode releases handles after decode")
	assert.Equal(t, int64(9), reg.Minted())
}

func TestRefreshReference(t *testing.T) {
	idx, l, reg := setup(t, pngBook(t, 10))
	pages := idx.ImageEntryNames()
	rec := newRecorder()
	s := New(rec, WithMode(Reference), WithWindow(1, 1))

	s.Refresh(context.Background(), l, pages, 0)
	assert.Equal(t, []int{0, 1}, rec.placedIndexes())
	assert.Equal(t, 2, s.Held())
	assert.Equal(t, 2, reg.LiveOwned(Owner))
	first := append([]Thumbnail(nil), rec.placed...)

	s.Refresh(context.Background(), l, pages, 5)
	assert.Equal(t, []int{4, 5, 6}, rec.placedIndexes())
	assert.Equal(t, 3, reg.LiveOwned(Owner))
	for _, th := range first {
		assert.True(t, th.Handle.Released(), "previous window handles are released")
	}

	s.Close()
	assert.Equal(t, 0, reg.Live())
	assert.Equal(t, 0, s.Held())
}

func TestRefreshIsolatesFailures(t *testing.T) {
	entries := pngBook(t, 4)
	entries[1].BadChecksum = true
	entries[2].Data = []byte("not an image")
	idx, l, reg := setup(t, entries)
	rec := newRecorder()
	s := New(rec)

	s.Refresh(context.Background(), l, idx.ImageEntryNames(), 0)

	assert.Equal(t, []int{0, 3}, rec.placedIndexes())
	assert.Len(t, rec.failed, 2)
	assert.Contains(t, rec.failed, 1)
	assert.Contains(t, rec.failed, 2)
	assert.Equal(t, 0, reg.Live())
}

func TestRefreshEmpty(t *testing.T) {
	rec := newRecorder()
	s := New(rec)
	s.Refresh(context.Background(), nil, nil, 0)
	assert.Equal(t, [][3]int{{0, -1, 0}}, rec.resets)
	assert.Empty(t, rec.placed)
}

// gate blocks every load until released.
type gate struct {
	loader.Loader
	release chan struct{}
	started chan int
}

func (g *gate) LoadPage(ctx context.Context, pages archive.PageList, index int, owner string) (*loader.Page, error) {
	g.started <- index
	<-g.release
	return g.Loader.LoadPage(context.Background(), pages, index, owner)
}

func TestSupersededGenerationIsDropped(t *testing.T) {
	idx, l, reg := setup(t, pngBook(t, 6))
	pages := idx.ImageEntryNames()
	rec := newRecorder()
	s := New(rec, WithMode(Reference), WithWindow(0, 0))

	slow := &gate{Loader: l, release: make(chan struct{}), started: make(chan int, 1)}
	done := make(chan struct{})
	go func() {
		s.Refresh(context.Background(), slow, pages, 0)
		close(done)
	}()
	<-slow.started

	s.Refresh(context.Background(), l, pages, 3)
	assert.Equal(t, []int{3}, rec.placedIndexes())

	close(slow.release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stale refresh did not finish")
	}

	assert.Equal(t, []int{3}, rec.placedIndexes(), "stale slot must not be placed")
	assert.Equal(t, 1, reg.LiveOwned(Owner), "stale handle must be released")
	s.Close()
	assert.Equal(t, 0, reg.Live())
}

func TestCloseWaitsForInflight(t *testing.T) {
	idx, l, reg := setup(t, pngBook(t, 3))
	rec := newRecorder()
	s := New(rec, WithMode(Reference), WithWindow(0, 0))

	slow := &gate{Loader: l, release: make(chan struct{}), started: make(chan int, 1)}
	go s.Refresh(context.Background(), slow, idx.ImageEntryNames(), 1)
	<-slow.started

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a load was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(slow.release)
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
	assert.Equal(t, 0, reg.Live())
	assert.Empty(t, rec.placed)

	s.Refresh(context.Background(), l, idx.ImageEntryNames(), 0)
	assert.Len(t, rec.resets, 1, "refresh after Close is ignored")
}

func TestClear(t *testing.T) {
	idx, l, reg := setup(t, pngBook(t, 3))
	rec := newRecorder()
	s := New(rec, WithMode(Reference))

	s.Refresh(context.Background(), l, idx.ImageEntryNames(), 0)
	require.Equal(t, 3, reg.Live())

	s.Clear()
	assert.Equal(t, 0, reg.Live())
	assert.Equal(t, [3]int{0, -1, -1}, rec.resets[len(rec.resets)-1])
}
