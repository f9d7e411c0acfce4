package components

import (
	"fmt"
	"strings"
	"sync"

	"mangaview/internal/thumbnail"
	"mangaview/internal/tui/styles"
)

type slotState int

const (
	slotPending slotState = iota
	slotLoaded
	slotFailed
)

// ThumbStrip renders the thumbnail window as a row of page markers. It is
// fed by a thumbnail.Strip from another goroutine and signals Changes after
// every update.
type ThumbStrip struct {
	mu      sync.Mutex
	start   int
	end     int
	current int
	slots   map[int]slotState
	changes chan struct{}
}

var _ thumbnail.Renderer = (*ThumbStrip)(nil)

func NewThumbStrip() *ThumbStrip {
	return &ThumbStrip{
		end:     -1,
		current: -1,
		slots:   map[int]slotState{},
		changes: make(chan struct{}, 1),
	}
}

// Changes receives a value after the strip changed. Signals coalesce.
func (s *ThumbStrip) Changes() <-chan struct{} {
	return s.changes
}

func (s *ThumbStrip) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *ThumbStrip) Reset(start, end, current int) {
	s.mu.Lock()
	s.start, s.end, s.current = start, end, current
	s.slots = map[int]slotState{}
	s.mu.Unlock()
	s.notify()
}

func (s *ThumbStrip) Place(t thumbnail.Thumbnail) {
	s.mu.Lock()
	if t.Index >= s.start && t.Index <= s.end {
		s.slots[t.Index] = slotLoaded
	}
	s.mu.Unlock()
	s.notify()
}

func (s *ThumbStrip) Failed(index int, _ error) {
	s.mu.Lock()
	if index >= s.start && index <= s.end {
		s.slots[index] = slotFailed
	}
	s.mu.Unlock()
	s.notify()
}

// Window returns the shown range.
func (s *ThumbStrip) Window() (start, end int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start, s.end
}

// Loaded counts slots that finished loading.
func (s *ThumbStrip) Loaded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, st := range s.slots {
		if st == slotLoaded {
			n++
		}
	}
	return n
}

// View draws markers like "[1] [2] >3< [4]"; failed slots show "!".
func (s *ThumbStrip) View(st styles.Styles) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.end < s.start {
		return ""
	}

	parts := make([]string, 0, s.end-s.start+1)
	for i := s.start; i <= s.end; i++ {
		label := fmt.Sprint(i + 1)
		switch {
		case s.slots[i] == slotFailed:
			parts = append(parts, st.Failed.Render("["+label+"!]"))
		case i == s.current:
			parts = append(parts, st.Current.Render(">"+label+"<"))
		case s.slots[i] == slotLoaded:
			parts = append(parts, st.Thumb.Render("["+label+"]"))
		default:
			parts = append(parts, st.Muted.Render(" "+label+"·"))
		}
	}
	return strings.Join(parts, " ")
}
