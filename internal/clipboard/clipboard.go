// Package clipboard writes PNG images to the system clipboard.
package clipboard

import (
	"sync"

	"mangaview/internal/errors"

	"golang.design/x/clipboard"
)

// Writer receives PNG-encoded images.
type Writer interface {
	WriteImage(png []byte) error
}

// System writes to the desktop clipboard. The backend is initialized on the
// first write; a host without a clipboard yields ClipboardUnavailable.
type System struct {
	once    sync.Once
	initErr error
}

// NewSystem returns a writer backed by the OS clipboard.
func NewSystem() *System {
	return &System{}
}

// WriteImage places png on the clipboard.
func (s *System) WriteImage(png []byte) error {
	s.once.Do(func() {
		s.initErr = clipboard.Init()
	})
	if s.initErr != nil {
		return errors.NewClipboardError("clipboard unavailable", errors.ClipboardUnavailable, s.initErr)
	}
	if len(png) == 0 {
		return errors.ErrNothingToCopy
	}
	clipboard.Write(clipboard.FmtImage, png)
	return nil
}

// Memory keeps the last written image. Useful for headless hosts and tests.
type Memory struct {
	mu     sync.Mutex
	data   []byte
	writes int
	// Err, when set, is returned by every write.
	Err error
}

// WriteImage stores a copy of png.
func (m *Memory) WriteImage(png []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return errors.NewClipboardError("clipboard write failed", errors.ClipboardWriteFailed, m.Err)
	}
	m.data = append([]byte(nil), png...)
	m.writes++
	return nil
}

// Image returns the last written image.
func (m *Memory) Image() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// Writes counts successful writes.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
