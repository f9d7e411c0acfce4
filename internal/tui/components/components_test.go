package components

import (
	"errors"
	"image/color"
	"testing"

	"mangaview/internal/thumbnail"
	"mangaview/internal/tui/styles"
	"mangaview/pkg/testutils"

	"github.com/alecthomas/assert"
)

func TestThumbStrip(t *testing.T) {
	s := NewThumbStrip()
	assert.Equal(t, "", s.View(styles.Theme))

	s.Reset(2, 5, 3)
	s.Place(thumbnail.Thumbnail{Index: 2})
	s.Place(thumbnail.Thumbnail{Index: 3, Current: true})
	s.Failed(4, errors.New("boom"))
	s.Place(thumbnail.Thumbnail{Index: 9})

	start, end := s.Window()
	assert.Equal(t, 2, start)
	assert.Equal(t, 5, end)
	assert.Equal(t, 2, s.Loaded())

	view := testutils.StripANSI(s.View(styles.Theme))
	assert.Contains(t, view, "[3]")
	assert.Contains(t, view, ">4<")
	assert.Contains(t, view, "[5!]")
	assert.Contains(t, view, "6·")

	select {
	case <-s.Changes():
	default:
		t.Fatal("expected a change signal")
	}
}

func TestStatusBar(t *testing.T) {
	sb := NewStatusBar(styles.Theme)
	assert.Equal(t, "", sb.View())

	sb.SetText("loading")
	sb.SetLoading(true)
	assert.True(t, sb.Loading())
	assert.Contains(t, testutils.StripANSI(sb.View()), "loading")

	sb.SetLoading(false)
	sb.SetError("broken page")
	assert.Equal(t, "broken page", testutils.StripANSI(sb.View()))
	assert.Equal(t, "broken page", sb.Text())
}

func TestDescribePage(t *testing.T) {
	data := testutils.PNG(t, 12, 34, color.White)
	p := DescribePage("001.png", data)
	assert.Equal(t, "png", p.Format)
	assert.Equal(t, 12, p.Width)
	assert.Equal(t, 34, p.Height)

	view := testutils.StripANSI(p.View(styles.Theme, "1 / 9"))
	assert.Contains(t, view, "001.png")
	assert.Contains(t, view, "1 / 9")
	assert.Contains(t, view, "PNG  12x34")

	raw := DescribePage("x.png", []byte("garbage"))
	assert.Equal(t, "unknown", raw.Format)
	assert.Contains(t, raw.MIME, "text/plain")
	assert.Contains(t, testutils.StripANSI(raw.View(styles.Theme, "")), "7 B")

	msg := PagePanel{Message: "no images found"}
	assert.Contains(t, testutils.StripANSI(msg.View(styles.Theme, "")), "no images found")
}
