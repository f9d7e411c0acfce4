//go:build !nogui
// +build !nogui

package gui

import (
	"sync"

	"mangaview/internal/resource"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// pageView is the main image surface. It shows one page or a message.
type pageView struct {
	widget.BaseWidget

	image   *canvas.Image
	message *widget.Label

	// onSecondary opens the context menu at an absolute position.
	onSecondary func(pos fyne.Position)
	// onPointer reports the pointer height within the view.
	onPointer func(y, height float32)
	// resolve looks up the bytes behind a handle URI.
	resolve func(uri string) ([]byte, bool)

	mu  sync.Mutex
	uri string
}

var (
	_ fyne.SecondaryTappable = (*pageView)(nil)
	_ desktop.Hoverable      = (*pageView)(nil)
)

func newPageView() *pageView {
	p := &pageView{
		image:   &canvas.Image{FillMode: canvas.ImageFillContain, ScaleMode: canvas.ImageScaleSmooth},
		message: widget.NewLabelWithStyle("Open a .zip archive to start reading", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
	}
	p.message.Wrapping = fyne.TextWrapWord
	p.ExtendBaseWidget(p)
	return p
}

func (p *pageView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(p.image, container.NewCenter(p.message)))
}

// AssignImage shows the page behind h. A handle released before it reaches
// the view leaves a message instead of an image.
func (p *pageView) AssignImage(h *resource.Handle) {
	data := h.Bytes()
	if p.resolve != nil {
		var ok bool
		if data, ok = p.resolve(h.URI()); !ok {
			p.ClearImage("page is no longer available")
			return
		}
	}

	p.mu.Lock()
	p.uri = h.URI()
	p.mu.Unlock()

	p.image.Resource = fyne.NewStaticResource(h.Name(), data)
	p.image.Image = nil
	p.message.Hide()
	p.image.Refresh()
}

// ClearImage drops the image and shows message in its place.
func (p *pageView) ClearImage(message string) {
	p.mu.Lock()
	p.uri = ""
	p.mu.Unlock()

	p.image.Resource = nil
	p.image.Image = nil
	p.image.Refresh()
	if message == "" {
		p.message.Hide()
		return
	}
	p.message.SetText(message)
	p.message.Show()
}

// URI returns the handle currently assigned, or "".
func (p *pageView) URI() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uri
}

func (p *pageView) TappedSecondary(ev *fyne.PointEvent) {
	if p.onSecondary != nil {
		p.onSecondary(ev.AbsolutePosition)
	}
}

func (p *pageView) MouseIn(ev *desktop.MouseEvent) {
	p.MouseMoved(ev)
}

func (p *pageView) MouseMoved(ev *desktop.MouseEvent) {
	if p.onPointer != nil {
		p.onPointer(ev.Position.Y, p.Size().Height)
	}
}

func (p *pageView) MouseOut() {}
