//go:build !nogui
// +build !nogui

package gui

import (
	"fmt"
	"sync"

	"mangaview/internal/thumbnail"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// thumbTile is one slot of the thumbnail bar. Tapping it jumps to the page.
type thumbTile struct {
	widget.BaseWidget

	index int
	image *canvas.Image
	frame *canvas.Rectangle
	label *widget.Label
	onTap func(int)
}

func newThumbTile(index int, current bool, size float32, onTap func(int)) *thumbTile {
	t := &thumbTile{
		index: index,
		image: &canvas.Image{FillMode: canvas.ImageFillContain},
		frame: canvas.NewRectangle(theme.BackgroundColor()),
		label: widget.NewLabelWithStyle(fmt.Sprint(index+1), fyne.TextAlignCenter, fyne.TextStyle{}),
		onTap: onTap,
	}
	t.image.SetMinSize(fyne.NewSize(size, size))
	t.frame.StrokeWidth = 2
	if current {
		t.frame.StrokeColor = theme.PrimaryColor()
	}
	t.ExtendBaseWidget(t)
	return t
}

func (t *thumbTile) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(t.frame, container.NewPadded(t.image), t.label))
}

func (t *thumbTile) Tapped(*fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap(t.index)
	}
}

func (t *thumbTile) show(th thumbnail.Thumbnail) {
	switch {
	case th.Image != nil:
		t.image.Image = th.Image
	case th.Handle != nil:
		t.image.Resource = fyne.NewStaticResource(th.Name, th.Handle.Bytes())
	}
	t.label.Hide()
	t.image.Refresh()
}

func (t *thumbTile) fail() {
	t.label.SetText("!")
	t.label.Show()
}

// thumbBar renders the thumbnail strip as a horizontal row of tiles.
type thumbBar struct {
	box      *fyne.Container
	scroll   *container.Scroll
	size     float32
	onSelect func(int)

	mu      sync.Mutex
	tiles   map[int]*thumbTile
	current int
}

var _ thumbnail.Renderer = (*thumbBar)(nil)

func newThumbBar(size int, onSelect func(int)) *thumbBar {
	b := &thumbBar{
		box:      container.NewHBox(),
		size:     float32(size),
		onSelect: onSelect,
		tiles:    map[int]*thumbTile{},
		current:  -1,
	}
	b.scroll = container.NewHScroll(b.box)
	b.scroll.SetMinSize(fyne.NewSize(b.size, b.size+theme.Padding()*2))
	return b
}

func (b *thumbBar) Reset(start, end, current int) {
	b.mu.Lock()
	b.tiles = map[int]*thumbTile{}
	b.current = current
	objects := make([]fyne.CanvasObject, 0, max(end-start+1, 0))
	for i := start; i <= end; i++ {
		tile := newThumbTile(i, i == current, b.size, b.onSelect)
		b.tiles[i] = tile
		objects = append(objects, tile)
	}
	b.box.Objects = objects
	b.mu.Unlock()

	b.box.Refresh()
}

func (b *thumbBar) Place(th thumbnail.Thumbnail) {
	if tile := b.tile(th.Index); tile != nil {
		tile.show(th)
	}
}

func (b *thumbBar) Failed(index int, _ error) {
	if tile := b.tile(index); tile != nil {
		tile.fail()
	}
}

func (b *thumbBar) tile(index int) *thumbTile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tiles[index]
}

// Slots returns the indexes in the current window, in order.
func (b *thumbBar) Slots() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []int
	for _, obj := range b.box.Objects {
		if tile, ok := obj.(*thumbTile); ok {
			out = append(out, tile.index)
		}
	}
	return out
}
