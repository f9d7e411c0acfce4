package common

import (
	"mangaview/internal/tui/components"
	"mangaview/internal/tui/styles"
)

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Title() string
	Panel() components.PagePanel
	PageInfo() string
	Thumbs() *components.ThumbStrip
	Status() *components.StatusBar
	HelpView() string
	ShowHelp() bool
	Styles() styles.Styles
}
