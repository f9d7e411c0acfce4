package views

import (
	"strings"

	"mangaview/internal/tui/common"
)

// RenderMainView draws the title, the page panel, the thumbnail markers,
// the status line and the key help.
func RenderMainView(m common.ModelReader) string {
	st := m.Styles()
	var sb strings.Builder

	sb.WriteString(st.Title.Render(m.Title()))
	sb.WriteString("\n")
	sb.WriteString(m.Panel().View(st, m.PageInfo()))
	sb.WriteString("\n")

	if m.Thumbs() != nil {
		if strip := m.Thumbs().View(st); strip != "" {
			sb.WriteString(strip + "\n")
		}
	}
	if status := m.Status().View(); status != "" {
		sb.WriteString(status + "\n")
	}

	sb.WriteString("\n" + m.HelpView())
	return st.App.Render(sb.String())
}
