package components

import (
	"fmt"
	"strings"

	"mangaview/internal/imaging"
	"mangaview/internal/tui/styles"

	"github.com/dustin/go-humanize"
)

// PagePanel describes the page on screen. Terminals cannot draw the image
// itself, so the panel shows what the page is.
type PagePanel struct {
	Name    string
	Size    int
	Format  string
	MIME    string
	Width   int
	Height  int
	Message string
}

// DescribePage fills a panel from the page bytes.
func DescribePage(name string, data []byte) PagePanel {
	p := PagePanel{Name: name, Size: len(data), MIME: imaging.Sniff(data)}
	cfg, format, err := imaging.DecodeConfig(data)
	if err != nil {
		p.Format = "unknown"
		return p
	}
	p.Format = format
	p.Width, p.Height = cfg.Width, cfg.Height
	return p
}

func (p PagePanel) View(st styles.Styles, pageInfo string) string {
	var sb strings.Builder
	if p.Message != "" {
		sb.WriteString(st.Error.Render(p.Message))
		return st.Page.Render(sb.String())
	}
	if p.Name == "" {
		sb.WriteString(st.Muted.Render("No page"))
		return st.Page.Render(sb.String())
	}

	sb.WriteString(st.Selected.Render(p.Name))
	if pageInfo != "" {
		sb.WriteString("  " + st.Muted.Render(pageInfo))
	}
	sb.WriteString("\n\n")
	if p.Width > 0 {
		sb.WriteString(fmt.Sprintf("%s  %dx%d  %s", strings.ToUpper(p.Format), p.Width, p.Height, humanize.Bytes(uint64(p.Size))))
	} else {
		sb.WriteString(fmt.Sprintf("%s (%s)  %s", p.Format, p.MIME, humanize.Bytes(uint64(p.Size))))
	}
	return st.Page.Render(sb.String())
}
