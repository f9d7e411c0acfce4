package styles

import (
	"mangaview/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the rendered look of the terminal reader.
type Styles struct {
	App      lipgloss.Style
	Title    lipgloss.Style
	Page     lipgloss.Style
	Current  lipgloss.Style
	Thumb    lipgloss.Style
	Failed   lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
}

// Theme is the style set used when no configuration is given.
var Theme = FromConfig(config.New())

// FromConfig builds styles from the theme section of cfg.
func FromConfig(cfg *config.Config) Styles {
	primary := lipgloss.Color(cfg.Theme.Primary)
	current := lipgloss.Color(cfg.Theme.Current)
	errColor := lipgloss.Color(cfg.Theme.Error)
	muted := lipgloss.Color(cfg.Theme.Muted)
	border := lipgloss.Color(cfg.Theme.Border)

	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1),
		Page: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2),
		Current: lipgloss.NewStyle().
			Foreground(current).
			Bold(true),
		Thumb: lipgloss.NewStyle().
			Foreground(muted),
		Failed: lipgloss.NewStyle().
			Foreground(errColor),
		Error: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(muted),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Selected: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
	}
}
