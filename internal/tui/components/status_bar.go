package components

import (
	"mangaview/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusBar shows a one-line message, with a spinner while a page loads.
type StatusBar struct {
	text    string
	isError bool
	style   lipgloss.Style
	errors  lipgloss.Style
	spinner spinner.Model
	loading bool
}

func NewStatusBar(st styles.Styles) *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = st.Help

	return &StatusBar{
		style:   st.Help,
		errors:  st.Error,
		spinner: s,
	}
}

func (s *StatusBar) SetLoading(loading bool) {
	s.loading = loading
}

func (s *StatusBar) Loading() bool {
	return s.loading
}

func (s *StatusBar) SetText(text string) {
	s.text = text
	s.isError = false
}

func (s *StatusBar) SetError(text string) {
	s.text = text
	s.isError = true
}

func (s *StatusBar) Text() string {
	return s.text
}

// Tick starts the spinner animation.
func (s *StatusBar) Tick() tea.Cmd {
	return s.spinner.Tick
}

func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if s.loading {
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (s *StatusBar) View() string {
	if s.text == "" && !s.loading {
		return ""
	}

	style := s.style
	if s.isError {
		style = s.errors
	}
	if s.loading {
		return style.Render(s.spinner.View() + " " + s.text)
	}
	return style.Render(s.text)
}
