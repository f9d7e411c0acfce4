package tui

import (
	"fmt"
	"image/color"
	"testing"
	"time"

	"mangaview/internal/clipboard"
	"mangaview/internal/config"
	"mangaview/internal/tui/messages"
	"mangaview/internal/viewer"
	"mangaview/pkg/testutils"

	alsrt "github.com/alecthomas/assert"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func writeBook(t *testing.T, pages int) string {
	t.Helper()
	var entries []testutils.Entry
	for i := 0; i < pages; i++ {
		entries = append(entries, testutils.Entry{
			Name: fmt.Sprintf("p%02d.png", i+1),
			Data: testutils.PNG(t, 20, 30, color.White),
		})
	}
	return testutils.WriteZip(t, t.TempDir(), "book.zip", entries...)
}

// run executes cmd and feeds the page, copy and reload results back into the
// model on the test goroutine. Spinner ticks and waits that never resolve are
// dropped after a second.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	pending := []tea.Cmd{cmd}
	for len(pending) > 0 {
		results := make(chan tea.Msg, len(pending))
		for _, c := range pending {
			go func(c tea.Cmd) { results <- c() }(c)
		}
		n := len(pending)
		pending = nil
		timeout := time.After(time.Second)

	collect:
		for i := 0; i < n; i++ {
			select {
			case msg := <-results:
				switch msg := msg.(type) {
				case tea.BatchMsg:
					for _, c := range msg {
						if c != nil {
							pending = append(pending, c)
						}
					}
				case messages.PageShownMsg, messages.CopyDoneMsg:
					if _, next := m.Update(msg); next != nil {
						pending = append(pending, next)
					}
				case messages.ReloadedMsg:
					m.Update(msg)
				}
			case <-timeout:
				break collect
			}
		}
	}
}

func press(t *testing.T, m *Model, k tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(k)
	run(t, m, cmd)
}

func newModel(t *testing.T, cfg *config.Config, path string) (*Model, *clipboard.Memory) {
	t.Helper()
	clip := &clipboard.Memory{}
	m := New(cfg, path, clip)
	t.Cleanup(m.Close)
	return m, clip
}

func noThumbs() *config.Config {
	cfg := config.NewTestConfig()
	cfg.Thumbnails.Enabled = false
	return cfg
}

func TestModelOpensArchive(t *testing.T) {
	m, _ := newModel(t, noThumbs(), writeBook(t, 3))
	run(t, m, m.Init())

	alsrt.Equal(t, viewer.Ready, m.Controller().State().Kind)
	alsrt.Equal(t, "p01.png", m.Panel().Name)
	alsrt.Equal(t, 20, m.Panel().Width)
	alsrt.Equal(t, "1 / 3", m.PageInfo())
	alsrt.False(t, m.Status().Loading())

	view := testutils.StripANSI(m.View())
	alsrt.Contains(t, view, "mangaview: book.zip")
	alsrt.Contains(t, view, "p01.png")
	alsrt.Contains(t, view, "PNG  20x30")
}

func TestModelNavigation(t *testing.T) {
	m, _ := newModel(t, noThumbs(), writeBook(t, 3))
	run(t, m, m.Init())

	press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	alsrt.Equal(t, 1, m.Controller().State().Index)
	alsrt.Equal(t, "p02.png", m.Status().Text())

	press(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	alsrt.Equal(t, 2, m.Controller().State().Index)

	press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	alsrt.Equal(t, 2, m.Controller().State().Index, "next on the last page stays put")

	press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	alsrt.Equal(t, 1, m.Controller().State().Index)

	press(t, m, tea.KeyMsg{Type: tea.KeyHome})
	alsrt.Equal(t, 0, m.Controller().State().Index)
	alsrt.Equal(t, "p01.png", m.Panel().Name)
}

func TestModelEmptyArchive(t *testing.T) {
	path := testutils.WriteZip(t, t.TempDir(), "empty.zip", testutils.Files("readme.txt")...)
	m, _ := newModel(t, noThumbs(), path)
	run(t, m, m.Init())

	alsrt.Equal(t, viewer.Error, m.Controller().State().Kind)
	alsrt.Equal(t, "no images found", m.Panel().Message)
	alsrt.Equal(t, "no images found", m.Status().Text())
	alsrt.Contains(t, testutils.StripANSI(m.View()), "no images found")
}

func TestModelCopy(t *testing.T) {
	m, clip := newModel(t, noThumbs(), writeBook(t, 2))
	run(t, m, m.Init())

	press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	alsrt.Equal(t, 1, clip.Writes())
	alsrt.Equal(t, "Copied page 1 to clipboard", m.Status().Text())
}

func TestModelCopyFailure(t *testing.T) {
	clip := &clipboard.Memory{Err: fmt.Errorf("denied")}
	m := New(noThumbs(), writeBook(t, 1), clip)
	t.Cleanup(m.Close)
	run(t, m, m.Init())

	press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	alsrt.Contains(t, m.Status().Text(), "Copy failed")
}

func TestModelReload(t *testing.T) {
	path := writeBook(t, 2)
	m, _ := newModel(t, noThumbs(), path)
	run(t, m, m.Init())
	press(t, m, tea.KeyMsg{Type: tea.KeyEnd})

	press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	alsrt.Equal(t, 1, m.Controller().State().Index)
	alsrt.Equal(t, "Reloaded book.zip", m.Status().Text())
}

func TestModelHelpToggle(t *testing.T) {
	m, _ := newModel(t, noThumbs(), writeBook(t, 1))
	alsrt.False(t, m.ShowHelp())

	press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	alsrt.True(t, m.ShowHelp())
	alsrt.Contains(t, testutils.StripANSI(m.View()), "reload archive")
}

func TestModelQuitReleasesPages(t *testing.T) {
	m, _ := newModel(t, noThumbs(), writeBook(t, 2))
	run(t, m, m.Init())
	reg := m.Controller().Registry()
	require.Equal(t, 1, reg.Live())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	alsrt.Equal(t, tea.QuitMsg{}, cmd())
	alsrt.Equal(t, 0, reg.Live())
}

func TestModelThumbnails(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Thumbnails.Before = 1
	cfg.Thumbnails.After = 1
	m, _ := newModel(t, cfg, writeBook(t, 5))
	run(t, m, m.Init())
	press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	require.Eventually(t, func() bool {
		start, end := m.Thumbs().Window()
		return start == 0 && end == 2 && m.Thumbs().Loaded() == 3
	}, 2*time.Second, 10*time.Millisecond)
	alsrt.Contains(t, testutils.StripANSI(m.View()), ">2<")
}
