// Package tui is the terminal host: a bubbletea program around a
// viewer.Controller.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"mangaview/internal/clipboard"
	"mangaview/internal/config"
	"mangaview/internal/errors"
	"mangaview/internal/log"
	"mangaview/internal/resource"
	"mangaview/internal/thumbnail"
	"mangaview/internal/tui/components"
	"mangaview/internal/tui/messages"
	"mangaview/internal/tui/styles"
	"mangaview/internal/tui/views"
	"mangaview/internal/viewer"
	"mangaview/internal/watch"
	"mangaview/pkg/types"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// surface keeps a description of the assigned page for rendering.
type surface struct {
	mu    sync.Mutex
	panel components.PagePanel
}

func (s *surface) AssignImage(h *resource.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = components.DescribePage(h.Name(), h.Bytes())
}

func (s *surface) ClearImage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = components.PagePanel{Message: message}
}

func (s *surface) get() components.PagePanel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel
}

type Model struct {
	cfg        *config.Config
	path       string
	ctx        context.Context
	cancel     context.CancelFunc
	controller *viewer.Controller
	surface    *surface
	thumbs     *components.ThumbStrip
	status     *components.StatusBar
	keys       types.KeyMap
	help       help.Model
	styles     styles.Styles
	showHelp   bool
	reloads    chan error
	log        log.Sink
}

// New creates the reader for the archive at path.
func New(cfg *config.Config, path string, clip clipboard.Writer) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	st := styles.FromConfig(cfg)
	m := &Model{
		cfg:     cfg,
		path:    path,
		ctx:     ctx,
		cancel:  cancel,
		surface: &surface{},
		status:  components.NewStatusBar(st),
		keys:    types.DefaultKeyMap(),
		help:    help.New(),
		styles:  st,
		reloads: make(chan error, 1),
		log:     log.LogWithFields(log.F("host", "tui")),
	}

	opts := []viewer.Option{
		viewer.WithConfig(cfg),
		viewer.WithClipboard(clip),
		viewer.WithLogger(m.log),
	}
	if cfg.Thumbnails.Enabled {
		m.thumbs = components.NewThumbStrip()
		opts = append(opts, viewer.WithThumbnails(thumbnail.New(m.thumbs,
			thumbnail.WithWindow(cfg.Thumbnails.Before, cfg.Thumbnails.After),
			thumbnail.WithMode(thumbnail.ParseMode(cfg.Thumbnails.Mode)),
			thumbnail.WithSize(cfg.Thumbnails.Size),
			thumbnail.WithWorkers(cfg.Viewer.Workers),
			thumbnail.WithLogger(m.log),
		)))
	}
	m.controller = viewer.New(m.surface, opts...)
	return m
}

// Run starts the program and blocks until the user quits. The alt screen owns
// stdout, so logs go to mangaview-tui.log in the temp directory.
func Run(cfg *config.Config, path string) error {
	f, err := os.OpenFile(filepath.Join(os.TempDir(), "mangaview-tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(io.Discard)
	} else {
		defer f.Close()
		log.SetOutput(f)
	}

	m := New(cfg, path, clipboard.NewSystem())
	defer m.Close()
	if cfg.Watch.Enabled {
		if err := m.watch(); err != nil {
			m.log.Warnf("cannot watch archive: %v", err)
		}
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	m.status.SetText("Opening " + filepath.Base(m.path))
	m.status.SetLoading(true)
	cmds := []tea.Cmd{m.status.Tick(), m.open(), m.waitForReload()}
	if m.thumbs != nil {
		cmds = append(cmds, m.waitForThumbs())
	}
	return tea.Batch(cmds...)
}

func (m *Model) open() tea.Cmd {
	return func() tea.Msg {
		return messages.PageShownMsg{Err: m.controller.SetFile(m.ctx, m.path)}
	}
}

func (m *Model) navigate(key string) tea.Cmd {
	return func() tea.Msg {
		return messages.PageShownMsg{Err: m.controller.HandleKey(m.ctx, key)}
	}
}

func (m *Model) copyPage() tea.Cmd {
	page := m.controller.State().Index
	return func() tea.Msg {
		return messages.CopyDoneMsg{Page: page, Err: m.controller.HandleContextAction(m.ctx, viewer.ActionCopy)}
	}
}

func (m *Model) reload() tea.Cmd {
	return func() tea.Msg {
		return messages.ReloadedMsg{Err: m.controller.Reload(m.ctx)}
	}
}

func (m *Model) waitForThumbs() tea.Cmd {
	changes := m.thumbs.Changes()
	return func() tea.Msg {
		<-changes
		return messages.ThumbsChangedMsg{}
	}
}

func (m *Model) waitForReload() tea.Cmd {
	return func() tea.Msg {
		select {
		case err := <-m.reloads:
			return messages.ReloadedMsg{Err: err}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// watch reloads the archive when the file changes on disk.
func (m *Model) watch() error {
	w, err := watch.New(m.path, watch.WithLogger(m.log))
	if err != nil {
		return err
	}
	r := watch.NewReloader(w, m.controller.Reload)
	r.SetCallback(func(_ watch.Change, err error) {
		select {
		case m.reloads <- err:
		default:
		}
	})
	go func() {
		if err := r.Run(m.ctx); err != nil {
			m.log.Warnf("archive watcher stopped: %v", err)
		}
	}()
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case messages.PageShownMsg:
		m.status.SetLoading(false)
		m.showResult(msg.Err)
		return m, nil

	case messages.CopyDoneMsg:
		if msg.Err != nil {
			m.status.SetError("Copy failed: " + errors.UserMessage(msg.Err))
		} else {
			m.status.SetText(fmt.Sprintf("Copied page %d to clipboard", msg.Page+1))
		}
		return m, nil

	case messages.ReloadedMsg:
		m.status.SetLoading(false)
		m.showResult(msg.Err)
		if msg.Err == nil {
			m.status.SetText("Reloaded " + filepath.Base(m.path))
		}
		return m, m.waitForReload()

	case messages.ThumbsChangedMsg:
		return m, m.waitForThumbs()
	}

	return m, m.status.Update(msg)
}

func (m *Model) showResult(err error) {
	if err != nil {
		m.status.SetError(errors.UserMessage(err))
		return
	}
	st := m.controller.State()
	if st.Kind == viewer.Error {
		m.status.SetError(st.Message)
		return
	}
	m.status.SetText(st.Name)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m, m.startLoading(m.navigate(viewer.KeyRight))
	case key.Matches(msg, m.keys.Prev):
		return m, m.startLoading(m.navigate(viewer.KeyLeft))
	case key.Matches(msg, m.keys.First):
		return m, m.startLoading(m.navigate(viewer.KeyHome))
	case key.Matches(msg, m.keys.Last):
		return m, m.startLoading(m.navigate(viewer.KeyEnd))
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyPage()
	case key.Matches(msg, m.keys.Reload):
		m.status.SetText("Reloading " + filepath.Base(m.path))
		return m, m.startLoading(m.reload())
	}
	return m, nil
}

func (m *Model) startLoading(cmd tea.Cmd) tea.Cmd {
	wasLoading := m.status.Loading()
	m.status.SetLoading(true)
	if wasLoading {
		return cmd
	}
	return tea.Batch(m.status.Tick(), cmd)
}

// Close stops the watcher and releases every page.
func (m *Model) Close() {
	m.cancel()
	m.controller.Close()
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Title names the open archive.
func (m *Model) Title() string {
	return "mangaview: " + filepath.Base(m.path)
}

func (m *Model) Panel() components.PagePanel { return m.surface.get() }

func (m *Model) PageInfo() string { return m.controller.PageInfo() }

func (m *Model) Thumbs() *components.ThumbStrip { return m.thumbs }

func (m *Model) Status() *components.StatusBar { return m.status }

func (m *Model) ShowHelp() bool { return m.showHelp }

func (m *Model) Styles() styles.Styles { return m.styles }

func (m *Model) HelpView() string {
	return m.help.View(m.keys)
}

// Controller exposes the viewer behind the model.
func (m *Model) Controller() *viewer.Controller { return m.controller }
