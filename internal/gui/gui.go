//go:build !nogui
// +build !nogui

// Package gui is the desktop host: a fyne window around a viewer.Controller.
package gui

import (
	"context"
	"fmt"
	"path/filepath"

	"mangaview/internal/clipboard"
	"mangaview/internal/config"
	"mangaview/internal/errors"
	"mangaview/internal/log"
	"mangaview/internal/thumbnail"
	"mangaview/internal/viewer"
	"mangaview/internal/watch"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// App is the GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config
	cfgPath    string
	log        log.Sink

	controller *viewer.Controller
	page       *pageView
	thumbs     *thumbBar
	thumbArea  fyne.CanvasObject
	pageInfo   *widget.Label
	status     *widget.Label

	ctx          context.Context
	cancel       context.CancelFunc
	reloadCancel context.CancelFunc
}

// Run opens the window, loads path when given, and blocks until the window closes.
func Run(cfg *config.Config, cfgPath, path string) error {
	a := NewApp(cfg, cfgPath)
	if path != "" {
		if err := a.Open(path); err != nil {
			log.Warnf("Could not open %s: %v", path, err)
		}
	}
	a.Run()
	return nil
}

// IsAvailable reports whether the GUI is available in this build.
func IsAvailable() bool {
	return true
}

// NewApp creates a new GUI application
func NewApp(cfg *config.Config, cfgPath string) *App {
	return newApp(app.NewWithID("io.github.mangaview"), cfg, cfgPath, clipboard.NewSystem())
}

func newApp(fyneApp fyne.App, cfg *config.Config, cfgPath string, clip clipboard.Writer) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		fyneApp:  fyneApp,
		cfg:      cfg,
		cfgPath:  cfgPath,
		log:      log.LogWithFields(log.F("host", "gui")),
		page:     newPageView(),
		pageInfo: widget.NewLabel(""),
		status:   widget.NewLabel(""),
		ctx:      ctx,
		cancel:   cancel,
	}

	opts := []viewer.Option{
		viewer.WithConfig(cfg),
		viewer.WithClipboard(clip),
		viewer.WithLogger(a.log),
	}
	if cfg.Thumbnails.Enabled {
		a.thumbs = newThumbBar(cfg.Thumbnails.Size, a.jumpTo)
		strip := thumbnail.New(a.thumbs,
			thumbnail.WithWindow(cfg.Thumbnails.Before, cfg.Thumbnails.After),
			thumbnail.WithMode(thumbnail.ParseMode(cfg.Thumbnails.Mode)),
			thumbnail.WithSize(cfg.Thumbnails.Size),
			thumbnail.WithWorkers(cfg.Viewer.Workers),
			thumbnail.WithLogger(a.log),
		)
		opts = append(opts, viewer.WithThumbnails(strip))
	}
	a.controller = viewer.New(a.page, opts...)
	a.page.resolve = a.controller.Registry().Resolve

	a.mainWindow = a.fyneApp.NewWindow("mangaview")
	a.setupMainWindow()
	return a
}

// GetMainWindow returns the main window instance
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

// Controller exposes the viewer driving the window.
func (a *App) Controller() *viewer.Controller {
	return a.controller
}

// Run shows the window and starts the fyne event loop.
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

func (a *App) setupMainWindow() {
	a.mainWindow.Resize(fyne.NewSize(900, 1000))

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), a.showOpenDialog),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.MediaSkipPreviousIcon(), func() { a.navigate(viewer.KeyHome) }),
		widget.NewToolbarAction(theme.NavigateBackIcon(), func() { a.navigate(viewer.KeyLeft) }),
		widget.NewToolbarAction(theme.NavigateNextIcon(), func() { a.navigate(viewer.KeyRight) }),
		widget.NewToolbarAction(theme.MediaSkipNextIcon(), func() { a.navigate(viewer.KeyEnd) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCopyIcon(), a.copyPage),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.SettingsIcon(), a.showSettings),
	)

	bottom := []fyne.CanvasObject{}
	if a.thumbs != nil {
		a.thumbArea = a.thumbs.scroll
		a.thumbArea.Hide()
		bottom = append(bottom, a.thumbArea)
	}
	bottom = append(bottom, container.NewHBox(a.status, layout.NewSpacer(), a.pageInfo))

	a.page.onSecondary = a.showContextMenu
	a.page.onPointer = a.revealThumbnails

	a.mainWindow.SetContent(container.NewBorder(toolbar, container.NewVBox(bottom...), nil, nil, a.page))
	a.mainWindow.Canvas().SetOnTypedKey(a.onTypedKey)
	a.mainWindow.SetCloseIntercept(func() {
		a.Close()
		a.mainWindow.Close()
	})
}

// Open loads the archive at path, replacing the current one.
func (a *App) Open(path string) error {
	err := a.controller.SetFile(a.ctx, path)
	a.refresh(err)
	if err != nil {
		return err
	}
	a.mainWindow.SetTitle(fmt.Sprintf("mangaview - %s", filepath.Base(path)))
	if a.cfg.Watch.Enabled {
		a.watch(path)
	}
	return nil
}

func (a *App) showOpenDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.ShowError("Failed to open archive", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		go func() {
			if err := a.Open(path); err != nil {
				a.log.Warnf("open failed: %v", err)
			}
		}()
	}, a.mainWindow)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".zip"}))
	d.Show()
}

func (a *App) onTypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyLeft:
		a.navigate(viewer.KeyLeft)
	case fyne.KeyRight:
		a.navigate(viewer.KeyRight)
	case fyne.KeyHome:
		a.navigate(viewer.KeyHome)
	case fyne.KeyEnd:
		a.navigate(viewer.KeyEnd)
	}
}

// navigate runs the key off the UI goroutine; loads can be slow.
func (a *App) navigate(key string) {
	go func() {
		a.refresh(a.controller.HandleKey(a.ctx, key))
	}()
}

func (a *App) jumpTo(index int) {
	go func() {
		a.refresh(a.controller.ShowPage(a.ctx, index))
	}()
}

func (a *App) refresh(err error) {
	a.pageInfo.SetText(a.controller.PageInfo())
	st := a.controller.State()
	switch {
	case err != nil:
		a.status.SetText(errors.UserMessage(err))
	case st.Kind == viewer.Ready:
		a.status.SetText(st.Name)
	default:
		a.status.SetText(st.Message)
	}
}

func (a *App) showContextMenu(pos fyne.Position) {
	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Copy image", a.copyPage),
	)
	widget.ShowPopUpMenuAtPosition(menu, a.mainWindow.Canvas(), pos)
}

func (a *App) copyPage() {
	err := a.controller.HandleContextAction(a.ctx, viewer.ActionCopy)
	if err != nil {
		a.status.SetText(errors.UserMessage(err))
		a.ShowError("Copy failed", err)
		return
	}
	a.status.SetText("Page image copied to clipboard")
}

// revealThumbnails shows the thumbnail bar while the pointer is near the bottom edge.
func (a *App) revealThumbnails(y, height float32) {
	if a.thumbArea == nil {
		return
	}
	zone := a.thumbs.size + theme.Padding()*4
	if y >= height-zone {
		a.thumbArea.Show()
	} else {
		a.thumbArea.Hide()
	}
}

func (a *App) watch(path string) {
	if a.reloadCancel != nil {
		a.reloadCancel()
		a.reloadCancel = nil
	}
	w, err := watch.New(path, watch.WithLogger(a.log))
	if err != nil {
		a.log.Warnf("cannot watch archive: %v", err)
		return
	}
	r := watch.NewReloader(w, a.controller.Reload)
	r.SetCallback(func(_ watch.Change, err error) { a.refresh(err) })

	ctx, cancel := context.WithCancel(a.ctx)
	a.reloadCancel = cancel
	go func() {
		if err := r.Run(ctx); err != nil {
			a.log.Warnf("archive watcher stopped: %v", err)
		}
	}()
}

// Close stops watching and releases every page held by the window.
func (a *App) Close() {
	if a.reloadCancel != nil {
		a.reloadCancel()
	}
	a.cancel()
	a.controller.Close()
}

// ShowError displays an error dialog
func (a *App) ShowError(title string, err error) {
	if err == nil {
		return
	}
	a.log.Errorf("%s: %v", title, err)
	dialog.ShowError(err, a.mainWindow)
}

// ShowInfo displays an information dialog
func (a *App) ShowInfo(message string) {
	dialog.ShowInformation("Information", message, a.mainWindow)
}
