//go:build !nogui
// +build !nogui

package gui

import (
	"fmt"
	"strconv"

	"mangaview/internal/config"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// settingsForm edits a copy of the configuration; nothing changes until Save.
type settingsForm struct {
	draft config.Config

	cacheCheck  *widget.Check
	thumbsCheck *widget.Check
	watchCheck  *widget.Check
	modeSelect  *widget.Select
	themeSelect *widget.Select
	beforeEntry *widget.Entry
	afterEntry  *widget.Entry
}

func newSettingsForm(cfg *config.Config) *settingsForm {
	f := &settingsForm{draft: *cfg}

	f.cacheCheck = widget.NewCheck("Keep archive decoded between pages", func(v bool) {
		f.draft.Viewer.CacheArchive = v
	})
	f.cacheCheck.SetChecked(cfg.Viewer.CacheArchive)

	f.thumbsCheck = widget.NewCheck("Show thumbnail bar", func(v bool) {
		f.draft.Thumbnails.Enabled = v
	})
	f.thumbsCheck.SetChecked(cfg.Thumbnails.Enabled)

	f.watchCheck = widget.NewCheck("Reload archive when it changes on disk", func(v bool) {
		f.draft.Watch.Enabled = v
	})
	f.watchCheck.SetChecked(cfg.Watch.Enabled)

	f.modeSelect = widget.NewSelect([]string{config.ThumbnailModeBitmap, config.ThumbnailModeReference}, func(v string) {
		f.draft.Thumbnails.Mode = v
	})
	f.modeSelect.SetSelected(cfg.Thumbnails.Mode)

	f.themeSelect = widget.NewSelect(config.ListThemes(), func(v string) {
		f.draft.ApplyTheme(v)
	})
	f.themeSelect.SetSelected(cfg.Theme.Name)

	f.beforeEntry = widget.NewEntry()
	f.beforeEntry.SetText(strconv.Itoa(cfg.Thumbnails.Before))
	f.afterEntry = widget.NewEntry()
	f.afterEntry.SetText(strconv.Itoa(cfg.Thumbnails.After))
	return f
}

// apply validates the form and returns the new configuration.
func (f *settingsForm) apply() (*config.Config, error) {
	before, err := strconv.Atoi(f.beforeEntry.Text)
	if err != nil {
		return nil, fmt.Errorf("pages before: %w", err)
	}
	after, err := strconv.Atoi(f.afterEntry.Text)
	if err != nil {
		return nil, fmt.Errorf("pages after: %w", err)
	}
	cfg := f.draft
	cfg.Thumbnails.Before = before
	cfg.Thumbnails.After = after
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (f *settingsForm) content() fyne.CanvasObject {
	viewerCard := widget.NewCard("Viewer", "", container.NewVBox(f.cacheCheck, f.watchCheck))
	thumbForm := widget.NewForm(
		widget.NewFormItem("Mode", f.modeSelect),
		widget.NewFormItem("Pages before", f.beforeEntry),
		widget.NewFormItem("Pages after", f.afterEntry),
	)
	thumbCard := widget.NewCard("Thumbnails", "", container.NewVBox(f.thumbsCheck, thumbForm))
	themeCard := widget.NewCard("Theme", "Used by the terminal reader", f.themeSelect)
	return container.NewVBox(viewerCard, thumbCard, themeCard,
		widget.NewLabel("Changes take effect the next time mangaview starts."))
}

// showSettings opens the settings dialog and saves to the config file on confirm.
func (a *App) showSettings() {
	form := newSettingsForm(a.cfg)
	d := dialog.NewCustomConfirm("Settings", "Save", "Cancel", form.content(), func(save bool) {
		if !save {
			return
		}
		cfg, err := form.apply()
		if err != nil {
			a.ShowError("Invalid settings", err)
			return
		}
		if a.cfgPath == "" {
			a.ShowInfo("No configuration file in use; settings were not saved.")
			return
		}
		if err := config.SaveConfig(cfg, a.cfgPath); err != nil {
			a.ShowError("Failed to save configuration", err)
			return
		}
		*a.cfg = *cfg
		a.status.SetText("Settings saved")
	}, a.mainWindow)
	d.Show()
}
