package ui

import (
	"errors"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
	"github.com/zalando/go-keyring"
)

// settingsWidgets keeps the inputs read back on save.
type settingsWidgets struct {
	langSelect    *widget.Select
	modeSelect    *widget.Select
	urlEntry      *widget.Entry
	userEntry     *widget.Entry
	passEntry     *widget.Entry
	pathEntry     *widget.Entry
	entryInterval *FilteredEntry
	entryPort     *FilteredEntry
	checkReminder *widget.Check
	entryDays     *FilteredEntry
	entryTime     *FilteredEntry
}

// ShowSettingsWindow opens the preferences window, or focuses it.
func (app *ReminderApp) ShowSettingsWindow() {
	if app.Window != nil {
		slog.Debug(config.MsgWinFocus, config.LogKeyComponent, config.CompUISet)
		app.Window.RequestFocus()
		return
	}

	slog.Info(config.MsgSettingsOpen, config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window = w

	sw := &settingsWidgets{}

	var refreshLayout func()
	onLayoutChange := func() {
		if refreshLayout != nil {
			refreshLayout()
		}
	}

	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	sw.modeSelect = widget.NewSelect([]string{
		app.GetMsg(config.TKeyModeCardDAV),
		app.GetMsg(config.TKeyModeLocal),
	}, nil)

	sw.urlEntry = widget.NewEntry()
	sw.urlEntry.SetText(app.Preferences.String(config.PrefCardDAVURL))
	sw.urlEntry.PlaceHolder = config.PlaceholderURL

	sw.userEntry = widget.NewEntry()
	sw.userEntry.SetText(app.Preferences.String(config.PrefUsername))

	sw.passEntry = widget.NewPasswordEntry()
	if user := sw.userEntry.Text; user != "" {
		if pwd, err := keyring.Get(config.KeyringService, user); err == nil {
			sw.passEntry.SetText(pwd)
		}
	}

	sw.pathEntry = widget.NewEntry()
	sw.pathEntry.SetText(app.Preferences.String(config.PrefLocalPath))

	sourceCard := app.buildSourceCard(w, sw, onLayoutChange)
	generalCard := app.buildGeneralCard(sw)

	current, err := app.Engine.Settings(app.Ctx)
	if err != nil {
		slog.Warn(config.MsgRemSaveFailed, config.LogKeyComponent, config.CompUISet, config.LogKeyError, err)
		current = model.DefaultSettings()
	}
	notifCard := app.buildNotifCard(sw, current, onLayoutChange)

	saveAction := func() {
		if err := sw.entryPort.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		reminders, err := app.readReminderSettings(sw)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(sw, reminders)
		w.Close()
	}

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), saveAction)
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	footerLabel := widget.NewLabel(app.localize(config.TKeyLblFooter, map[string]any{"Version": config.Version}, nil))
	footerLabel.Alignment = fyne.TextAlignCenter
	footerLabel.TextStyle = fyne.TextStyle{Italic: true}

	paddedContent := container.NewPadded(container.NewVBox(
		sourceCard,
		generalCard,
		notifCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footerLabel,
	))

	refreshLayout = func() {
		paddedContent.Refresh()
		minSize := paddedContent.MinSize()
		w.Resize(fyne.NewSize(config.SettingsWindowWidth, minSize.Height))
	}

	w.SetContent(paddedContent)
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.Window = nil })

	refreshLayout()
	w.Show()
}

func (app *ReminderApp) buildSourceCard(w fyne.Window, sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	browseBtn := widget.NewButton(app.GetMsg(config.TKeyBtnBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				sw.pathEntry.SetText(r.URI().Path())
				_ = r.Close()
			}
		}, w)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
		d.Show()
	})

	itemURL := widget.NewFormItem(app.GetMsg(config.TKeyLblURL), sw.urlEntry)
	itemURL.HintText = app.GetMsg(config.TKeyHelpURL)
	webForm := widget.NewForm(
		itemURL,
		widget.NewFormItem(app.GetMsg(config.TKeyLblUser), sw.userEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPass), sw.passEntry),
	)
	localForm := container.NewBorder(nil, nil, nil, browseBtn, sw.pathEntry)

	applyMode := func(mode string) {
		if mode == app.GetMsg(config.TKeyModeLocal) {
			webForm.Hide()
			localForm.Show()
		} else {
			webForm.Show()
			localForm.Hide()
		}
	}
	sw.modeSelect.OnChanged = func(mode string) {
		applyMode(mode)
		onLayoutChange()
	}

	if app.Preferences.String(config.PrefSourceMode) == config.SourceModeLocal {
		sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeLocal))
	} else {
		sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeCardDAV))
	}
	applyMode(sw.modeSelect.Selected)

	return widget.NewCard(app.GetMsg(config.TKeyLblSource), "", container.NewVBox(sw.modeSelect, webForm, localForm))
}

func (app *ReminderApp) buildGeneralCard(sw *settingsWidgets) *widget.Card {
	// Empty or zero disables the contacts sync.
	sw.entryInterval = NewNumericalEntry()
	sw.entryInterval.SetText(strconv.Itoa(app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultSyncMin)))

	sw.entryPort = NewNumericalEntry()
	sw.entryPort.SetText(app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	sw.entryPort.Validator = app.validatePort

	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)

	widInterval := container.NewBorder(nil, nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblMinutes)), sw.entryInterval)
	itemInterval := widget.NewFormItem(app.GetMsg(config.TKeyLblSync), widInterval)
	itemInterval.HintText = app.GetMsg(config.TKeyHelpInterval)

	itemPort := widget.NewFormItem(app.GetMsg(config.TKeyLblPort), sw.entryPort)
	itemPort.HintText = app.GetMsg(config.TKeyHelpPort)

	return widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "", widget.NewForm(itemLang, itemInterval, itemPort))
}

// buildNotifCard shows the reminder schedule stored by the engine.
func (app *ReminderApp) buildNotifCard(sw *settingsWidgets, current model.Settings, onLayoutChange func()) *widget.Card {
	sw.checkReminder = widget.NewCheck(app.GetMsg(config.TKeyLblEnableRem), nil)
	sw.checkReminder.Checked = current.Enabled

	sw.entryDays = NewDaysListEntry()
	sw.entryDays.PlaceHolder = config.PlaceholderDays
	sw.entryDays.SetText(formatDaysList(current.DaysBefore))

	sw.entryTime = NewTimeEntry()
	sw.entryTime.PlaceHolder = config.PlaceholderTime
	sw.entryTime.SetText(current.Time.String())

	itemDays := widget.NewFormItem(app.GetMsg(config.TKeyLblDaysBefore), sw.entryDays)
	itemDays.HintText = app.GetMsg(config.TKeyHelpDaysBefore)
	itemTime := widget.NewFormItem(app.GetMsg(config.TKeyLblTime), sw.entryTime)
	itemTime.HintText = app.GetMsg(config.TKeyHelpTime)
	form := widget.NewForm(itemDays, itemTime)

	sw.checkReminder.OnChanged = func(b bool) {
		if b {
			form.Show()
		} else {
			form.Hide()
		}
		onLayoutChange()
	}
	if !sw.checkReminder.Checked {
		form.Hide()
	}

	return widget.NewCard(app.GetMsg(config.TKeyLblNotif), "", container.NewVBox(sw.checkReminder, form))
}

func (app *ReminderApp) validatePort(s string) error {
	if s == "" {
		return errors.New(app.GetMsg(config.TKeyErrPortReq))
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return errors.New(app.GetMsg(config.TKeyErrPortNum))
	}
	if port < config.MinPort || port > config.MaxPort {
		return errors.New(app.GetMsg(config.TKeyErrPortRange))
	}
	return nil
}

// readReminderSettings parses and validates the reminder card. Errors carry
// a localized message ready for a dialog.
func (app *ReminderApp) readReminderSettings(sw *settingsWidgets) (model.Settings, error) {
	days, err := parseDaysList(sw.entryDays.Text)
	if err != nil {
		return model.Settings{}, errors.New(app.GetMsg(config.TKeyErrDays))
	}
	tod, err := parseTimeOfDay(sw.entryTime.Text)
	if err != nil {
		return model.Settings{}, errors.New(app.GetMsg(config.TKeyErrTime))
	}

	s := model.Settings{DaysBefore: days, Time: tod, Enabled: sw.checkReminder.Checked}
	if err := s.Validate(); err != nil {
		slog.Debug(config.MsgRemSaveFailed, config.LogKeyComponent, config.CompUISet, config.LogKeyError, err)
		if tod.Hours < 0 || tod.Hours > config.MaxHour || tod.Minutes < 0 || tod.Minutes > config.MaxMinute {
			return model.Settings{}, errors.New(app.GetMsg(config.TKeyErrTime))
		}
		return model.Settings{}, errors.New(app.GetMsg(config.TKeyErrDays))
	}
	return s, nil
}

// saveSettings stores the preferences, then hands the reminder schedule to
// the engine off the UI goroutine.
func (app *ReminderApp) saveSettings(sw *settingsWidgets, reminders model.Settings) {
	slog.Info(config.MsgSettingsSaving, config.LogKeyComponent, config.CompUISet)

	modeMap := map[string]string{
		app.GetMsg(config.TKeyModeCardDAV): config.SourceModeWeb,
		app.GetMsg(config.TKeyModeLocal):   config.SourceModeLocal,
	}

	app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)
	app.Preferences.SetString(config.PrefSourceMode, modeMap[sw.modeSelect.Selected])
	app.Preferences.SetString(config.PrefCardDAVURL, sw.urlEntry.Text)
	app.Preferences.SetString(config.PrefUsername, sw.userEntry.Text)
	app.Preferences.SetString(config.PrefLocalPath, sw.pathEntry.Text)

	if sw.userEntry.Text != "" && sw.passEntry.Text != "" {
		if err := keyring.Set(config.KeyringService, sw.userEntry.Text, sw.passEntry.Text); err != nil {
			slog.Error(config.MsgKeyringFail, config.LogKeyError, err, config.LogKeyComponent, config.CompUISet)
		}
	}

	interval := config.DisabledInterval
	if i, err := strconv.Atoi(sw.entryInterval.Text); err == nil && i > 0 {
		interval = i
	}
	app.Preferences.SetInt(config.PrefInterval, interval)
	if interval == config.DisabledInterval {
		slog.Info(config.MsgSyncDisabled, config.LogKeyComponent, config.CompUISet)
	}

	app.Preferences.SetString(config.PrefServerPort, sw.entryPort.Text)

	app.UpdateLocalizer()
	// Already armed reminders keep their text until the next rebuild.
	app.RefreshTrayMenu()

	go app.applyReminderSettings(reminders)
}

func (app *ReminderApp) applyReminderSettings(reminders model.Settings) {
	if err := app.Engine.UpdateSettings(app.Ctx, reminders); err != nil {
		slog.Error(config.MsgRemSaveFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUISet)
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifRemError)))
		return
	}
	app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifRemSaved)))
	app.Refresh(app.Ctx, config.TriggerSettings)
}
