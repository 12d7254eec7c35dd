package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/birthday-reminder/internal/birthday"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/contacts"
	"github.com/tartampluch/birthday-reminder/internal/engine"
	"github.com/tartampluch/birthday-reminder/internal/feed"
	"github.com/tartampluch/birthday-reminder/internal/lifecycle"
	"github.com/tartampluch/birthday-reminder/internal/model"
	"github.com/tartampluch/birthday-reminder/internal/server"
	"github.com/zalando/go-keyring"
)

// ReminderEngine is the part of the scheduler the UI talks to.
type ReminderEngine interface {
	Records(ctx context.Context) ([]model.NotificationRecord, error)
	Settings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, settings model.Settings) error
	SetMessageFormat(fn engine.MessageFunc)
}

// Lifecycle routes every person change through the reminder triggers.
type Lifecycle interface {
	CreatePerson(ctx context.Context, p model.Person) (model.Person, error)
	UpdatePerson(ctx context.Context, p model.Person) error
	DeletePerson(ctx context.Context, id string) error
	SyncContacts(ctx context.Context, src contacts.Source) (lifecycle.SyncResult, error)
	Launch(ctx context.Context)
	Foreground(ctx context.Context)
}

// PersonLister reads the person store.
type PersonLister interface {
	List(ctx context.Context) ([]model.Person, error)
}

// Deps are the collaborators built by main.
type Deps struct {
	Engine    ReminderEngine
	Lifecycle Lifecycle
	People    PersonLister
	Server    *server.FeedServer
}

// ReminderApp holds the UI state, preferences and background loops.
type ReminderApp struct {
	App            fyne.App
	Window         fyne.Window // settings
	peopleWindow   fyne.Window
	Preferences    fyne.Preferences
	I18nBundle     *i18n.Bundle
	// localizer is swapped by the settings window while the engine formats reminders.
	localizer      atomic.Pointer[i18n.Localizer]
	Ctx            context.Context
	Engine         ReminderEngine
	Lifecycle      Lifecycle
	People         PersonLister
	Server         *server.FeedServer
	Clock          engine.Clock
	Tray           desktop.App
	Menu           *fyne.Menu
	TrayStatusItem *fyne.MenuItem
	TraySyncItem   *fyne.MenuItem
	TrayPeopleItem *fyne.MenuItem

	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string
	configChan         chan string

	people *peopleView
}

// NewReminderApp wires the UI around its dependencies.
func NewReminderApp(a fyne.App, ctx context.Context, deps Deps) *ReminderApp {
	a.SetIcon(theme.CalendarIcon())

	return &ReminderApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Engine:             deps.Engine,
		Lifecycle:          deps.Lifecycle,
		People:             deps.People,
		Server:             deps.Server,
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan string, config.ChannelBufferSize),
	}
}

// Run starts the services and blocks in the UI loop.
func (app *ReminderApp) Run() {
	app.SetupI18n()
	app.Engine.SetMessageFormat(app.MessageFormatter())
	app.watchPreferences()

	if app.Server != nil {
		go func() {
			slog.Info(config.MsgServerListen,
				config.LogKeyPort, app.Server.Port,
				config.LogKeyComponent, config.CompUI)

			if err := app.Server.Start(app.Ctx); err != nil {
				slog.Error(config.ErrServerStartup,
					config.LogKeyError, err,
					config.LogKeyComponent, config.CompUI)

				app.App.SendNotification(fyne.NewNotification(
					config.TitleStartupError,
					fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
			}
		}()
	}

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported,
			config.LogKeyComponent, config.CompUI)
	}

	app.App.Lifecycle().SetOnEnteredForeground(func() {
		go app.Lifecycle.Foreground(app.Ctx)
	})

	go func() {
		app.Lifecycle.Launch(app.Ctx)
		app.backgroundWorker()
	}()
	app.App.Run()
}

// watchPreferences wakes the sync worker when a preference changes.
func (app *ReminderApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefInterval:
		default:
		}
	})
}

func (app *ReminderApp) setupTrayMenu() {
	// The status line opens the people list.
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, func() {
		app.ShowPeopleWindow()
	})

	app.TraySyncItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSync), func() {
		go app.performSync(true)
	})
	app.TrayPeopleItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuPeople), func() {
		app.ShowPeopleWindow()
	})
	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), func() {
		app.ShowSettingsWindow()
	})

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TraySyncItem,
		app.TrayPeopleItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu re-applies the localized labels.
func (app *ReminderApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TraySyncItem.Label = app.GetMsg(config.TKeyMenuSync)
	app.TrayPeopleItem.Label = app.GetMsg(config.TKeyMenuPeople)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.Menu.Refresh()
}

// syncInterval reads the contacts sync period. ok is false when disabled.
func (app *ReminderApp) syncInterval() (time.Duration, bool) {
	val := app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultSyncMin)
	if val <= config.DisabledInterval {
		return 0, false
	}
	return time.Duration(val) * time.Minute, true
}

// backgroundWorker imports contacts on the configured period. Reminder
// reconciliation runs on its own worker.
func (app *ReminderApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	app.performSync(false)

	current, enabled := app.syncInterval()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	if enabled {
		ticker.Reset(current)
		log.Info(config.MsgWorkerStart, config.LogKeyInterval, current)
	} else {
		ticker.Stop()
		log.Info(config.MsgSyncDisabled)
	}

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			next, on := app.syncInterval()
			if next == current && on == enabled {
				continue
			}
			log.Info(config.MsgUpdateSync, config.LogKeyOld, current, config.LogKeyNew, next)
			current, enabled = next, on
			if enabled {
				ticker.Reset(current)
			} else {
				ticker.Stop()
				log.Info(config.MsgSyncDisabled)
			}

		case <-ticker.C:
			app.performSync(false)
		}
	}
}

// performSync imports the configured address book. Scheduling follows
// through the lifecycle, which calls Refresh once the import is stored.
func (app *ReminderApp) performSync(manual bool) {
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	src, ok := app.loadSource()
	if !ok {
		slog.Debug(config.MsgSyncNoSource, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleSyncError, app.GetMsg(config.TKeyNotifError)))
		}
		return
	}

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifStart)))
	}

	res, err := app.Lifecycle.SyncContacts(app.Ctx, src)
	if err != nil {
		slog.Error(config.MsgSyncFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleSyncError, app.GetMsg(config.TKeyNotifError)))
		}
		app.setTrayLabel(config.FallbackTrayError)
		return
	}

	slog.Info(config.MsgSyncSuccess,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCreated, res.Created,
		config.LogKeyUpdated, res.Updated,
		config.LogKeyUnchanged, res.Unchanged)

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifSuccess)))
	}
}

// loadSource assembles the import source from preferences and the keyring.
// ok is false when nothing is configured yet.
func (app *ReminderApp) loadSource() (contacts.Source, bool) {
	src := contacts.Source{
		Mode:      app.Preferences.String(config.PrefSourceMode),
		LocalPath: app.Preferences.String(config.PrefLocalPath),
		WebURL:    app.Preferences.String(config.PrefCardDAVURL),
		WebUser:   app.Preferences.String(config.PrefUsername),
	}

	switch src.Mode {
	case config.SourceModeLocal:
		if src.LocalPath == "" {
			return src, false
		}
	default:
		src.Mode = config.SourceModeWeb
		if src.WebURL == "" {
			return src, false
		}
	}

	if src.WebUser != "" && src.Mode == config.SourceModeWeb {
		if p, err := keyring.Get(config.KeyringService, src.WebUser); err == nil {
			src.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, src.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
	return src, true
}

// Refresh republishes the feed and updates the tray and the people list.
// It is the lifecycle's AfterChange hook.
func (app *ReminderApp) Refresh(ctx context.Context, trigger string) {
	log := slog.With(config.LogKeyComponent, config.CompUI, config.LogKeyTrigger, trigger)
	now := app.Clock.Now()

	if app.Server != nil {
		records, err := app.Engine.Records(ctx)
		if err != nil {
			log.Error(config.MsgRefreshFailed, config.LogKeyError, err)
		} else if data, err := feed.Build(records, now, app.MessageFormatter()); err != nil {
			log.Error(config.MsgRefreshFailed, config.LogKeyError, err)
		} else {
			app.Server.Publish(data)
		}
	}

	persons, err := app.People.List(ctx)
	if err != nil {
		log.Error(config.MsgRefreshFailed, config.LogKeyError, err)
		app.setTrayLabel(config.FallbackTrayError)
		return
	}

	app.setTrayLabel(app.trayLabel(persons, now))
	fyne.Do(func() {
		// people is owned by the UI goroutine.
		if app.people != nil {
			app.people.setPersons(persons, now)
		}
	})
}

// trayLabel names the next birthday and how far away it is.
func (app *ReminderApp) trayLabel(persons []model.Person, now time.Time) string {
	next, ok := nextBirthday(persons, now)
	if !ok {
		return app.GetMsg(config.TKeyTrayNone)
	}

	countdown := app.daysLeft(next.DaysUntil)
	label := app.localize(config.TKeyTrayNext, map[string]any{
		"Name":      next.Person.Name,
		"Countdown": countdown,
	}, nil)
	if label == config.TKeyTrayNext {
		return fmt.Sprintf(config.FallbackTrayNext, next.Person.Name, countdown)
	}
	return label
}

// daysLeft renders "N days" in the current language.
func (app *ReminderApp) daysLeft(n int) string {
	msg := app.localize(config.TKeyDaysLeft, map[string]any{"Count": n}, &n)
	if msg == config.TKeyDaysLeft {
		return fmt.Sprintf(config.FallbackDaysLeft, n, birthday.PluralizeDays(n))
	}
	return msg
}

func (app *ReminderApp) setTrayLabel(label string) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}
	fyne.Do(func() {
		app.TrayStatusItem.Label = label
		app.Menu.Refresh()
	})
}
