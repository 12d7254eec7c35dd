package ui

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/birthday-reminder/internal/birthday"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"golang.org/x/text/language"
)

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n loads every embedded bundle and detects the available languages.
func (app *ReminderApp) SetupI18n() {
	bundle := i18n.NewBundle(language.Russian)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err)
		return
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		lang, ok := strings.CutPrefix(name, localePrefix)
		if ok {
			lang, ok = strings.CutSuffix(lang, localeSuffix)
		}
		if !ok || lang == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err)
			continue
		}
		detected = append(detected, lang)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, lang)
	}

	app.SupportedLanguages = detected
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer follows the language preference.
func (app *ReminderApp) UpdateLocalizer() {
	if app.I18nBundle == nil {
		return
	}
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	app.localizer.Store(i18n.NewLocalizer(app.I18nBundle, lang))
}

// GetMsg translates key, returning the key itself when it is missing.
func (app *ReminderApp) GetMsg(key string) string {
	return app.localize(key, nil, nil)
}

// localize renders key with data. count selects the plural form when set.
func (app *ReminderApp) localize(key string, data map[string]any, count *int) string {
	return localizeWith(app.localizer.Load(), key, data, count)
}

func localizeWith(localizer *i18n.Localizer, key string, data map[string]any, count *int) string {
	if localizer == nil {
		return key
	}
	cfg := &i18n.LocalizeConfig{MessageID: key, TemplateData: data}
	if count != nil {
		cfg.PluralCount = *count
	}
	msg, err := localizer.Localize(cfg)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err)
		return key
	}
	return msg
}

// MessageFormatter localizes reminder texts; it has the engine.MessageFunc
// signature. Anything missing from the bundle falls back to the built-in
// Russian texts. One call renders every part in the same language.
func (app *ReminderApp) MessageFormatter() func(name string, daysBefore int, backup bool) (string, string) {
	return func(name string, daysBefore int, backup bool) (string, string) {
		localizer := app.localizer.Load()
		fallbackTitle, fallbackBody := birthday.ReminderMessage(name, daysBefore, backup)

		data := map[string]any{"Name": name, "Count": daysBefore}
		var key string
		var count *int
		switch daysBefore {
		case 0:
			key = config.TKeyRemToday
		case 1:
			key = config.TKeyRemTomorrow
		case 7:
			key = config.TKeyRemWeek
		case 30:
			key = config.TKeyRemMonth
		default:
			key, count = config.TKeyRemDays, &daysBefore
		}

		body := localizeWith(localizer, key, data, count)
		titleKey := config.TKeyRemTitle
		if backup {
			titleKey = config.TKeyRemTitleBackup
		}
		title := localizeWith(localizer, titleKey, nil, nil)

		if body == key || title == titleKey {
			return fallbackTitle, fallbackBody
		}
		if backup {
			if hint := localizeWith(localizer, config.TKeyRemBackupHint, nil, nil); hint != config.TKeyRemBackupHint {
				body += " " + hint
			}
		}
		return title, body
	}
}
