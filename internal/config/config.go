package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client used for contact downloads.
var UserAgent = "Birthday-Reminder/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName             = "Birthday Reminder"
	AppID               = "com.github.tartampluch.birthday-reminder"
	KeyringService      = "com.github.tartampluch.birthday-reminder"
	LocalhostBindAddr   = "127.0.0.1"
	LogFileName         = "app.log"
	NotificationsDBFile = "notifications.db"
	PeopleDBFile        = "people.db"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvDataDir          = "BIRTHDAY_DATA_DIR"
	EnvReconcileMinutes = "BIRTHDAY_RECONCILE_MINUTES"
	EnvFeedPort         = "BIRTHDAY_FEED_PORT"
	EnvLanguage         = "BIRTHDAY_LANGUAGE"
	ErrDataDir          = "failed to resolve data directory"
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	SettingsWindowWidth = 600

	// Preference Keys
	PrefCardDAVURL = "carddav_url"
	PrefUsername   = "username"
	PrefLanguage   = "language"
	PrefInterval   = "sync_interval_min"
	PrefServerPort = "server_port"
	PrefSourceMode = "source_mode"
	PrefLocalPath  = "local_path"
	PrefLastRun    = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "ru"}

// -----------------------------------------------------------------------------
// UI People Window Constants
// -----------------------------------------------------------------------------

const (
	PeopleWinWidth  = 620
	PeopleWinHeight = 420

	// Table Column IDs
	ColIDName   = 0
	ColIDDate   = 1
	ColIDDays   = 2
	ColIDAge    = 3
	ColumnCount = 4

	// Table Layout
	ColWidthName = 230
	ColWidthDate = 120
	ColWidthDays = 120
	ColWidthAge  = 90

	DateFormatDisplay = "02.01.2006"
	TablePlaceholder  = "Cell Content"
	AgeUnknown        = "-"
	LogMsgOpenWin     = "Opening people window"
	LogMsgSorted      = "People sorted"

	SortIconAsc  = " ▲"
	SortIconDesc = " ▼"

	// Settings form separators
	DaysListSeparator = ","
	TimeSeparator     = ":"
	FormatTimeOfDay   = "%02d:%02d"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyWinPeople      = "win_people_title"
	TKeyMenuSync       = "menu_sync"
	TKeyMenuPeople     = "menu_people"
	TKeyMenuSettings   = "menu_settings"
	TKeyTrayNext       = "tray_next"      // Requires Name, Countdown
	TKeyTrayNone       = "tray_none"      // No upcoming birthdays
	TKeyNotifStart     = "notif_sync_start"
	TKeyNotifSuccess   = "notif_sync_success"
	TKeyNotifError     = "notif_err_sync"
	TKeyModeCardDAV    = "mode_carddav"
	TKeyModeLocal      = "mode_local"
	TKeyLblLanguage    = "lbl_language"
	TKeyHelpLanguage   = "help_language"
	TKeyLblMinutes     = "lbl_minutes_suffix"
	TKeyLblSync        = "lbl_sync_interval"
	TKeyHelpInterval   = "help_interval"
	TKeyLblPort        = "lbl_server_port"
	TKeyHelpPort       = "help_port"
	TKeyLblGeneral     = "lbl_general"
	TKeyLblEnableRem   = "lbl_enable_reminders"
	TKeyLblDaysBefore  = "lbl_days_before"
	TKeyHelpDaysBefore = "help_days_before"
	TKeyLblTime        = "lbl_time"
	TKeyHelpTime       = "help_time"
	TKeyLblNotif       = "lbl_notifications"
	TKeyBtnSave        = "btn_save"
	TKeyBtnCancel      = "btn_cancel"
	TKeyBtnBrowse      = "btn_browse"
	TKeyLblURL         = "lbl_url"
	TKeyHelpURL        = "help_carddav_url"
	TKeyLblUser        = "lbl_user"
	TKeyLblPass        = "lbl_pass"
	TKeyLblSource      = "lbl_source"
	TKeyLblFooter      = "lbl_footer" // Requires Version

	// Reminder texts
	TKeyRemTitle       = "reminder_title"
	TKeyRemTitleBackup = "reminder_title_backup"
	TKeyRemToday       = "reminder_today"    // Requires Name
	TKeyRemTomorrow    = "reminder_tomorrow" // Requires Name
	TKeyRemWeek        = "reminder_week"     // Requires Name
	TKeyRemMonth       = "reminder_month"    // Requires Name
	TKeyRemDays        = "reminder_days"     // Requires Name, Count (plural)
	TKeyRemBackupHint  = "reminder_backup_hint"

	// People editing
	TKeyBtnAdd        = "btn_add"
	TKeyBtnDelete     = "btn_delete"
	TKeyWinPersonNew  = "win_person_new"
	TKeyWinPersonEdit = "win_person_edit"
	TKeyLblName       = "lbl_name"
	TKeyLblBirthday   = "lbl_birthday"
	TKeyHelpBirthday  = "help_birthday"
	TKeyLblNote       = "lbl_note"
	TKeyConfirmDelete = "confirm_delete" // Requires Name
	TKeyErrName       = "err_name_required"
	TKeyErrBirthday   = "err_birthday"

	// Reminder settings outcome
	TKeyNotifRemSaved = "notif_reminders_saved"
	TKeyNotifRemError = "notif_err_reminders"

	// Column Headers & Formats
	TKeyColName    = "col_name"
	TKeyColDate    = "col_date"
	TKeyColDays    = "col_days"
	TKeyColAge     = "col_age"
	TKeyFormatDate = "format_date_short"
	TKeyDaysLeft   = "days_left" // Requires Count (plural)

	// Validation Errors (UI)
	TKeyErrPortReq   = "err_port_required"
	TKeyErrPortNum   = "err_port_number"
	TKeyErrPortRange = "err_port_range"
	TKeyErrDays      = "err_days_before"
	TKeyErrTime      = "err_time"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb    = "web"
	SourceModeLocal  = "local"
	DefaultPort      = "18080"
	DefaultSyncMin   = 60
	DefaultLanguage  = "ru"
	UIDSalt          = "birthday-reminder-v1-" // Salt for deterministic person ids
	DisabledInterval = 0
)

// DefaultDaysBefore is the factory offset list: a month, a week, a day and the day itself.
var DefaultDaysBefore = []int{30, 7, 1, 0}

const (
	DefaultReminderHour   = 9
	DefaultReminderMinute = 0
	MaxDaysBefore         = 365
	MaxHour               = 23
	MaxMinute             = 59
)

// -----------------------------------------------------------------------------
// Scheduling
// -----------------------------------------------------------------------------

const (
	// StaggerStep separates offsets that would otherwise fire at the same instant.
	StaggerStep = 5 * time.Second

	// BackupDelay is how long after the primary the backup reminder fires.
	BackupDelay = 5 * time.Minute

	// BackupMaxDaysBefore is the largest offset that gets a backup reminder.
	BackupMaxDaysBefore = 1

	// MinHealthyScheduled is the gateway entry count below which the queue is rebuilt.
	MinHealthyScheduled = 5

	// HealthWindow is how far ahead at least one entry must fire for the queue to be healthy.
	HealthWindow = 7 * 24 * time.Hour

	DefaultReconcileInterval = 30 * time.Minute

	// GatewayMinDelay is the shortest delay the local gateway arms a timer with.
	GatewayMinDelay = time.Second

	// Identifier formats: {recordId}_{personId}_{daysBefore} and the backup variant.
	FormatPrimaryID = "%s_%s_%d"
	FormatBackupID  = "%s_backup_%s_%d"

	// CronEveryPrefix builds robfig/cron descriptors such as "@every 30m0s".
	CronEveryPrefix = "@every "
)

// -----------------------------------------------------------------------------
// Storage
// -----------------------------------------------------------------------------

const (
	TableNotifications = "birthday_notifications"
	TableSettings      = "notification_settings"
	TablePeople        = "person_cards"

	SettingKeyDaysBefore = "daysBefore"
	SettingKeyTime       = "time"
	SettingKeyEnabled    = "enabled"

	SQLiteDriver = "sqlite3"
	PragmaWAL    = "PRAGMA journal_mode=WAL;"

	DBSlowThreshold = time.Second
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Birthday Reminder//Feed//EN"
	ICalCalName   = "Birthday reminders"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "birthday-reminder"
	ICalTriggerAt = "PT0S"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"
	VCardNote = "NOTE"
	VCardUID  = "UID"

	DefaultICalRefresh = 1 * time.Hour
	FormatEventUID     = "%s@%s"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"
	FormatNoYearDate    = "--%02d-%02d"
	FormatFullDate      = "%04d-%02d-%02d"

	MinPort = 1
	MaxPort = 65535

	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"

	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/{$}"
	RouteFeed           = "/reminders.ics"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrVCardRead        = "failed to read vCard stream"
	ErrResponseTooLarge = "response body exceeds size limit"
	ErrRequestBuild     = "failed to create request"
	ErrNetwork          = "network error during fetch"
	ErrUnexpectedStatus = "server returned unexpected status"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app directory"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"

	// Storage
	ErrDBOpen          = "failed to open database"
	ErrDBMigrate       = "failed to migrate database schema"
	ErrDBUnderlying    = "failed to get underlying sql.DB"
	ErrDBBuildSQL      = "failed to build SQL"
	ErrRecordNotFound  = "notification record not found"
	ErrRecordList      = "failed to list notification records"
	ErrRecordCreate    = "failed to create notification record"
	ErrRecordUpdate    = "failed to update notification record"
	ErrRecordDelete    = "failed to delete notification record"
	ErrSettingsMissing = "notification settings not found"
	ErrSettingsRead    = "failed to read notification settings"
	ErrSettingsWrite   = "failed to save notification settings"
	ErrSettingsDecode  = "failed to decode notification settings"
	ErrPersonNotFound  = "person not found"
	ErrPersonInvalid   = "invalid person"
	ErrPersonNameEmpty = "person name is empty"
	ErrPersonQuery     = "person query failed"

	// Engine
	ErrEngineInit       = "scheduler initialization failed"
	ErrPermissionDenied = "notification permission denied"
	ErrSettingsInvalid  = "invalid notification settings"
	ErrOffsetNegative   = "days-before offset must not be negative"
	ErrOffsetTooLarge   = "days-before offset exceeds one year"
	ErrOffsetDuplicate  = "duplicate days-before offset"
	ErrHourRange        = "hour must be between 0 and 23"
	ErrMinuteRange      = "minute must be between 0 and 59"
	ErrOffsetInvalid    = "days-before offset is not a number"
	ErrTimeInvalid      = "time of day must be HH:MM"
	ErrGatewayList      = "failed to list scheduled notifications"
	ErrGatewayClosed    = "notification gateway is closed"
	ErrPeopleList       = "failed to list people"

	// Lifecycle
	ErrCronSchedule = "failed to register reconciliation job"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Reminder Texts (default Russian rendering)
// -----------------------------------------------------------------------------

const (
	MsgReminderTitle       = "Напоминание о дне рождения"
	MsgReminderTitleBackup = "🎂 Напоминание о дне рождения"
	MsgReminderToday       = "Сегодня день рождения у %s! 🎉"
	MsgReminderTomorrow    = "Завтра день рождения у %s! 🎂"
	MsgReminderWeek        = "Через неделю день рождения у %s! 📅"
	MsgReminderMonth       = "Через месяц день рождения у %s! 📆"
	MsgReminderDays        = "Через %d %s день рождения у %s! 📅"
	MsgReminderBackupHint  = " Не забудьте поздравить!"

	// Countdown tiers
	MsgCountdownPast    = "Прошло"
	FormatCountdownS    = "%d сек"
	FormatCountdownMS   = "%d мин %d сек"
	FormatCountdownM    = "%d мин"
	FormatCountdownHM   = "%d ч %d мин"
	FormatCountdownDH   = "%d дн %d ч"
	FormatCountdownWD   = "%d нед %d дн"
	FormatCountdownMoW  = "%d мес %d нед"
	FormatCountdownYMo  = "%d г %d мес"
	CountdownDetailMins = 10

	// Russian plural forms
	WordDayOne   = "день"
	WordDayFew   = "дня"
	WordDayMany  = "дней"
	WordYearOne  = "год"
	WordYearFew  = "года"
	WordYearMany = "лет"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackTrayError   = "Birthday Reminder: Sync Error"
	FallbackTrayLabel   = "Birthday Reminder"
	FallbackTrayNext    = "%s: %s"
	FallbackName        = "Unknown"
	FallbackDaysLeft    = "%d %s"

	// StubVCalendar is the minimal valid iCalendar object used when nothing is armed.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"
	TitleSyncError    = "Sync Error"

	MsgPortBusy        = "Port %s is busy or unavailable."
	MsgSyncSuccess     = "Contacts synchronization completed."
	MsgSyncStarted     = "Contacts synchronization started"
	MsgSyncFailed      = "Contacts synchronization failed"
	MsgSyncReq         = "Sync requested"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Background worker stopped"
	MsgUpdateSync      = "Updating sync interval"
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedDate     = "Skipping invalid date format"
	MsgFetchStarted    = "vCards downloading"
	MsgFetchBadStatus  = "Server returned error status"
	MsgImportDone      = "Contacts import finished"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Feed cache updated"
	MsgCacheUnchanged  = "Feed content unchanged"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgPassFail        = "Password retrieval failed (might be empty)"
	MsgWinFocus        = "Window already open, requesting focus"
	MsgSettingsOpen    = "Opening settings window"
	MsgSettingsSaving  = "Saving preferences"
	MsgKeyringFail     = "Failed to save credentials to keyring"
	MsgSyncDisabled    = "Contacts auto-sync disabled via settings"
	MsgRemSaveFailed   = "Reminder settings update failed"
	MsgPersonSaveFail  = "Person save failed"
	MsgRefreshFailed   = "Feed refresh failed"
	MsgSyncNoSource    = "No contacts source configured, sync skipped"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgEnvMissing      = "No .env file loaded"
	MsgEnvInvalid      = "Invalid environment value, using default"
	MsgDBReady         = "Database initialized"
	MsgSettingsSeeded  = "Default notification settings stored"
	MsgSettingsReset   = "Notification settings reset to defaults"

	// Engine
	MsgEngineReady       = "Scheduler initialized"
	MsgPermissionDenied  = "Notification permission not granted, scheduling disabled for this session"
	MsgScheduleDisabled  = "Reminders disabled, ensuring no reminders are armed"
	MsgScheduleNoBday    = "Person has no usable birthday, ensuring no reminders are armed"
	MsgScheduleStart     = "Scheduling reminders"
	MsgOffsetSkipped     = "Skipping reminder, fire time already passed"
	MsgRecordArmed       = "Reminder armed"
	MsgRecordFailed      = "Reminder could not be stored"
	MsgArmFailed         = "Reminder could not be armed"
	MsgBackupFailed      = "Backup reminder could not be armed"
	MsgMarkFailed        = "Armed reminder could not be marked as scheduled"
	MsgCancelFailed      = "Gateway cancellation failed"
	MsgCancelled         = "Reminders cancelled"
	MsgTeardown          = "Reminders disabled, all reminders torn down"
	MsgRebuildStart      = "Rebuilding all reminders"
	MsgRebuildDone       = "Rebuild finished"
	MsgRebuildPerson     = "Rebuild failed for person"
	MsgPurgeUnknown      = "Purging reminders of unknown person"
	MsgCleanupStart      = "Checking reminders for past dates"
	MsgCleanupPast       = "Past reminder found, rolling forward"
	MsgCleanupSiblings   = "Regenerating still-future reminders of the same person"
	MsgCleanupDone       = "Past reminders cleanup finished"
	MsgCleanupSkip       = "Reminders disabled, skipping"
	MsgDriftDetected     = "Gateway queue drift detected"
	MsgQueueHealthy      = "Gateway queue healthy"
	MsgOrphanCancelled   = "Cancelled orphan gateway entry"
	MsgPersonLookupFail  = "Person lookup failed, using stored snapshot"

	// Gateway
	MsgGatewayArmed     = "Notification timer armed"
	MsgGatewayFired     = "Notification delivered"
	MsgGatewayCancelled = "Notification timer cancelled"
	MsgGatewayClosed    = "Notification gateway closed"

	// Feed
	MsgFeedBuilt = "Reminder feed rendered"

	// Lifecycle
	MsgTriggerFailed    = "Reminder trigger failed"
	MsgReconcileBusy    = "Reconciliation already running, skipping"
	MsgReconcileStart   = "Reconciliation started"
	MsgReconcileDone    = "Reconciliation finished"
	MsgPersonImported   = "Person imported"
	MsgPersonUnchanged  = "Person unchanged"

	PlaceholderURL   = "https://..."
	PlaceholderDays  = "30, 7, 1, 0"
	PlaceholderTime  = "09:00"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "birthdays_found"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeySortCol   = "sort_column"
	LogKeySortAsc   = "sort_asc"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDuration  = "duration_ms"
	LogKeyPath      = "path"
	LogKeyEnv       = "env"

	LogKeyPersonID   = "person_id"
	LogKeyRecordID   = "record_id"
	LogKeyIdentifier = "identifier"
	LogKeyDaysBefore = "days_before"
	LogKeyFireAt     = "fire_at"
	LogKeyOccursOn   = "occurs_on"
	LogKeyCountdown  = "countdown"
	LogKeyEnabled    = "enabled"
	LogKeyEntries    = "entries"
	LogKeyUnarmed    = "unarmed"
	LogKeyNearest    = "nearest"
	LogKeyTrigger    = "trigger"
	LogKeyCreated    = "created"
	LogKeyUpdated    = "updated"
	LogKeyUnchanged  = "unchanged"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "build_date"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI        = "ui"
	CompUISet     = "ui_settings"
	CompEngine    = "engine"
	CompStore     = "store"
	CompPeople    = "people"
	CompGateway   = "gateway"
	CompFeed      = "feed"
	CompLifecycle = "lifecycle"
	CompContacts  = "contacts"
	CompServer    = "server"
	CompFetcher   = "fetcher"
	CompWorker    = "worker"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompConfig    = "config"
)

// -----------------------------------------------------------------------------
// Lifecycle Trigger Names
// -----------------------------------------------------------------------------

const (
	TriggerCreated    = "person_created"
	TriggerUpdated    = "person_updated"
	TriggerDeleted    = "person_deleted"
	TriggerLaunch     = "launch"
	TriggerForeground = "foreground"
	TriggerPeriodic   = "periodic"
	TriggerImport     = "contacts_import"
	TriggerSettings   = "settings_changed"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
)
