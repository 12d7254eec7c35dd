// Package model holds the data types shared by the stores, the scheduling
// engine and the notification gateway.
package model

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

// ErrInvalidSettings is returned by Settings.Validate.
var ErrInvalidSettings = errors.New(config.ErrSettingsInvalid)

// Person is a birthday card owned by the person store.
// The engine only reads ID, Name and Birthday.
type Person struct {
	ID          string
	Name        string
	Birthday    string // ISO date, "--MM-DD" when the year is unknown, empty when absent
	Description string
	PhotoPath   string
}

// HasBirthday reports whether a birthday value is present. It does not validate it.
func (p Person) HasBirthday() bool {
	return p.Birthday != ""
}

// NotificationRecord is one reminder for one (person, offset) pair.
// PersonName and Birthday are a snapshot taken at schedule time.
type NotificationRecord struct {
	ID               string    `gorm:"primaryKey;column:id"`
	PersonID         string    `gorm:"column:person_id;not null;index:idx_notifications_person"`
	PersonName       string    `gorm:"column:person_name"`
	Birthday         string    `gorm:"column:birthday"`
	NotificationDate time.Time `gorm:"column:notification_date;index:idx_notifications_date"`
	DaysBefore       int       `gorm:"column:days_before"`
	Scheduled        bool      `gorm:"column:scheduled;index:idx_notifications_scheduled"`
	ExternalIDs      []string  `gorm:"column:external_ids;serializer:json"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

// TableName binds the record to its sqlite table.
func (NotificationRecord) TableName() string {
	return config.TableNotifications
}

// PrimaryID is the gateway identifier of the main reminder.
func (r NotificationRecord) PrimaryID() string {
	return fmt.Sprintf(config.FormatPrimaryID, r.ID, r.PersonID, r.DaysBefore)
}

// BackupID is the gateway identifier of the delayed duplicate.
func (r NotificationRecord) BackupID() string {
	return fmt.Sprintf(config.FormatBackupID, r.ID, r.PersonID, r.DaysBefore)
}

// HasBackup reports whether this offset is time-critical enough to get a backup.
func (r NotificationRecord) HasBackup() bool {
	return r.DaysBefore <= config.BackupMaxDaysBefore
}

// DerivedIDs returns every identifier the engine may have armed for this record.
func (r NotificationRecord) DerivedIDs() []string {
	ids := []string{r.PrimaryID()}
	if r.HasBackup() {
		ids = append(ids, r.BackupID())
	}
	return ids
}

// Identifiers returns the persisted identifier set, or the derived one when
// the set was never written (arming succeeded but the update did not).
func (r NotificationRecord) Identifiers() []string {
	if len(r.ExternalIDs) > 0 {
		return slices.Clone(r.ExternalIDs)
	}
	return r.DerivedIDs()
}

// TimeOfDay is the wall-clock time reminders fire at.
type TimeOfDay struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// String renders the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf(config.FormatTimeOfDay, t.Hours, t.Minutes)
}

// Settings is the persisted singleton that drives scheduling.
type Settings struct {
	DaysBefore []int
	Time       TimeOfDay
	Enabled    bool
}

// DefaultSettings returns the factory settings: 30, 7, 1 and 0 days before at 09:00.
func DefaultSettings() Settings {
	return Settings{
		DaysBefore: slices.Clone(config.DefaultDaysBefore),
		Time:       TimeOfDay{Hours: config.DefaultReminderHour, Minutes: config.DefaultReminderMinute},
		Enabled:    true,
	}
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	s.DaysBefore = slices.Clone(s.DaysBefore)
	return s
}

// Validate checks offsets and time of day.
func (s Settings) Validate() error {
	seen := make(map[int]struct{}, len(s.DaysBefore))
	for _, d := range s.DaysBefore {
		switch {
		case d < 0:
			return fmt.Errorf("%w: %s (%d)", ErrInvalidSettings, config.ErrOffsetNegative, d)
		case d > config.MaxDaysBefore:
			return fmt.Errorf("%w: %s (%d)", ErrInvalidSettings, config.ErrOffsetTooLarge, d)
		}
		if _, dup := seen[d]; dup {
			return fmt.Errorf("%w: %s (%d)", ErrInvalidSettings, config.ErrOffsetDuplicate, d)
		}
		seen[d] = struct{}{}
	}
	if s.Time.Hours < 0 || s.Time.Hours > config.MaxHour {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, config.ErrHourRange)
	}
	if s.Time.Minutes < 0 || s.Time.Minutes > config.MaxMinute {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, config.ErrMinuteRange)
	}
	return nil
}

// NotificationPayload travels with every gateway entry so entries can be
// attributed back to their record.
type NotificationPayload struct {
	RecordID   string `json:"notificationId"`
	PersonID   string `json:"personId"`
	PersonName string `json:"personName"`
	Birthday   string `json:"birthday"`
	DaysBefore int    `json:"daysBefore"`
	Backup     bool   `json:"isBackup,omitempty"`
}

// ScheduledNotification is one entry of the gateway queue.
type ScheduledNotification struct {
	Identifier string
	FireAt     time.Time
	Title      string
	Body       string
	Payload    NotificationPayload
}
