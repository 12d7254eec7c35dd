package birthday

import (
	"fmt"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

// PluralizeDays returns the Russian word for "day" agreeing with n.
func PluralizeDays(n int) string {
	return pluralForm(n, config.WordDayOne, config.WordDayFew, config.WordDayMany)
}

// PluralizeYears returns the Russian word for "year" agreeing with n.
func PluralizeYears(n int) string {
	return pluralForm(n, config.WordYearOne, config.WordYearFew, config.WordYearMany)
}

func pluralForm(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	mod10, mod100 := n%10, n%100
	switch {
	case mod10 == 1 && mod100 != 11:
		return one
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return few
	default:
		return many
	}
}

// FormatTimeUntil renders a coarse countdown for diagnostics, keeping the two
// most significant units. Months are four weeks and years twelve such months.
func FormatTimeUntil(target, now time.Time) string {
	seconds := int(target.Sub(now) / time.Second)
	if seconds < 0 {
		return config.MsgCountdownPast
	}
	if seconds < 60 {
		return fmt.Sprintf(config.FormatCountdownS, seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		if minutes < config.CountdownDetailMins {
			return fmt.Sprintf(config.FormatCountdownMS, minutes, seconds%60)
		}
		return fmt.Sprintf(config.FormatCountdownM, minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf(config.FormatCountdownHM, hours, minutes%60)
	}

	days := hours / 24
	if days < 7 {
		return fmt.Sprintf(config.FormatCountdownDH, days, hours%24)
	}

	weeks := days / 7
	if weeks < 4 {
		return fmt.Sprintf(config.FormatCountdownWD, weeks, days%7)
	}

	months := weeks / 4
	if months < 12 {
		return fmt.Sprintf(config.FormatCountdownMoW, months, weeks%4)
	}

	return fmt.Sprintf(config.FormatCountdownYMo, months/12, months%12)
}

// ReminderMessage is the default (Russian) text of a reminder.
// Backups reuse the offset text under an urgent title with a nudge appended.
func ReminderMessage(name string, daysBefore int, backup bool) (title, body string) {
	switch daysBefore {
	case 0:
		body = fmt.Sprintf(config.MsgReminderToday, name)
	case 1:
		body = fmt.Sprintf(config.MsgReminderTomorrow, name)
	case 7:
		body = fmt.Sprintf(config.MsgReminderWeek, name)
	case 30:
		body = fmt.Sprintf(config.MsgReminderMonth, name)
	default:
		body = fmt.Sprintf(config.MsgReminderDays, daysBefore, PluralizeDays(daysBefore), name)
	}
	if backup {
		return config.MsgReminderTitleBackup, body + config.MsgReminderBackupHint
	}
	return config.MsgReminderTitle, body
}
