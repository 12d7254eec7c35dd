// Package birthday implements the calendar arithmetic behind reminders:
// next anniversary, age reached, countdowns and Russian plural forms.
// Everything here is pure and driven by the instants passed in.
package birthday

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

// ErrInvalidDate is returned when a birthday value cannot be parsed.
var ErrInvalidDate = errors.New(config.ErrDateParse)

// Date is a calendar birth date. Year is zero when unknown.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// YearKnown reports whether the birth year was provided.
func (d Date) YearKnown() bool {
	return d.Year > 0
}

// String renders the date in the format Parse accepts.
func (d Date) String() string {
	if !d.YearKnown() {
		return fmt.Sprintf(config.FormatNoYearDate, int(d.Month), d.Day)
	}
	return fmt.Sprintf(config.FormatFullDate, d.Year, int(d.Month), d.Day)
}

// Parse handles the ISO and vCard birthday formats.
func Parse(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, ErrInvalidDate
	}

	// Full dates (Year known)
	for _, f := range []string{config.DateFormatFullDash, config.DateFormatFullBasic, config.DateFormatFullT} {
		if t, err := time.Parse(f, value); err == nil {
			return fromTime(t), nil
		}
	}

	// Timestamps are stored in UTC; the birthday is the local calendar day.
	if t, err := time.Parse(config.DateFormatRFC3339, value); err == nil {
		return fromTime(t.In(time.Local)), nil
	}

	// Truncated dates (Year unknown) - vCard specific.
	// time.Parse validates against year 0, which is a leap year, so --02-29 passes.
	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return Date{Month: t.Month(), Day: t.Day()}, nil
		}
	}

	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

func fromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}
