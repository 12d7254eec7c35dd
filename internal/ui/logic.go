package ui

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/birthday"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
)

var (
	errDaysList  = errors.New(config.ErrOffsetInvalid)
	errTimeOfDay = errors.New(config.ErrTimeInvalid)
)

// personRow is one line of the people table.
type personRow struct {
	Person    model.Person
	Valid     bool // birthday parsed
	Next      time.Time
	DaysUntil int
	Age       int // age reached on Next, 0 when the year is unknown
}

func buildRows(persons []model.Person, now time.Time) []personRow {
	rows := make([]personRow, 0, len(persons))
	for _, p := range persons {
		row := personRow{Person: p}
		if d, err := birthday.Parse(p.Birthday); err == nil {
			a := birthday.NextAnniversary(d, now)
			row.Valid = true
			row.Next = a.OccursOn
			row.DaysUntil = a.DaysUntil
			if d.YearKnown() {
				row.Age = birthday.AgeReachedOnAnniversary(d, a.OccursOn)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// sortRows orders the table. Rows without a usable birthday, or without a
// known age on the age column, stay at the bottom by name in both directions.
func sortRows(rows []personRow, col int, asc bool) {
	slices.SortStableFunc(rows, func(a, b personRow) int {
		if a.Valid != b.Valid {
			if a.Valid {
				return -1
			}
			return 1
		}
		if !a.Valid {
			return cmp.Compare(a.Person.Name, b.Person.Name)
		}

		var c int
		switch col {
		case config.ColIDName:
			c = cmp.Compare(strings.ToLower(a.Person.Name), strings.ToLower(b.Person.Name))
		case config.ColIDAge:
			if (a.Age == 0) != (b.Age == 0) {
				if a.Age == 0 {
					return 1
				}
				return -1
			}
			if a.Age == 0 {
				return cmp.Compare(a.Person.Name, b.Person.Name)
			}
			c = cmp.Compare(a.Age, b.Age)
		default: // date and days share the same order
			c = a.Next.Compare(b.Next)
		}
		if c == 0 {
			c = cmp.Compare(a.Person.Name, b.Person.Name)
		}
		if !asc {
			return -c
		}
		return c
	})
}

// nextBirthday returns the person whose anniversary comes first.
func nextBirthday(persons []model.Person, now time.Time) (personRow, bool) {
	rows := buildRows(persons, now)
	sortRows(rows, config.ColIDDate, true)
	if len(rows) == 0 || !rows[0].Valid {
		return personRow{}, false
	}
	return rows[0], true
}

// parseDaysList reads "30, 7, 1, 0". Validation of the values is left to
// model.Settings.
func parseDaysList(s string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(s, config.DaysListSeparator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errDaysList, part)
		}
		days = append(days, n)
	}
	return days, nil
}

func formatDaysList(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, config.DaysListSeparator+" ")
}

// parseTimeOfDay reads "HH:MM". Range checks are left to model.Settings.
func parseTimeOfDay(s string) (model.TimeOfDay, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), config.TimeSeparator)
	if !ok {
		return model.TimeOfDay{}, fmt.Errorf("%w: %q", errTimeOfDay, s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return model.TimeOfDay{}, fmt.Errorf("%w: %q", errTimeOfDay, s)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return model.TimeOfDay{}, fmt.Errorf("%w: %q", errTimeOfDay, s)
	}
	return model.TimeOfDay{Hours: hours, Minutes: minutes}, nil
}
