package birthday

import "time"

// Anniversary is the next occurrence of a birth month/day.
type Anniversary struct {
	// OccursOn is midnight of the anniversary day in the reference location.
	OccursOn time.Time

	// DaysUntil counts calendar days from the reference day, 0 meaning today.
	DaysUntil int
}

// NextAnniversary returns the earliest anniversary on or after the reference day.
// Feb 29 is celebrated on Feb 28 in non-leap years.
func NextAnniversary(b Date, ref time.Time) Anniversary {
	loc := ref.Location()
	today := startOfDay(ref)

	candidate := occurrence(b, ref.Year(), loc)
	if candidate.Before(today) {
		candidate = occurrence(b, ref.Year()+1, loc)
	}

	return Anniversary{OccursOn: candidate, DaysUntil: daysBetween(today, candidate)}
}

// NextCycle returns the anniversary reminders are scheduled against.
// Unlike NextAnniversary, a birthday that is today but whose midnight already
// lies before now belongs to the past cycle and rolls to the following year.
func NextCycle(b Date, now time.Time) Anniversary {
	a := NextAnniversary(b, now)
	if a.OccursOn.Before(now) {
		a.OccursOn = occurrence(b, a.OccursOn.Year()+1, now.Location())
		a.DaysUntil = daysBetween(startOfDay(now), a.OccursOn)
	}
	return a
}

// AgeReachedOnAnniversary is the age turned on occursOn, never below 1.
func AgeReachedOnAnniversary(b Date, occursOn time.Time) int {
	age := occursOn.Year() - b.Year
	if age < 1 {
		return 1
	}
	return age
}

// occurrence builds the anniversary in the given year at start of day.
func occurrence(b Date, year int, loc *time.Location) time.Time {
	day := b.Day
	if b.Month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, b.Month, day, 0, 0, 0, 0, loc)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days, ignoring DST shifts in the location.
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
