package ui

import (
	"strings"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/birthday-reminder/internal/config"
)

// FilteredEntry is an Entry that drops typed runes its filter rejects.
// Pasted text is not filtered; validators catch it.
type FilteredEntry struct {
	widget.Entry
	allow    func(r rune) bool
	keyboard mobile.KeyboardType
}

func newFilteredEntry(allow func(r rune) bool, kb mobile.KeyboardType) *FilteredEntry {
	e := &FilteredEntry{allow: allow, keyboard: kb}
	e.ExtendBaseWidget(e)
	return e
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// NewNumericalEntry accepts digits only.
func NewNumericalEntry() *FilteredEntry {
	return newFilteredEntry(isDigit, mobile.NumberKeyboard)
}

// NewDaysListEntry accepts a comma separated list of day counts.
func NewDaysListEntry() *FilteredEntry {
	return newFilteredEntry(func(r rune) bool {
		return isDigit(r) || r == ' ' || strings.ContainsRune(config.DaysListSeparator, r)
	}, mobile.DefaultKeyboard)
}

// NewTimeEntry accepts HH:MM.
func NewTimeEntry() *FilteredEntry {
	return newFilteredEntry(func(r rune) bool {
		return isDigit(r) || strings.ContainsRune(config.TimeSeparator, r)
	}, mobile.NumberKeyboard)
}

// TypedRune implements fyne.Focusable.
func (e *FilteredEntry) TypedRune(r rune) {
	if e.allow(r) {
		e.Entry.TypedRune(r)
	}
}

// Keyboard implements mobile.Keyboardable.
func (e *FilteredEntry) Keyboard() mobile.KeyboardType {
	return e.keyboard
}
