package ui

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/birthday-reminder/internal/birthday"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
)

// peopleView is the state behind the people table. It is only touched on
// the UI goroutine.
type peopleView struct {
	app      *ReminderApp
	window   fyne.Window
	table    *widget.Table
	rows     []personRow
	sortCol  int
	sortAsc  bool
	selected int // row index, -1 when nothing is selected
}

// ShowPeopleWindow lists every card sorted by next birthday. A single
// window is kept; opening it again only focuses it.
func (app *ReminderApp) ShowPeopleWindow() {
	if app.peopleWindow != nil {
		slog.Debug(config.MsgWinFocus, config.LogKeyComponent, config.CompUI)
		app.peopleWindow.RequestFocus()
		return
	}

	slog.Info(config.LogMsgOpenWin, config.LogKeyComponent, config.CompUI)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinPeople))
	w.Resize(fyne.NewSize(config.PeopleWinWidth, config.PeopleWinHeight))
	app.peopleWindow = w

	view := &peopleView{app: app, window: w, sortCol: config.ColIDDate, sortAsc: true, selected: -1}
	view.table = view.buildTable()
	app.people = view

	btnAdd := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnAdd), theme.ContentAddIcon(), func() {
		view.showPersonForm(model.Person{})
	})
	btnDelete := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnDelete), theme.DeleteIcon(), func() {
		view.confirmDelete()
	})
	toolbar := container.NewHBox(btnAdd, btnDelete)

	w.SetContent(container.NewBorder(toolbar, nil, nil, nil, view.table))
	w.SetOnClosed(func() {
		app.peopleWindow = nil
		app.people = nil
	})
	w.Show()

	go view.reload()
}

// reload reads the store off the UI goroutine and hands the result back.
func (v *peopleView) reload() {
	persons, err := v.app.People.List(v.app.Ctx)
	if err != nil {
		slog.Error(config.MsgRefreshFailed, config.LogKeyComponent, config.CompUI, config.LogKeyError, err)
		return
	}
	now := v.app.Clock.Now()
	fyne.Do(func() { v.setPersons(persons, now) })
}

func (v *peopleView) setPersons(persons []model.Person, now time.Time) {
	v.rows = buildRows(persons, now)
	v.resort()
}

func (v *peopleView) resort() {
	sortRows(v.rows, v.sortCol, v.sortAsc)
	v.selected = -1
	slog.Debug(config.LogMsgSorted,
		config.LogKeyComponent, config.CompUI,
		config.LogKeySortCol, v.sortCol,
		config.LogKeySortAsc, v.sortAsc)
	if v.table != nil {
		v.table.UnselectAll()
		v.table.Refresh()
	}
}

// sortBy toggles the direction on the active column, or switches column.
func (v *peopleView) sortBy(col int) {
	if v.sortCol == col {
		v.sortAsc = !v.sortAsc
	} else {
		v.sortCol = col
		v.sortAsc = true
	}
	v.resort()
}

// cellText renders one table cell.
func (v *peopleView) cellText(row personRow, col int) string {
	app := v.app
	switch col {
	case config.ColIDName:
		return row.Person.Name
	case config.ColIDDate:
		if !row.Valid {
			return config.AgeUnknown
		}
		format := app.GetMsg(config.TKeyFormatDate)
		if format == config.TKeyFormatDate {
			format = config.DateFormatDisplay
		}
		return row.Next.Format(format)
	case config.ColIDDays:
		if !row.Valid {
			return config.AgeUnknown
		}
		return app.daysLeft(row.DaysUntil)
	case config.ColIDAge:
		if !row.Valid || row.Age == 0 {
			return config.AgeUnknown
		}
		return strconv.Itoa(row.Age)
	}
	return ""
}

func (v *peopleView) headerText(col int) string {
	var key string
	switch col {
	case config.ColIDName:
		key = config.TKeyColName
	case config.ColIDDate:
		key = config.TKeyColDate
	case config.ColIDDays:
		key = config.TKeyColDays
	case config.ColIDAge:
		key = config.TKeyColAge
	}

	text := v.app.GetMsg(key)
	if col == v.sortCol {
		if v.sortAsc {
			text += config.SortIconAsc
		} else {
			text += config.SortIconDesc
		}
	}
	return text
}

func (v *peopleView) buildTable() *widget.Table {
	table := widget.NewTable(
		func() (int, int) {
			return len(v.rows), config.ColumnCount
		},
		func() fyne.CanvasObject {
			return widget.NewLabel(config.TablePlaceholder)
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			if id.Row >= len(v.rows) {
				return
			}
			o.(*widget.Label).SetText(v.cellText(v.rows[id.Row], id.Col))
		},
	)

	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton(config.TablePlaceholder, nil)
	}
	table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		btn := o.(*widget.Button)
		btn.SetText(v.headerText(id.Col))
		btn.OnTapped = func() { v.sortBy(id.Col) }
	}

	// Selecting a row opens it for editing and keeps it as the delete target.
	table.OnSelected = func(id widget.TableCellID) {
		if id.Row < 0 || id.Row >= len(v.rows) {
			return
		}
		v.selected = id.Row
		v.showPersonForm(v.rows[id.Row].Person)
	}

	table.SetColumnWidth(config.ColIDName, config.ColWidthName)
	table.SetColumnWidth(config.ColIDDate, config.ColWidthDate)
	table.SetColumnWidth(config.ColIDDays, config.ColWidthDays)
	table.SetColumnWidth(config.ColIDAge, config.ColWidthAge)
	return table
}

// showPersonForm edits p, or creates a card when p has no id.
func (v *peopleView) showPersonForm(p model.Person) {
	app := v.app

	nameEntry := widget.NewEntry()
	nameEntry.SetText(p.Name)
	nameEntry.Validator = func(s string) error { return app.validateName(s) }

	bdayEntry := widget.NewEntry()
	bdayEntry.SetText(p.Birthday)
	bdayEntry.PlaceHolder = config.DateFormatFullDash
	bdayEntry.Validator = func(s string) error { return app.validateBirthday(s) }

	noteEntry := widget.NewMultiLineEntry()
	noteEntry.SetText(p.Description)

	itemBday := widget.NewFormItem(app.GetMsg(config.TKeyLblBirthday), bdayEntry)
	itemBday.HintText = app.GetMsg(config.TKeyHelpBirthday)
	items := []*widget.FormItem{
		widget.NewFormItem(app.GetMsg(config.TKeyLblName), nameEntry),
		itemBday,
		widget.NewFormItem(app.GetMsg(config.TKeyLblNote), noteEntry),
	}

	title := app.GetMsg(config.TKeyWinPersonEdit)
	if p.ID == "" {
		title = app.GetMsg(config.TKeyWinPersonNew)
	}

	dialog.ShowForm(title, app.GetMsg(config.TKeyBtnSave), app.GetMsg(config.TKeyBtnCancel), items, func(ok bool) {
		if !ok {
			return
		}
		p.Name = strings.TrimSpace(nameEntry.Text)
		p.Birthday = normalizeBirthday(bdayEntry.Text)
		p.Description = noteEntry.Text
		go v.save(p)
	}, v.window)
}

func (v *peopleView) save(p model.Person) {
	app := v.app
	var err error
	if p.ID == "" {
		_, err = app.Lifecycle.CreatePerson(app.Ctx, p)
	} else {
		err = app.Lifecycle.UpdatePerson(app.Ctx, p)
	}
	if err != nil {
		slog.Error(config.MsgPersonSaveFail,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyPersonID, p.ID,
			config.LogKeyError, err)
		fyne.Do(func() { dialog.ShowError(err, v.window) })
	}
}

func (v *peopleView) confirmDelete() {
	if v.selected < 0 || v.selected >= len(v.rows) {
		return
	}
	p := v.rows[v.selected].Person
	app := v.app

	msg := app.localize(config.TKeyConfirmDelete, map[string]any{"Name": p.Name}, nil)
	dialog.ShowConfirm(app.GetMsg(config.TKeyBtnDelete), msg, func(ok bool) {
		if !ok {
			return
		}
		go func() {
			if err := app.Lifecycle.DeletePerson(app.Ctx, p.ID); err != nil {
				slog.Error(config.MsgPersonSaveFail,
					config.LogKeyComponent, config.CompUI,
					config.LogKeyPersonID, p.ID,
					config.LogKeyError, err)
				fyne.Do(func() { dialog.ShowError(err, v.window) })
			}
		}()
	}, v.window)
}

func (app *ReminderApp) validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New(app.GetMsg(config.TKeyErrName))
	}
	return nil
}

// validateBirthday accepts an empty value: a card may have no birthday.
func (app *ReminderApp) validateBirthday(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := birthday.Parse(strings.TrimSpace(s)); err != nil {
		return errors.New(app.GetMsg(config.TKeyErrBirthday))
	}
	return nil
}

// normalizeBirthday stores what the user typed in canonical form.
func normalizeBirthday(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	d, err := birthday.Parse(s)
	if err != nil {
		return s
	}
	return d.String()
}
