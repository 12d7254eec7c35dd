// Package feed renders armed reminders as an iCalendar document so any
// calendar client can subscribe to them.
package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
)

// Build returns one VEVENT per armed record still ahead of now.
// format renders the summary and description; engine.MessageFunc fits.
func Build(records []model.NotificationRecord, now time.Time, format func(name string, daysBefore int, backup bool) (title, body string)) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)

	stamp := ical.NewProp(config.PropDTStamp)
	stamp.SetDateTime(now.UTC())

	for _, rec := range records {
		if !rec.Scheduled || rec.NotificationDate.Before(now) {
			continue
		}
		title, body := format(rec.PersonName, rec.DaysBefore, false)

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatEventUID, rec.ID, config.ICalDomain))
		event.Props.SetText(config.PropSummary, title)
		event.Props.SetText(config.PropDescription, body)
		event.Props.Set(stamp)

		start := ical.NewProp(config.PropDTStart)
		start.SetDateTime(rec.NotificationDate.UTC())
		event.Props.Set(start)

		addAlarm(event, body)
		cal.Children = append(cal.Children, event.Component)
	}

	slog.Debug(config.MsgFeedBuilt,
		config.LogKeyComponent, config.CompFeed,
		config.LogKeyCount, len(cal.Children))

	// The encoder rejects a calendar without components.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

func addAlarm(event *ical.Event, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Raw value, SetText would add VALUE=TEXT.
	trigger := ical.NewProp(config.PropTrigger)
	trigger.Value = config.ICalTriggerAt
	alarm.Props.Set(trigger)

	event.Children = append(event.Children, alarm)
}
