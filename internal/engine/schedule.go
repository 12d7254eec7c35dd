package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/birthday-reminder/internal/birthday"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
)

// Schedule (re)creates the reminders of one person for the next anniversary.
// Offsets whose fire time already passed are skipped for this cycle. A person
// without a usable birthday ends up with no reminders and no error.
func (s *Scheduler) Schedule(ctx context.Context, p model.Person) error {
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return err
	}
	return s.schedule(ctx, p, settings)
}

// Cancel disarms and deletes every reminder of a person. No reminders is a no-op.
func (s *Scheduler) Cancel(ctx context.Context, personID string) error {
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancel(ctx, personID)
}

// Reschedule replaces a person's reminders after an edit. A person whose
// birthday was removed is only cancelled.
func (s *Scheduler) Reschedule(ctx context.Context, p model.Person) error {
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !p.HasBirthday() {
		return s.cancel(ctx, p.ID)
	}
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return err
	}
	return s.schedule(ctx, p, settings)
}

// schedule requires s.mu.
func (s *Scheduler) schedule(ctx context.Context, p model.Person, settings model.Settings) error {
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyPersonID, p.ID,
	)

	if !settings.Enabled {
		log.DebugContext(ctx, config.MsgScheduleDisabled)
		return s.cancel(ctx, p.ID)
	}
	if !s.permitted.Load() {
		return ErrPermissionDenied
	}

	// Cancel first so that each (person, offset) pair has at most one record.
	if err := s.cancel(ctx, p.ID); err != nil {
		return err
	}

	b, err := birthday.Parse(p.Birthday)
	if err != nil {
		log.DebugContext(ctx, config.MsgScheduleNoBday, config.LogKeyValue, p.Birthday)
		return nil
	}

	now := s.clock.Now()
	cycle := birthday.NextCycle(b, now)
	log.DebugContext(ctx, config.MsgScheduleStart,
		config.LogKeyOccursOn, cycle.OccursOn.Format(config.DateFormatFullDash),
		config.LogKeyDaysBefore, settings.DaysBefore)

	for i, days := range settings.DaysBefore {
		fireAt := fireInstant(cycle.OccursOn, days, settings.Time, i)
		if !fireAt.After(now) {
			log.DebugContext(ctx, config.MsgOffsetSkipped,
				config.LogKeyDaysBefore, days,
				config.LogKeyFireAt, fireAt)
			continue
		}
		s.arm(ctx, log, p, days, fireAt, now)
	}
	return nil
}

// fireInstant is the anniversary minus daysBefore at the configured time of
// day, staggered by index so that offsets never share an instant.
func fireInstant(occursOn time.Time, daysBefore int, tod model.TimeOfDay, index int) time.Time {
	y, m, d := occursOn.AddDate(0, 0, -daysBefore).Date()
	at := time.Date(y, m, d, tod.Hours, tod.Minutes, 0, 0, occursOn.Location())
	return at.Add(time.Duration(index) * config.StaggerStep)
}

// arm persists a record, hands it to the gateway and marks it scheduled.
// Failures are logged; a record that could not be armed stays unscheduled
// and is picked up as drift by CheckAndReschedule.
func (s *Scheduler) arm(ctx context.Context, log *slog.Logger, p model.Person, days int, fireAt, now time.Time) {
	rec := &model.NotificationRecord{
		ID:               uuid.NewString(),
		PersonID:         p.ID,
		PersonName:       p.Name,
		Birthday:         p.Birthday,
		NotificationDate: fireAt,
		DaysBefore:       days,
		CreatedAt:        now,
	}
	log = log.With(config.LogKeyRecordID, rec.ID, config.LogKeyDaysBefore, days)

	if err := s.store.Create(ctx, rec); err != nil {
		log.ErrorContext(ctx, config.MsgRecordFailed, config.LogKeyError, err)
		return
	}

	ids, err := s.armRecord(ctx, log, *rec)
	if err != nil {
		log.WarnContext(ctx, config.MsgArmFailed, config.LogKeyError, err)
		return
	}

	rec.Scheduled = true
	rec.ExternalIDs = ids
	if err := s.store.Update(ctx, rec); err != nil {
		// Cancel falls back to the derived identifiers for this record.
		log.WarnContext(ctx, config.MsgMarkFailed, config.LogKeyError, err)
		return
	}

	log.InfoContext(ctx, config.MsgRecordArmed,
		config.LogKeyFireAt, fireAt,
		config.LogKeyCountdown, birthday.FormatTimeUntil(fireAt, now))
}

// armRecord schedules the primary notification and, for time-critical
// offsets, the delayed backup. It returns the identifiers actually armed.
func (s *Scheduler) armRecord(ctx context.Context, log *slog.Logger, rec model.NotificationRecord) ([]string, error) {
	title, body := s.format(rec.PersonName, rec.DaysBefore, false)
	primary := model.ScheduledNotification{
		Identifier: rec.PrimaryID(),
		FireAt:     rec.NotificationDate,
		Title:      title,
		Body:       body,
		Payload:    payloadOf(rec, false),
	}
	if err := s.gateway.ScheduleAt(ctx, primary); err != nil {
		return nil, err
	}
	ids := []string{primary.Identifier}

	if !rec.HasBackup() {
		return ids, nil
	}

	title, body = s.format(rec.PersonName, rec.DaysBefore, true)
	backup := model.ScheduledNotification{
		Identifier: rec.BackupID(),
		FireAt:     rec.NotificationDate.Add(config.BackupDelay),
		Title:      title,
		Body:       body,
		Payload:    payloadOf(rec, true),
	}
	if err := s.gateway.ScheduleAt(ctx, backup); err != nil {
		log.WarnContext(ctx, config.MsgBackupFailed, config.LogKeyError, err)
		return ids, nil
	}
	return append(ids, backup.Identifier), nil
}

func payloadOf(rec model.NotificationRecord, backup bool) model.NotificationPayload {
	return model.NotificationPayload{
		RecordID:   rec.ID,
		PersonID:   rec.PersonID,
		PersonName: rec.PersonName,
		Birthday:   rec.Birthday,
		DaysBefore: rec.DaysBefore,
		Backup:     backup,
	}
}

// cancel requires s.mu.
func (s *Scheduler) cancel(ctx context.Context, personID string) error {
	records, err := s.store.ListByPerson(ctx, personID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	for _, rec := range records {
		s.disarm(ctx, rec)
	}
	if err := s.store.DeleteByPerson(ctx, personID); err != nil {
		return err
	}

	slog.DebugContext(ctx, config.MsgCancelled,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyPersonID, personID,
		config.LogKeyCount, len(records))
	return nil
}

// disarm cancels every gateway entry of one record. Gateway failures are
// logged; a surviving entry is pruned later as an orphan.
func (s *Scheduler) disarm(ctx context.Context, rec model.NotificationRecord) {
	for _, id := range rec.Identifiers() {
		if err := s.gateway.Cancel(ctx, id); err != nil {
			slog.WarnContext(ctx, config.MsgCancelFailed,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyIdentifier, id,
				config.LogKeyError, err)
		}
	}
}
