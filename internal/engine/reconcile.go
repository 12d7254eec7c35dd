package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
	"github.com/tartampluch/birthday-reminder/internal/people"
)

// UpdateSettings validates and persists new settings, then either tears every
// reminder down (disabled) or rebuilds all of them (enabled).
// A failed save is returned and nothing else is touched.
func (s *Scheduler) UpdateSettings(ctx context.Context, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	settings = settings.Clone()
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSettingsWrite, err)
	}

	if !settings.Enabled {
		return s.teardown(ctx)
	}
	return s.rebuild(ctx, settings)
}

// CleanupPastNotifications removes records whose fire time has passed and
// schedules their person again for the next cycle.
func (s *Scheduler) CleanupPastNotifications(ctx context.Context) error {
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	log := slog.With(config.LogKeyComponent, config.CompEngine)

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return err
	}
	if !settings.Enabled {
		log.DebugContext(ctx, config.MsgCleanupSkip)
		return nil
	}

	records, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	log.DebugContext(ctx, config.MsgCleanupStart, config.LogKeyCount, len(records))

	handled := make(map[string]struct{})
	rolled := 0
	for _, rec := range records {
		if rec.NotificationDate.After(now) {
			continue
		}

		log.InfoContext(ctx, config.MsgCleanupPast,
			config.LogKeyRecordID, rec.ID,
			config.LogKeyPersonID, rec.PersonID,
			config.LogKeyFireAt, rec.NotificationDate)

		s.disarm(ctx, rec)
		if err := s.store.Delete(ctx, rec.ID); err != nil {
			log.WarnContext(ctx, config.MsgRecordFailed, config.LogKeyRecordID, rec.ID, config.LogKeyError, err)
			continue
		}

		if _, done := handled[rec.PersonID]; done {
			continue
		}
		handled[rec.PersonID] = struct{}{}

		p, ok := s.resolvePerson(ctx, rec)
		if !ok {
			continue
		}
		s.noteSiblings(ctx, log, rec.PersonID, now)

		if err := s.schedule(ctx, p, settings); err != nil {
			if errors.Is(err, ErrPermissionDenied) {
				return err
			}
			log.WarnContext(ctx, config.MsgRebuildPerson, config.LogKeyPersonID, p.ID, config.LogKeyError, err)
			continue
		}
		rolled++
	}

	log.DebugContext(ctx, config.MsgCleanupDone, config.LogKeyCount, rolled)
	return nil
}

// CheckAndReschedule compares the gateway queue with the stored records and
// rebuilds everything when the queue looks unhealthy: too few entries, none
// firing soon, or a stored record that never got armed. Entries whose record
// no longer exists are cancelled first.
func (s *Scheduler) CheckAndReschedule(ctx context.Context) error {
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	log := slog.With(config.LogKeyComponent, config.CompEngine)

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return err
	}
	if !settings.Enabled {
		log.DebugContext(ctx, config.MsgCleanupSkip)
		return nil
	}

	entries, err := s.gateway.ListScheduled(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrGatewayList, err)
	}
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}

	known := make(map[string]struct{}, len(records))
	unarmed := 0
	for _, rec := range records {
		known[rec.ID] = struct{}{}
		if !rec.Scheduled {
			unarmed++
		}
	}

	now := s.clock.Now()
	attributable := 0
	nearest := false
	for _, e := range entries {
		if e.Payload.RecordID == "" {
			continue
		}
		if _, ok := known[e.Payload.RecordID]; !ok {
			if err := s.gateway.Cancel(ctx, e.Identifier); err != nil {
				log.WarnContext(ctx, config.MsgCancelFailed, config.LogKeyIdentifier, e.Identifier, config.LogKeyError, err)
				continue
			}
			log.InfoContext(ctx, config.MsgOrphanCancelled, config.LogKeyIdentifier, e.Identifier)
			continue
		}
		attributable++
		if e.FireAt.Sub(now) <= config.HealthWindow {
			nearest = true
		}
	}

	if attributable >= config.MinHealthyScheduled && nearest && unarmed == 0 {
		log.DebugContext(ctx, config.MsgQueueHealthy, config.LogKeyEntries, attributable)
		return nil
	}

	log.InfoContext(ctx, config.MsgDriftDetected,
		config.LogKeyEntries, attributable,
		config.LogKeyNearest, nearest,
		config.LogKeyUnarmed, unarmed)
	return s.rebuild(ctx, settings)
}

// rebuild schedules every known person from scratch and purges records of
// people that no longer exist. It requires s.mu.
func (s *Scheduler) rebuild(ctx context.Context, settings model.Settings) error {
	if !s.permitted.Load() {
		return ErrPermissionDenied
	}
	log := slog.With(config.LogKeyComponent, config.CompEngine)

	persons, err := s.people.List(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrPeopleList, err)
	}
	log.InfoContext(ctx, config.MsgRebuildStart, config.LogKeyCount, len(persons))

	known := make(map[string]struct{}, len(persons))
	failed := 0
	for _, p := range persons {
		known[p.ID] = struct{}{}

		var err error
		if p.HasBirthday() {
			err = s.schedule(ctx, p, settings)
		} else {
			err = s.cancel(ctx, p.ID)
		}
		if errors.Is(err, ErrPermissionDenied) {
			return err
		}
		if err != nil {
			failed++
			log.WarnContext(ctx, config.MsgRebuildPerson, config.LogKeyPersonID, p.ID, config.LogKeyError, err)
		}
	}

	records, err := s.store.ListAll(ctx)
	if err != nil {
		log.WarnContext(ctx, config.MsgRecordFailed, config.LogKeyError, err)
		return nil
	}
	for _, rec := range records {
		if _, ok := known[rec.PersonID]; ok {
			continue
		}
		log.InfoContext(ctx, config.MsgPurgeUnknown, config.LogKeyPersonID, rec.PersonID, config.LogKeyRecordID, rec.ID)
		s.disarm(ctx, rec)
		if err := s.store.Delete(ctx, rec.ID); err != nil {
			log.WarnContext(ctx, config.MsgRecordFailed, config.LogKeyRecordID, rec.ID, config.LogKeyError, err)
		}
	}

	log.InfoContext(ctx, config.MsgRebuildDone, config.LogKeyCount, len(persons)-failed)
	return nil
}

// teardown disarms and deletes every record. It requires s.mu.
func (s *Scheduler) teardown(ctx context.Context) error {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		s.disarm(ctx, rec)
		if err := s.store.Delete(ctx, rec.ID); err != nil {
			slog.WarnContext(ctx, config.MsgRecordFailed,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyRecordID, rec.ID,
				config.LogKeyError, err)
		}
	}
	slog.InfoContext(ctx, config.MsgTeardown,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, len(records))
	return nil
}

// resolvePerson prefers current person data over the record snapshot.
// A person that no longer exists is not rescheduled.
func (s *Scheduler) resolvePerson(ctx context.Context, rec model.NotificationRecord) (model.Person, bool) {
	p, err := s.people.Get(ctx, rec.PersonID)
	switch {
	case err == nil:
		return p, true
	case errors.Is(err, people.ErrPersonNotFound):
		return model.Person{}, false
	default:
		slog.WarnContext(ctx, config.MsgPersonLookupFail,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyPersonID, rec.PersonID,
			config.LogKeyError, err)
		return model.Person{ID: rec.PersonID, Name: rec.PersonName, Birthday: rec.Birthday}, true
	}
}

// noteSiblings logs still-future records that the following schedule call
// will discard and regenerate along with the expired one.
func (s *Scheduler) noteSiblings(ctx context.Context, log *slog.Logger, personID string, now time.Time) {
	siblings, err := s.store.ListByPerson(ctx, personID)
	if err != nil {
		return
	}
	future := 0
	for _, rec := range siblings {
		if rec.NotificationDate.After(now) {
			future++
		}
	}
	if future > 0 {
		log.InfoContext(ctx, config.MsgCleanupSiblings, config.LogKeyPersonID, personID, config.LogKeyCount, future)
	}
}
