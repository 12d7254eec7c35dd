// Package lifecycle connects user actions and application events to the
// scheduling engine: person edits, launch, foreground, periodic ticks and
// contacts imports.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/contacts"
	"github.com/tartampluch/birthday-reminder/internal/model"
	"github.com/tartampluch/birthday-reminder/internal/people"
)

// Engine is the subset of engine.Scheduler the triggers drive.
type Engine interface {
	Init(ctx context.Context) error
	Schedule(ctx context.Context, p model.Person) error
	Reschedule(ctx context.Context, p model.Person) error
	Cancel(ctx context.Context, personID string) error
	CheckAndReschedule(ctx context.Context) error
	CleanupPastNotifications(ctx context.Context) error
}

// PersonStore is the write side of the person store.
type PersonStore interface {
	Create(ctx context.Context, p model.Person) (model.Person, error)
	Upsert(ctx context.Context, p model.Person) error
	Get(ctx context.Context, id string) (model.Person, error)
	Update(ctx context.Context, p model.Person) error
	Delete(ctx context.Context, id string) error
}

// Importer reads persons from an address book.
type Importer interface {
	Import(ctx context.Context, src contacts.Source) ([]model.Person, error)
}

// Options are the optional collaborators of a Service.
type Options struct {
	Importer Importer

	// AfterChange runs after every trigger with the trigger name.
	AfterChange func(ctx context.Context, trigger string)
}

// SyncResult counts what a contacts import changed.
type SyncResult struct {
	Created   int
	Updated   int
	Unchanged int
}

// Service owns the triggers. Engine failures are logged and never returned;
// person store failures are.
type Service struct {
	engine Engine
	people PersonStore
	opts   Options

	// reconcileMu is held for the whole of a reconciliation pass.
	reconcileMu sync.Mutex
}

// New wires a Service around explicit handles.
func New(e Engine, p PersonStore, opts Options) *Service {
	return &Service{engine: e, people: p, opts: opts}
}

// CreatePerson stores a new card and schedules its reminders.
func (s *Service) CreatePerson(ctx context.Context, p model.Person) (model.Person, error) {
	created, err := s.people.Create(ctx, p)
	if err != nil {
		return model.Person{}, err
	}
	if created.HasBirthday() {
		s.logFailure(ctx, config.TriggerCreated, created.ID, s.engine.Schedule(ctx, created))
	}
	s.afterChange(ctx, config.TriggerCreated)
	return created, nil
}

// UpdatePerson stores an edited card and replaces its reminders. Removing the
// birthday cancels them.
func (s *Service) UpdatePerson(ctx context.Context, p model.Person) error {
	if err := s.people.Update(ctx, p); err != nil {
		return err
	}
	s.logFailure(ctx, config.TriggerUpdated, p.ID, s.engine.Reschedule(ctx, p))
	s.afterChange(ctx, config.TriggerUpdated)
	return nil
}

// DeletePerson removes a card and its reminders.
func (s *Service) DeletePerson(ctx context.Context, id string) error {
	if err := s.people.Delete(ctx, id); err != nil {
		return err
	}
	s.logFailure(ctx, config.TriggerDeleted, id, s.engine.Cancel(ctx, id))
	s.afterChange(ctx, config.TriggerDeleted)
	return nil
}

// Launch initializes the engine and runs a first reconciliation.
func (s *Service) Launch(ctx context.Context) {
	s.logFailure(ctx, config.TriggerLaunch, "", s.engine.Init(ctx))
	s.Reconcile(ctx, config.TriggerLaunch)
}

// Foreground reconciles when the user brings the application back.
func (s *Service) Foreground(ctx context.Context) {
	s.Reconcile(ctx, config.TriggerForeground)
}

// Reconcile repairs the gateway queue then drops past reminders. A trigger
// arriving while another pass runs is skipped; it reports false.
func (s *Service) Reconcile(ctx context.Context, trigger string) bool {
	log := slog.With(config.LogKeyComponent, config.CompLifecycle, config.LogKeyTrigger, trigger)

	if !s.reconcileMu.TryLock() {
		log.InfoContext(ctx, config.MsgReconcileBusy)
		return false
	}
	defer s.reconcileMu.Unlock()

	log.DebugContext(ctx, config.MsgReconcileStart)
	s.logFailure(ctx, trigger, "", s.engine.CheckAndReschedule(ctx))
	s.logFailure(ctx, trigger, "", s.engine.CleanupPastNotifications(ctx))
	log.DebugContext(ctx, config.MsgReconcileDone)

	s.afterChange(ctx, trigger)
	return true
}

// SyncContacts imports the address book and routes each card through the
// same engine calls as a manual edit. Unchanged cards are left alone.
func (s *Service) SyncContacts(ctx context.Context, src contacts.Source) (SyncResult, error) {
	var res SyncResult
	if s.opts.Importer == nil {
		return res, errors.New(config.ErrFetcherMissing)
	}

	persons, err := s.opts.Importer.Import(ctx, src)
	if err != nil {
		return res, err
	}

	log := slog.With(config.LogKeyComponent, config.CompLifecycle, config.LogKeyTrigger, config.TriggerImport)
	for _, p := range persons {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		existing, err := s.people.Get(ctx, p.ID)
		switch {
		case errors.Is(err, people.ErrPersonNotFound):
			if err := s.people.Upsert(ctx, p); err != nil {
				return res, err
			}
			if p.HasBirthday() {
				s.logFailure(ctx, config.TriggerImport, p.ID, s.engine.Schedule(ctx, p))
			}
			res.Created++
		case err != nil:
			return res, err
		case sameCard(existing, p):
			log.DebugContext(ctx, config.MsgPersonUnchanged, config.LogKeyPersonID, p.ID)
			res.Unchanged++
			continue
		default:
			p.PhotoPath = existing.PhotoPath
			if err := s.people.Upsert(ctx, p); err != nil {
				return res, err
			}
			s.logFailure(ctx, config.TriggerImport, p.ID, s.engine.Reschedule(ctx, p))
			res.Updated++
		}
		log.DebugContext(ctx, config.MsgPersonImported, config.LogKeyPersonID, p.ID, config.LogKeyName, p.Name)
	}

	log.InfoContext(ctx, config.MsgSyncSuccess,
		config.LogKeyCreated, res.Created,
		config.LogKeyUpdated, res.Updated,
		config.LogKeyUnchanged, res.Unchanged)
	s.afterChange(ctx, config.TriggerImport)
	return res, nil
}

func sameCard(a, b model.Person) bool {
	return a.Name == b.Name && a.Birthday == b.Birthday && a.Description == b.Description
}

func (s *Service) afterChange(ctx context.Context, trigger string) {
	if s.opts.AfterChange != nil {
		s.opts.AfterChange(ctx, trigger)
	}
}

func (s *Service) logFailure(ctx context.Context, trigger, personID string, err error) {
	if err == nil {
		return
	}
	slog.ErrorContext(ctx, config.MsgTriggerFailed,
		config.LogKeyComponent, config.CompLifecycle,
		config.LogKeyTrigger, trigger,
		config.LogKeyPersonID, personID,
		config.LogKeyError, err)
}
