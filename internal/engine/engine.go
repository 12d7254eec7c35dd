// Package engine turns people and reminder settings into armed notifications
// and keeps the record store and the gateway queue consistent over time.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/birthday"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
)

// ErrPermissionDenied is returned by scheduling operations when the gateway
// refused notification permission for this session.
var ErrPermissionDenied = errors.New(config.ErrPermissionDenied)

// RecordStore persists notification records and the settings singleton.
type RecordStore interface {
	Init(ctx context.Context) error
	ListAll(ctx context.Context) ([]model.NotificationRecord, error)
	ListByPerson(ctx context.Context, personID string) ([]model.NotificationRecord, error)
	Create(ctx context.Context, rec *model.NotificationRecord) error
	Update(ctx context.Context, rec *model.NotificationRecord) error
	Delete(ctx context.Context, id string) error
	DeleteByPerson(ctx context.Context, personID string) error
	GetSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) error
}

// PersonSource is the read side of the person store.
// Get must wrap people.ErrPersonNotFound for unknown ids.
type PersonSource interface {
	List(ctx context.Context) ([]model.Person, error)
	Get(ctx context.Context, id string) (model.Person, error)
}

// Gateway arms and disarms notifications at the platform level.
type Gateway interface {
	RequestPermission(ctx context.Context) (bool, error)
	CheckPermission(ctx context.Context) (bool, error)
	ScheduleAt(ctx context.Context, n model.ScheduledNotification) error
	Cancel(ctx context.Context, identifier string) error
	ListScheduled(ctx context.Context) ([]model.ScheduledNotification, error)
}

// Clock is the time source for every fire-time comparison.
type Clock interface {
	Now() time.Time
}

// RealClock reads the local wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// MessageFunc renders the title and body of a reminder.
type MessageFunc func(name string, daysBefore int, backup bool) (title, body string)

// Deps are the collaborators of a Scheduler.
type Deps struct {
	Store   RecordStore
	People  PersonSource
	Gateway Gateway

	// Clock defaults to RealClock.
	Clock Clock

	// Format defaults to birthday.ReminderMessage.
	Format MessageFunc
}

type state int

const (
	stateUninitialized state = iota
	stateReady
)

// Scheduler is the reminder engine. Create one per process with New and share it.
type Scheduler struct {
	store   RecordStore
	people  PersonSource
	gateway Gateway
	clock   Clock

	// initMu guards state; a failed Init leaves the engine uninitialized so
	// the next call retries.
	initMu    sync.Mutex
	state     state
	permitted atomic.Bool

	// mu serializes every compound operation (cancel + create, rebuilds).
	mu     sync.Mutex
	format MessageFunc
}

// New wires a Scheduler. It performs no I/O; see Init.
func New(d Deps) *Scheduler {
	s := &Scheduler{
		store:   d.Store,
		people:  d.People,
		gateway: d.Gateway,
		clock:   d.Clock,
		format:  d.Format,
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.format == nil {
		s.format = birthday.ReminderMessage
	}
	return s
}

// Init prepares the store and settles notification permission.
// Every public operation calls it lazily, so triggers may run before it.
func (s *Scheduler) Init(ctx context.Context) error {
	return s.ensureReady(ctx)
}

// Ready reports whether Init has completed.
func (s *Scheduler) Ready() bool {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	return s.state == stateReady
}

func (s *Scheduler) ensureReady(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.state == stateReady {
		return nil
	}

	if err := s.store.Init(ctx); err != nil {
		return fmt.Errorf("%s: %w", config.ErrEngineInit, err)
	}

	granted, err := s.gateway.CheckPermission(ctx)
	if err == nil && !granted {
		granted, err = s.gateway.RequestPermission(ctx)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrEngineInit, err)
	}
	s.setPermitted(granted)

	s.state = stateReady
	slog.InfoContext(ctx, config.MsgEngineReady,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyEnabled, granted)
	return nil
}

func (s *Scheduler) setPermitted(granted bool) {
	s.permitted.Store(granted)
	if !granted {
		slog.Warn(config.MsgPermissionDenied, config.LogKeyComponent, config.CompEngine)
	}
}

// RequestPermission asks the gateway again, e.g. after the user changed the
// platform setting, and updates the session permission.
func (s *Scheduler) RequestPermission(ctx context.Context) (bool, error) {
	if err := s.ensureReady(ctx); err != nil {
		return false, err
	}
	granted, err := s.gateway.RequestPermission(ctx)
	if err != nil {
		return false, err
	}
	s.setPermitted(granted)
	return granted, nil
}

// CheckPermission queries the gateway without prompting.
func (s *Scheduler) CheckPermission(ctx context.Context) (bool, error) {
	return s.gateway.CheckPermission(ctx)
}

// SetMessageFormat swaps the reminder text renderer, e.g. on language change.
// Already armed notifications keep their text until rescheduled.
func (s *Scheduler) SetMessageFormat(fn MessageFunc) {
	if fn == nil {
		fn = birthday.ReminderMessage
	}
	s.mu.Lock()
	s.format = fn
	s.mu.Unlock()
}

// Records returns every stored record ordered by fire time.
func (s *Scheduler) Records(ctx context.Context) ([]model.NotificationRecord, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	return s.store.ListAll(ctx)
}

// Settings returns the persisted reminder settings.
func (s *Scheduler) Settings(ctx context.Context) (model.Settings, error) {
	if err := s.ensureReady(ctx); err != nil {
		return model.Settings{}, err
	}
	return s.loadSettings(ctx)
}

func (s *Scheduler) loadSettings(ctx context.Context) (model.Settings, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return model.Settings{}, fmt.Errorf("%s: %w", config.ErrSettingsRead, err)
	}
	return settings, nil
}
