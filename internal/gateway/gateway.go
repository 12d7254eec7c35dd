// Package gateway arms reminder notifications inside the running process.
package gateway

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
)

// ErrClosed is returned by ScheduleAt after Close.
var ErrClosed = errors.New(config.ErrGatewayClosed)

// Notifier displays a notification to the user.
type Notifier interface {
	Notify(title, body string)
}

// FyneNotifier delivers through the desktop notification service of a fyne app.
type FyneNotifier struct {
	App fyne.App
}

// Notify implements Notifier.
func (f FyneNotifier) Notify(title, body string) {
	f.App.SendNotification(fyne.NewNotification(title, body))
}

// Option configures a Local gateway.
type Option func(*Local)

// WithClock replaces time.Now when computing timer delays.
func WithClock(now func() time.Time) Option {
	return func(g *Local) { g.now = now }
}

// WithMinDelay overrides config.GatewayMinDelay.
func WithMinDelay(d time.Duration) Option {
	return func(g *Local) { g.minDelay = d }
}

// WithPermission sets the answer of the permission calls.
func WithPermission(granted bool) Option {
	return func(g *Local) { g.granted = granted }
}

// OnDelivered registers a callback run after each delivery.
func OnDelivered(fn func(model.ScheduledNotification)) Option {
	return func(g *Local) { g.delivered = fn }
}

type pending struct {
	n     model.ScheduledNotification
	timer *time.Timer
}

// Local keeps one timer per identifier. The queue lives in memory only and is
// empty after a restart.
type Local struct {
	notifier  Notifier
	now       func() time.Time
	minDelay  time.Duration
	granted   bool
	delivered func(model.ScheduledNotification)

	mu      sync.Mutex
	entries map[string]*pending
	closed  bool
}

// NewLocal returns a gateway delivering through n. Permission is granted by
// default since desktop notifications need no consent.
func NewLocal(n Notifier, opts ...Option) *Local {
	g := &Local{
		notifier: n,
		now:      time.Now,
		minDelay: config.GatewayMinDelay,
		granted:  true,
		entries:  make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RequestPermission implements engine.Gateway.
func (g *Local) RequestPermission(ctx context.Context) (bool, error) {
	return g.granted, ctx.Err()
}

// CheckPermission implements engine.Gateway.
func (g *Local) CheckPermission(ctx context.Context) (bool, error) {
	return g.granted, ctx.Err()
}

// ScheduleAt arms n, replacing any entry with the same identifier.
func (g *Local) ScheduleAt(ctx context.Context, n model.ScheduledNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrClosed
	}
	if old, ok := g.entries[n.Identifier]; ok {
		old.timer.Stop()
	}

	delay := max(n.FireAt.Sub(g.now()), g.minDelay)
	p := &pending{n: n}
	p.timer = time.AfterFunc(delay, func() { g.fire(p) })
	g.entries[n.Identifier] = p

	slog.Debug(config.MsgGatewayArmed,
		config.LogKeyComponent, config.CompGateway,
		config.LogKeyIdentifier, n.Identifier,
		config.LogKeyFireAt, n.FireAt)
	return nil
}

func (g *Local) fire(p *pending) {
	g.mu.Lock()
	if g.entries[p.n.Identifier] != p {
		// Replaced or cancelled after the timer was already running.
		g.mu.Unlock()
		return
	}
	delete(g.entries, p.n.Identifier)
	g.mu.Unlock()

	g.notifier.Notify(p.n.Title, p.n.Body)
	slog.Info(config.MsgGatewayFired,
		config.LogKeyComponent, config.CompGateway,
		config.LogKeyIdentifier, p.n.Identifier,
		config.LogKeyPersonID, p.n.Payload.PersonID)

	if g.delivered != nil {
		g.delivered(p.n)
	}
}

// Cancel disarms identifier. Unknown identifiers are ignored.
func (g *Local) Cancel(ctx context.Context, identifier string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.entries[identifier]
	if !ok {
		return nil
	}
	p.timer.Stop()
	delete(g.entries, identifier)

	slog.Debug(config.MsgGatewayCancelled,
		config.LogKeyComponent, config.CompGateway,
		config.LogKeyIdentifier, identifier)
	return nil
}

// ListScheduled returns the pending entries ordered by fire time.
func (g *Local) ListScheduled(ctx context.Context) ([]model.ScheduledNotification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	out := make([]model.ScheduledNotification, 0, len(g.entries))
	for _, p := range g.entries {
		out = append(out, p.n)
	}
	g.mu.Unlock()

	slices.SortFunc(out, func(a, b model.ScheduledNotification) int {
		if c := a.FireAt.Compare(b.FireAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Identifier, b.Identifier)
	})
	return out, nil
}

// Close stops every timer. Later ScheduleAt calls fail with ErrClosed.
func (g *Local) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, p := range g.entries {
		p.timer.Stop()
		delete(g.entries, id)
	}
	g.closed = true
	slog.Info(config.MsgGatewayClosed, config.LogKeyComponent, config.CompGateway)
}
