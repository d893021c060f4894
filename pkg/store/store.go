// Package store provides the stateful half of the flux data flow. A Store
// binds to one or more actions, mutates its private state in reaction to
// dispatched payloads, and tells view code that something changed. Views
// read state only through the concrete store's getters.
//
// Concrete stores embed Store and keep their state in slots created with
// BindSingle and BindMultiple, which freeze every write so readers always
// see stable snapshots.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/infoboard/pkg/flux"
)

// SkipEmit may be returned by a handler to suppress the automatic change
// event for that payload.
var SkipEmit = errors.New("store: skip emit")

// Subscription identifies a change callback registered with OnChange.
type Subscription uint64

type subscriber struct {
	id Subscription
	fn func()
}

// Store is the change-notification core embedded by concrete stores. It is
// safe for concurrent use.
type Store struct {
	name   string
	logger *slog.Logger
	props  *Props

	mu     sync.Mutex
	nextID Subscription
	subs   []subscriber
}

// New returns a store with an empty state container. A nil logger discards
// output.
func New(name string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		name:   name,
		logger: logger.With("component", "store", "store", name),
		props:  newProps(name),
	}
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// Logger returns the store's logger.
func (s *Store) Logger() *slog.Logger { return s.logger }

// Props returns the store's namespaced state container.
func (s *Store) Props() *Props { return s.props }

// OnChange registers fn to run after every change event.
func (s *Store) OnChange(fn func()) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.subs = append(s.subs, subscriber{id: s.nextID, fn: fn})
	return s.nextID
}

// OffChange removes a change callback. Unknown subscriptions are ignored.
func (s *Store) OffChange(sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.subs {
		if c.id == sub {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// EmitChange calls every change callback in subscription order. Callbacks
// run outside the lock, so they may subscribe or unsubscribe.
func (s *Store) EmitChange() {
	s.mu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, c := range subs {
		s.notify(c)
	}
}

func (s *Store) notify(c subscriber) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("change callback panicked", "subscription", c.id, "panic", r)
		}
	}()
	c.fn()
}

// Handlers routes RequestAction payloads by state. A nil handler ignores
// that state, except that an unhandled Error result is logged.
type Handlers[T any] struct {
	OnSuccess func(ctx context.Context, data T) error
	OnError   func(ctx context.Context, err error) error
	OnPending func(ctx context.Context) error

	// ManualEmit disables the change event after a handler runs. The store
	// then calls EmitChange itself.
	ManualEmit bool
}

// BindTo registers s as a listener of action. After the handler for the
// payload's state runs, a change is emitted unless ManualEmit is set or the
// handler returned SkipEmit. Any other handler error fails the listener
// and suppresses the emit. The returned id is the store's dispatch token
// for WaitFor.
func BindTo[In, Out any](s *Store, action *flux.RequestAction[In, Out], h Handlers[Out]) flux.ListenerID {
	return action.Listen(func(ctx context.Context, res flux.Result[Out]) error {
		ctx = context.WithValue(ctx, loadedAtKey{}, res.At)
		var run func() error
		switch res.State {
		case flux.StatePending:
			if h.OnPending != nil {
				run = func() error { return h.OnPending(ctx) }
			}
		case flux.StateSuccess:
			if h.OnSuccess != nil {
				run = func() error { return h.OnSuccess(ctx, res.Data) }
			}
		case flux.StateError:
			if h.OnError != nil {
				run = func() error { return h.OnError(ctx, res.Err) }
			} else {
				s.logger.Warn("load failed", "action", action.Name(), "error", res.Err)
			}
		}
		if run == nil {
			return nil
		}
		return s.after(run(), h.ManualEmit)
	})
}

type loadedAtKey struct{}

// LoadedAt returns the time stamped on the result a BindTo handler is
// handling, or the zero time outside one.
func LoadedAt(ctx context.Context) time.Time {
	at, _ := ctx.Value(loadedAtKey{}).(time.Time)
	return at
}

// Listen registers s as a listener of a plain action. fn follows the same
// emit rules as a BindTo handler.
func Listen[P any](s *Store, action *flux.Action[P], fn func(ctx context.Context, payload P) error) flux.ListenerID {
	return action.Listen(func(ctx context.Context, payload P) error {
		return s.after(fn(ctx, payload), false)
	})
}

func (s *Store) after(err error, manual bool) error {
	if errors.Is(err, SkipEmit) {
		return nil
	}
	if err != nil {
		return err
	}
	if !manual {
		s.EmitChange()
	}
	return nil
}
