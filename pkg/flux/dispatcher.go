// Package flux implements the dashboard's unidirectional data flow core: a
// Dispatcher that broadcasts a payload to every registered listener and
// tracks per-listener completion, Actions that own a Dispatcher, and
// RequestActions that wrap an asynchronous loader in a Pending/Success/Error
// lifecycle.
//
// Listeners run on their own goroutines and are entered in registration
// order: a listener's function is called only after the previous one has
// been entered. Completion order is unconstrained. A dispatch settles once every listener
// has returned, regardless of outcome: a failing or panicking listener
// completes its slot with an error instead of stalling the others.
package flux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrCircularWait is returned by WaitFor when a listener asks to wait for its
// own completion slot.
var ErrCircularWait = errors.New("flux: listener cannot wait for itself")

// ErrListenerPanic is wrapped by the ListenerError recorded for a listener
// that panicked.
var ErrListenerPanic = errors.New("flux: listener panicked")

// ListenerID identifies a registration on one Dispatcher. IDs are never
// reused.
type ListenerID uint64

// Listener reacts to a dispatched payload. Returning an error marks the
// listener's completion slot as failed; it never affects other listeners.
type Listener[P any] func(ctx context.Context, payload P) error

// ListenerError records the failure of a single listener within a dispatch.
type ListenerError struct {
	Dispatcher string
	Listener   ListenerID
	Err        error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("flux: %s listener %d: %v", e.Dispatcher, e.Listener, e.Err)
}

func (e *ListenerError) Unwrap() error { return e.Err }

type registration[P any] struct {
	id ListenerID
	fn Listener[P]
}

// Dispatcher fans a payload out to its listeners. It is safe for concurrent
// use.
type Dispatcher[P any] struct {
	name   string
	logger *slog.Logger

	mu        sync.RWMutex
	nextID    ListenerID
	listeners []registration[P]
	last      *Dispatch[P]
}

// NewDispatcher returns an empty dispatcher. The name appears in logs and
// errors. A nil logger discards output.
func NewDispatcher[P any](name string, logger *slog.Logger) *Dispatcher[P] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher[P]{
		name:   name,
		logger: logger.With("component", "dispatcher", "dispatcher", name),
	}
}

// Name returns the dispatcher name.
func (d *Dispatcher[P]) Name() string { return d.name }

// Register adds a listener. It takes part in every Trigger that starts after
// Register returns.
func (d *Dispatcher[P]) Register(fn Listener[P]) ListenerID {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	d.listeners = append(d.listeners, registration[P]{id: d.nextID, fn: fn})
	return d.nextID
}

// Unregister removes a listener. In-flight dispatches still wait for it. It
// reports whether the id was registered.
func (d *Dispatcher[P]) Unregister(id ListenerID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, r := range d.listeners {
		if r.id == id {
			d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered listeners.
func (d *Dispatcher[P]) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}

// Trigger broadcasts payload to every currently registered listener and
// returns immediately with a handle for the dispatch. Use Dispatch.Wait to
// block until all listeners have completed.
func (d *Dispatcher[P]) Trigger(ctx context.Context, payload P) *Dispatch[P] {
	d.mu.Lock()
	regs := make([]registration[P], len(d.listeners))
	copy(regs, d.listeners)
	x := newDispatch(d, payload, regs)
	d.last = x
	d.mu.Unlock()

	d.logger.Debug("trigger", "dispatch", x.id, "listeners", len(regs))

	if len(regs) == 0 {
		close(x.done)
		return x
	}
	var prev <-chan struct{}
	for _, r := range regs {
		entered := make(chan struct{})
		go x.run(ctx, r, prev, entered)
		prev = entered
	}
	return x
}

// WaitFor blocks until the given listeners have completed the current
// dispatch. Inside a listener the current dispatch is the one being served;
// elsewhere it is the most recent Trigger. With no ids it waits for every
// listener of that dispatch except the caller. Listeners registered after
// the dispatch started are not part of it and are skipped.
//
// WaitFor returns nil when there has been no Trigger yet, ErrCircularWait if
// a listener names itself or a listener that is already waiting on it,
// directly or through others, ctx.Err() if ctx ends first, and otherwise
// the joined errors of the awaited listeners.
func (d *Dispatcher[P]) WaitFor(ctx context.Context, ids ...ListenerID) error {
	var x *Dispatch[P]
	var self ListenerID
	if sc, ok := ctx.Value(scopeKey[P]{d}).(scope[P]); ok {
		x, self = sc.dispatch, sc.id
	} else {
		d.mu.RLock()
		x = d.last
		d.mu.RUnlock()
	}
	if x == nil {
		return nil
	}

	targets := ids
	if len(targets) == 0 {
		targets = make([]ListenerID, 0, len(x.order))
		for _, id := range x.order {
			if id != self {
				targets = append(targets, id)
			}
		}
	}

	var errs []error
	for _, id := range targets {
		if self != 0 && id == self {
			return ErrCircularWait
		}
		s, ok := x.slots[id]
		if !ok {
			continue
		}
		failed, err := x.await(ctx, self, id, s)
		if err != nil {
			return err
		}
		if failed != nil {
			errs = append(errs, failed)
		}
	}
	return errors.Join(errs...)
}

// await blocks until target's slot completes and returns the slot's error
// as failed. err is set when the wait itself is abandoned. A listener
// (self != 0) records the edge in the wait graph for the duration so that a
// wait closing a cycle fails instead of deadlocking.
func (x *Dispatch[P]) await(ctx context.Context, self, target ListenerID, s *slot) (failed, err error) {
	if self != 0 {
		if err := x.beginWait(self, target); err != nil {
			return nil, err
		}
		defer x.endWait(self)
	}
	select {
	case <-s.done:
		return s.err, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (x *Dispatch[P]) beginWait(self, target ListenerID) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	cur := target
	for range len(x.order) + 1 {
		if cur == self {
			return fmt.Errorf("%w: listener %d waits on %d", ErrCircularWait, self, target)
		}
		next, ok := x.waiting[cur]
		if !ok {
			break
		}
		cur = next
	}
	x.waiting[self] = target
	return nil
}

func (x *Dispatch[P]) endWait(self ListenerID) {
	x.mu.Lock()
	delete(x.waiting, self)
	x.mu.Unlock()
}

// scopeKey marks a listener's context with the dispatch it serves. Keyed by
// dispatcher so nested dispatchers do not see each other's scope.
type scopeKey[P any] struct{ d *Dispatcher[P] }

type scope[P any] struct {
	dispatch *Dispatch[P]
	id       ListenerID
}

type slot struct {
	done chan struct{}
	err  error
}

// Dispatch is the handle for one Trigger call.
type Dispatch[P any] struct {
	id         string
	dispatcher *Dispatcher[P]
	payload    P
	order      []ListenerID
	slots      map[ListenerID]*slot
	remaining  atomic.Int64
	done       chan struct{}

	// waiting maps a listener blocked in WaitFor to the slot it waits on.
	mu      sync.Mutex
	waiting map[ListenerID]ListenerID
}

func newDispatch[P any](d *Dispatcher[P], payload P, regs []registration[P]) *Dispatch[P] {
	x := &Dispatch[P]{
		id:         uuid.NewString(),
		dispatcher: d,
		payload:    payload,
		order:      make([]ListenerID, len(regs)),
		slots:      make(map[ListenerID]*slot, len(regs)),
		done:       make(chan struct{}),
		waiting:    make(map[ListenerID]ListenerID),
	}
	for i, r := range regs {
		x.order[i] = r.id
		x.slots[r.id] = &slot{done: make(chan struct{})}
	}
	x.remaining.Store(int64(len(regs)))
	return x
}

// run waits for the previous listener to be entered, then calls r.
func (x *Dispatch[P]) run(ctx context.Context, r registration[P], after <-chan struct{}, entered chan struct{}) {
	if after != nil {
		<-after
	}
	close(entered)

	s := x.slots[r.id]
	defer func() {
		if rec := recover(); rec != nil {
			s.err = &ListenerError{
				Dispatcher: x.dispatcher.name,
				Listener:   r.id,
				Err:        fmt.Errorf("%w: %v", ErrListenerPanic, rec),
			}
		}
		if s.err != nil {
			x.dispatcher.logger.Warn("listener failed", "dispatch", x.id, "listener", r.id, "error", s.err)
		}
		close(s.done)
		if x.remaining.Add(-1) == 0 {
			close(x.done)
		}
	}()

	lctx := context.WithValue(ctx, scopeKey[P]{x.dispatcher}, scope[P]{dispatch: x, id: r.id})
	if err := r.fn(lctx, x.payload); err != nil {
		s.err = &ListenerError{Dispatcher: x.dispatcher.name, Listener: r.id, Err: err}
	}
}

// ID returns the dispatch correlation id.
func (x *Dispatch[P]) ID() string { return x.id }

// Payload returns the dispatched payload.
func (x *Dispatch[P]) Payload() P { return x.payload }

// Done is closed once every listener has completed.
func (x *Dispatch[P]) Done() <-chan struct{} { return x.done }

// Wait blocks until every listener has completed and returns the original
// payload with the joined listener errors, or ctx.Err() if ctx ends first.
func (x *Dispatch[P]) Wait(ctx context.Context) (P, error) {
	select {
	case <-x.done:
		return x.payload, x.Err()
	case <-ctx.Done():
		return x.payload, ctx.Err()
	}
}

// Err returns the joined listener errors. It is nil until Done is closed.
func (x *Dispatch[P]) Err() error {
	select {
	case <-x.done:
	default:
		return nil
	}
	var errs []error
	for _, id := range x.order {
		if err := x.slots[id].err; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
