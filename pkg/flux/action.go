package flux

import (
	"context"
	"log/slog"
)

// Action is a named event channel. It owns a Dispatcher and exposes only the
// listen/trigger surface.
type Action[P any] struct {
	name       string
	dispatcher *Dispatcher[P]
}

// NewAction creates an action with its own dispatcher.
func NewAction[P any](name string, logger *slog.Logger) *Action[P] {
	return &Action[P]{
		name:       name,
		dispatcher: NewDispatcher[P](name, logger),
	}
}

// Name returns the action name.
func (a *Action[P]) Name() string { return a.name }

// Listen registers fn and returns its id, which doubles as the dispatch
// token other listeners pass to WaitFor.
func (a *Action[P]) Listen(fn Listener[P]) ListenerID {
	return a.dispatcher.Register(fn)
}

// Unlisten removes a listener.
func (a *Action[P]) Unlisten(id ListenerID) bool {
	return a.dispatcher.Unregister(id)
}

// Trigger broadcasts payload to every listener.
func (a *Action[P]) Trigger(ctx context.Context, payload P) *Dispatch[P] {
	return a.dispatcher.Trigger(ctx, payload)
}

// WaitFor waits for other listeners of the current dispatch. See
// Dispatcher.WaitFor.
func (a *Action[P]) WaitFor(ctx context.Context, ids ...ListenerID) error {
	return a.dispatcher.WaitFor(ctx, ids...)
}

// Listeners returns the number of registered listeners.
func (a *Action[P]) Listeners() int {
	return a.dispatcher.Len()
}
