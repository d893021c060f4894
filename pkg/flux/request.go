package flux

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// State is the lifecycle stage carried by a RequestAction payload.
type State int

const (
	// StatePending is dispatched before the loader runs.
	StatePending State = iota
	// StateSuccess carries the loader result in Result.Data.
	StateSuccess
	// StateError carries the loader failure in Result.Err.
	StateError
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is the payload of a RequestAction. Data is only meaningful when
// State is StateSuccess; Err only when State is StateError.
type Result[T any] struct {
	State State
	Data  T
	Err   error
	At    time.Time
}

// OK reports whether the result is a success.
func (r Result[T]) OK() bool { return r.State == StateSuccess }

// Loader fetches the value for a request.
type Loader[In, Out any] func(ctx context.Context, in In) (Out, error)

// RequestAction wraps a Loader. Each Load dispatches exactly one Pending
// result followed by exactly one Success or Error result.
type RequestAction[In, Out any] struct {
	action *Action[Result[Out]]
	loader Loader[In, Out]
	logger *slog.Logger
	now    func() time.Time
}

// RequestOption configures a RequestAction.
type RequestOption func(*requestOptions)

type requestOptions struct {
	now func() time.Time
}

// WithClock sets the clock that stamps Result.At. The default is time.Now.
func WithClock(now func() time.Time) RequestOption {
	return func(o *requestOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewRequestAction creates a request action around loader.
func NewRequestAction[In, Out any](name string, loader Loader[In, Out], logger *slog.Logger, opts ...RequestOption) *RequestAction[In, Out] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	o := requestOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &RequestAction[In, Out]{
		action: NewAction[Result[Out]](name, logger),
		loader: loader,
		logger: logger.With("component", "request", "action", name),
		now:    o.now,
	}
}

// Name returns the action name.
func (r *RequestAction[In, Out]) Name() string { return r.action.Name() }

// Listen registers a listener for every lifecycle payload.
func (r *RequestAction[In, Out]) Listen(fn Listener[Result[Out]]) ListenerID {
	return r.action.Listen(fn)
}

// Unlisten removes a listener.
func (r *RequestAction[In, Out]) Unlisten(id ListenerID) bool {
	return r.action.Unlisten(id)
}

// WaitFor waits for other listeners of the current dispatch.
func (r *RequestAction[In, Out]) WaitFor(ctx context.Context, ids ...ListenerID) error {
	return r.action.WaitFor(ctx, ids...)
}

// Load dispatches Pending, runs the loader, and dispatches the outcome. The
// loader runs while Pending listeners are still working, but the outcome is
// only dispatched after they finish, so every listener observes Pending
// before Success or Error. Load returns after the outcome dispatch settles,
// yielding the loader's own result. Listener failures are logged by the
// dispatcher and do not change the returned error.
//
// If ctx ends while Pending listeners are still running, Load returns
// ctx.Err() at once. The outcome is then dispatched in the background as
// soon as those listeners finish, so stores still leave the pending state.
func (r *RequestAction[In, Out]) Load(ctx context.Context, in In) (Out, error) {
	started := r.now()
	pending := r.action.Trigger(ctx, Result[Out]{State: StatePending, At: started})

	out, err := r.call(ctx, in)
	res := r.outcome(started, out, err)

	select {
	case <-pending.Done():
	case <-ctx.Done():
		r.logger.Debug("pending listeners outlived the request", "error", ctx.Err())
		go func() {
			<-pending.Done()
			r.action.Trigger(context.WithoutCancel(ctx), res)
		}()
		var zero Out
		return zero, ctx.Err()
	}

	final := r.action.Trigger(ctx, res)
	_, _ = final.Wait(ctx)
	return out, err
}

func (r *RequestAction[In, Out]) outcome(started time.Time, out Out, err error) Result[Out] {
	at := r.now()
	if err != nil {
		r.logger.Debug("load failed", "error", err, "elapsed", at.Sub(started))
		return Result[Out]{State: StateError, Err: err, At: at}
	}
	r.logger.Debug("load succeeded", "elapsed", at.Sub(started))
	return Result[Out]{State: StateSuccess, Data: out, At: at}
}

// call runs the loader, converting a panic into an error so the Error
// outcome is still dispatched.
func (r *RequestAction[In, Out]) call(ctx context.Context, in In) (out Out, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s: loader panicked: %v", r.action.Name(), rec)
		}
	}()
	return r.loader(ctx, in)
}
