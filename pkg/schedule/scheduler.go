package schedule

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/infoboard/pkg/flux"
)

// Tick is dispatched each time a scheduled event fires.
type Tick struct {
	Event string
	Time  time.Time
}

// Scheduler owns one Timer per event name. Ticks are broadcast on a shared
// action so any number of listeners can react to them. It is created once at
// startup and passed to whatever needs periodic work.
type Scheduler struct {
	events *flux.Action[Tick]
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time

	mu     sync.Mutex
	timers map[string]*Timer
}

// NewScheduler creates a scheduler that triggers events. Dispatches started
// by timers use a context derived from ctx, which StopAll cancels.
func NewScheduler(ctx context.Context, events *flux.Action[Tick], logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		events: events,
		logger: logger.With("component", "scheduler"),
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
		timers: make(map[string]*Timer),
	}
}

// Events returns the action ticks are dispatched on.
func (s *Scheduler) Events() *flux.Action[Tick] { return s.events }

// Schedule (re)starts the timer for event. The first call for a name creates
// its Timer; later calls reuse and restart it with the new settings.
func (s *Scheduler) Schedule(event string, interval time.Duration, opts ...StartOption) error {
	s.mu.Lock()
	t, ok := s.timers[event]
	if !ok {
		t = NewTimer(func() { s.fire(event) })
		s.timers[event] = t
	}
	s.mu.Unlock()

	if err := t.Start(interval, opts...); err != nil {
		return err
	}
	s.logger.Debug("scheduled", "event", event, "interval", interval, "reused", ok)
	return nil
}

func (s *Scheduler) fire(event string) {
	if s.ctx.Err() != nil {
		return
	}
	s.events.Trigger(s.ctx, Tick{Event: event, Time: s.now()})
}

// On registers fn for ticks of one event name.
func (s *Scheduler) On(event string, fn func(ctx context.Context, tick Tick) error) flux.ListenerID {
	return s.events.Listen(func(ctx context.Context, tick Tick) error {
		if tick.Event != event {
			return nil
		}
		return fn(ctx, tick)
	})
}

// Stop halts the timer for event, if any.
func (s *Scheduler) Stop(event string) {
	s.mu.Lock()
	t, ok := s.timers[event]
	s.mu.Unlock()
	if ok {
		t.Stop()
	}
}

// StopAll halts every timer and cancels the context handed to in-flight
// dispatches.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	timers := make([]*Timer, 0, len(s.timers))
	for _, t := range s.timers {
		timers = append(timers, t)
	}
	s.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	s.cancel()
	s.logger.Debug("all timers stopped", "count", len(timers))
}

// Names returns the scheduled event names in sorted order.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.timers))
	for name := range s.timers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Running reports whether the timer for event is active.
func (s *Scheduler) Running(event string) bool {
	s.mu.Lock()
	t, ok := s.timers[event]
	s.mu.Unlock()
	return ok && t.Running()
}
