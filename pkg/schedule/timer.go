// Package schedule drives periodic refresh work. A Timer repeats a callback
// on an interval; a Scheduler owns one Timer per named event and turns each
// tick into a dispatch on a shared flux action.
package schedule

import (
	"errors"
	"sync"
	"time"
)

// ErrInvalidInterval is returned by Start for a non-positive interval.
var ErrInvalidInterval = errors.New("schedule: interval must be positive")

// StartOption configures a Timer run.
type StartOption func(*startConfig)

type startConfig struct {
	immediate bool
	times     int
}

// Immediately fires the action once right away, before the first interval
// elapses. The immediate call does not count toward Times.
func Immediately() StartOption {
	return func(c *startConfig) { c.immediate = true }
}

// Times stops the timer after n interval ticks. n <= 0 means unbounded.
func Times(n int) StartOption {
	return func(c *startConfig) { c.times = n }
}

// Timer repeatedly invokes an action. Each Timer owns its own ticker; a
// stopped Timer can be started again.
type Timer struct {
	action func()

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewTimer returns a stopped timer for action.
func NewTimer(action func()) *Timer {
	return &Timer{action: action}
}

// Start begins invoking the action every interval. A running timer is
// stopped first.
func (t *Timer) Start(interval time.Duration, opts ...StartOption) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	var cfg startConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop, t.done = stop, done

	go t.loop(interval, cfg, stop, done)
	return nil
}

func (t *Timer) loop(interval time.Duration, cfg startConfig, stop, done chan struct{}) {
	defer close(done)

	if cfg.immediate {
		// Start then Stop before this goroutine ran: no fire.
		if stopped(stop) {
			return
		}
		t.action()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fired := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// A tick and a stop can be ready together; stop wins.
			if stopped(stop) {
				return
			}
			t.action()
			fired++
			if cfg.times > 0 && fired >= cfg.times {
				t.finish(stop)
				return
			}
		}
	}
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

// finish clears the run state if it still belongs to the run that ended.
func (t *Timer) finish(stop chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop == stop {
		t.stop = nil
	}
}

// Stop cancels the timer. It is a no-op on a stopped or never-started
// timer. An action already executing is allowed to finish.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// Running reports whether the timer will fire again.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// Done returns a channel closed when the current run ends, either by Stop or
// by exhausting Times. For a never-started timer it is already closed.
func (t *Timer) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		c := make(chan struct{})
		close(c)
		return c
	}
	return t.done
}
