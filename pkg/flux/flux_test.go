package flux

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// --- Dispatcher Tests ---

func TestTriggerWaitsForSlowestListener(t *testing.T) {
	d := NewDispatcher[string]("test", nil)

	releaseB := make(chan struct{})
	var finished sync.Map
	d.Register(func(ctx context.Context, p string) error {
		finished.Store("A", true)
		return nil
	})
	d.Register(func(ctx context.Context, p string) error {
		<-releaseB
		finished.Store("B", true)
		return nil
	})
	d.Register(func(ctx context.Context, p string) error {
		finished.Store("C", true)
		return nil
	})

	x := d.Trigger(context.Background(), "hello")

	select {
	case <-x.Done():
		t.Fatal("dispatch settled before listener B completed")
	case <-time.After(50 * time.Millisecond):
	}

	close(releaseB)
	got, err := x.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if got != "hello" {
		t.Errorf("Wait payload = %q, want %q", got, "hello")
	}
	for _, name := range []string{"A", "B", "C"} {
		if _, ok := finished.Load(name); !ok {
			t.Errorf("listener %s did not finish before Wait returned", name)
		}
	}
}

func TestListenersEnteredInRegistrationOrder(t *testing.T) {
	d := NewDispatcher[int]("order", nil)

	var mu sync.Mutex
	var entered []int
	for i := range 8 {
		d.Register(func(ctx context.Context, p int) error {
			mu.Lock()
			entered = append(entered, i)
			mu.Unlock()
			return nil
		})
	}

	for round := range 50 {
		mu.Lock()
		entered = entered[:0]
		mu.Unlock()

		if _, err := d.Trigger(context.Background(), round).Wait(waitCtx(t)); err != nil {
			t.Fatalf("Wait error: %v", err)
		}
		mu.Lock()
		for i, got := range entered {
			if got != i {
				t.Fatalf("round %d: entry order = %v, want 0..7", round, entered)
			}
		}
		mu.Unlock()
	}
}

func TestTriggerWithNoListeners(t *testing.T) {
	d := NewDispatcher[int]("empty", nil)
	x := d.Trigger(context.Background(), 7)
	select {
	case <-x.Done():
	default:
		t.Fatal("dispatch with no listeners should be settled immediately")
	}
	if v, err := x.Wait(waitCtx(t)); v != 7 || err != nil {
		t.Errorf("Wait = (%d, %v), want (7, nil)", v, err)
	}
}

func TestFailingListenerDoesNotBlockOthers(t *testing.T) {
	d := NewDispatcher[int]("failing", nil)
	boom := errors.New("boom")

	var ran atomic.Int32
	d.Register(func(ctx context.Context, p int) error { return boom })
	d.Register(func(ctx context.Context, p int) error { panic("kaboom") })
	d.Register(func(ctx context.Context, p int) error {
		ran.Add(1)
		return nil
	})

	_, err := d.Trigger(context.Background(), 1).Wait(waitCtx(t))
	if err == nil {
		t.Fatal("Wait error = nil, want joined listener errors")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error %v does not wrap boom", err)
	}
	if !errors.Is(err, ErrListenerPanic) {
		t.Errorf("error %v does not wrap ErrListenerPanic", err)
	}
	var le *ListenerError
	if !errors.As(err, &le) {
		t.Fatalf("error %v is not a *ListenerError", err)
	}
	if le.Dispatcher != "failing" {
		t.Errorf("ListenerError.Dispatcher = %q, want %q", le.Dispatcher, "failing")
	}
	if ran.Load() != 1 {
		t.Errorf("healthy listener ran %d times, want 1", ran.Load())
	}
}

func TestListenerSetFixedAtTrigger(t *testing.T) {
	d := NewDispatcher[int]("fixed", nil)

	release := make(chan struct{})
	var late atomic.Int32
	d.Register(func(ctx context.Context, p int) error {
		<-release
		return nil
	})

	x := d.Trigger(context.Background(), 1)
	d.Register(func(ctx context.Context, p int) error {
		late.Add(1)
		return nil
	})
	close(release)
	if _, err := x.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if late.Load() != 0 {
		t.Fatalf("late listener ran %d times during first trigger, want 0", late.Load())
	}

	if _, err := d.Trigger(context.Background(), 2).Wait(waitCtx(t)); err != nil {
		t.Fatalf("second Wait error: %v", err)
	}
	if late.Load() != 1 {
		t.Errorf("late listener ran %d times after second trigger, want 1", late.Load())
	}
}

func TestUnregister(t *testing.T) {
	d := NewDispatcher[int]("unreg", nil)
	var calls atomic.Int32
	id := d.Register(func(ctx context.Context, p int) error {
		calls.Add(1)
		return nil
	})

	if !d.Unregister(id) {
		t.Fatal("Unregister returned false for registered id")
	}
	if d.Unregister(id) {
		t.Error("second Unregister returned true")
	}
	if d.Len() != 0 {
		t.Errorf("Len = %d, want 0", d.Len())
	}
	_, _ = d.Trigger(context.Background(), 1).Wait(waitCtx(t))
	if calls.Load() != 0 {
		t.Errorf("unregistered listener called %d times", calls.Load())
	}
}

func TestWaitForWithoutTrigger(t *testing.T) {
	d := NewDispatcher[int]("idle", nil)
	if err := d.WaitFor(waitCtx(t)); err != nil {
		t.Errorf("WaitFor with no prior trigger = %v, want nil", err)
	}
}

func TestWaitForOrdersStores(t *testing.T) {
	d := NewDispatcher[int]("deps", nil)

	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	var first ListenerID
	// Registered before the dependency so it is launched first.
	d.Register(func(ctx context.Context, p int) error {
		if err := d.WaitFor(ctx, first); err != nil {
			return err
		}
		record("dependent")
		return nil
	})
	first = d.Register(func(ctx context.Context, p int) error {
		time.Sleep(20 * time.Millisecond)
		record("dependency")
		return nil
	})

	if _, err := d.Trigger(context.Background(), 1).Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if len(order) != 2 || order[0] != "dependency" || order[1] != "dependent" {
		t.Errorf("order = %v, want [dependency dependent]", order)
	}
}

func TestWaitForAllSkipsSelf(t *testing.T) {
	d := NewDispatcher[int]("all", nil)

	var otherDone atomic.Bool
	d.Register(func(ctx context.Context, p int) error {
		if err := d.WaitFor(ctx); err != nil {
			return err
		}
		if !otherDone.Load() {
			return errors.New("other listener not finished")
		}
		return nil
	})
	d.Register(func(ctx context.Context, p int) error {
		time.Sleep(10 * time.Millisecond)
		otherDone.Store(true)
		return nil
	})

	if _, err := d.Trigger(context.Background(), 1).Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait error: %v", err)
	}
}

func TestWaitForSelfIsCircular(t *testing.T) {
	d := NewDispatcher[int]("self", nil)
	var id ListenerID
	id = d.Register(func(ctx context.Context, p int) error {
		return d.WaitFor(ctx, id)
	})

	_, err := d.Trigger(context.Background(), 1).Wait(waitCtx(t))
	if !errors.Is(err, ErrCircularWait) {
		t.Fatalf("error = %v, want ErrCircularWait", err)
	}
}

func TestWaitForMutualIsCircular(t *testing.T) {
	d := NewDispatcher[int]("mutual", nil)
	var idA, idB ListenerID
	idA = d.Register(func(ctx context.Context, p int) error {
		return d.WaitFor(ctx, idB)
	})
	idB = d.Register(func(ctx context.Context, p int) error {
		return d.WaitFor(ctx, idA)
	})

	_, err := d.Trigger(context.Background(), 1).Wait(waitCtx(t))
	if !errors.Is(err, ErrCircularWait) {
		t.Fatalf("error = %v, want ErrCircularWait", err)
	}
}

func TestWaitForAllFromTwoListeners(t *testing.T) {
	d := NewDispatcher[int]("both", nil)
	var circular atomic.Int32
	for range 2 {
		d.Register(func(ctx context.Context, p int) error {
			err := d.WaitFor(ctx)
			if errors.Is(err, ErrCircularWait) {
				circular.Add(1)
			}
			return err
		})
	}

	if _, err := d.Trigger(context.Background(), 1).Wait(waitCtx(t)); err == nil {
		t.Fatal("Wait error = nil, want ErrCircularWait from one listener")
	}
	if got := circular.Load(); got != 1 {
		t.Errorf("%d listeners saw ErrCircularWait, want 1", got)
	}
}

func TestWaitForChainIsNotCircular(t *testing.T) {
	d := NewDispatcher[int]("chain", nil)
	var idB, idC ListenerID
	d.Register(func(ctx context.Context, p int) error { return d.WaitFor(ctx, idB) })
	idB = d.Register(func(ctx context.Context, p int) error { return d.WaitFor(ctx, idC) })
	idC = d.Register(func(ctx context.Context, p int) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	if _, err := d.Trigger(context.Background(), 1).Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait error = %v, want nil", err)
	}
}

func TestWaitForOutsideListenerUsesLastDispatch(t *testing.T) {
	d := NewDispatcher[int]("outside", nil)
	release := make(chan struct{})
	var done atomic.Bool
	d.Register(func(ctx context.Context, p int) error {
		<-release
		done.Store(true)
		return nil
	})

	d.Trigger(context.Background(), 1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	if err := d.WaitFor(waitCtx(t)); err != nil {
		t.Fatalf("WaitFor error: %v", err)
	}
	if !done.Load() {
		t.Error("WaitFor returned before the listener finished")
	}
}

func TestWaitRespectsContext(t *testing.T) {
	d := NewDispatcher[int]("hung", nil)
	block := make(chan struct{})
	defer close(block)
	d.Register(func(ctx context.Context, p int) error {
		<-block
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := d.Trigger(context.Background(), 1).Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait error = %v, want DeadlineExceeded", err)
	}
}

// --- Action Tests ---

func TestActionBroadcast(t *testing.T) {
	a := NewAction[time.Time]("clock", nil)
	var got atomic.Int32
	a.Listen(func(ctx context.Context, p time.Time) error {
		got.Add(1)
		return nil
	})
	a.Listen(func(ctx context.Context, p time.Time) error {
		got.Add(1)
		return nil
	})
	if a.Listeners() != 2 {
		t.Fatalf("Listeners = %d, want 2", a.Listeners())
	}
	if _, err := a.Trigger(context.Background(), time.Now()).Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if got.Load() != 2 {
		t.Errorf("listeners called %d times, want 2", got.Load())
	}
}

// --- RequestAction Tests ---

type stateRecorder struct {
	mu     sync.Mutex
	states []State
	last   Result[string]
}

func (r *stateRecorder) listen(ctx context.Context, res Result[string]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, res.State)
	r.last = res
	return nil
}

func TestRequestActionSuccessSequence(t *testing.T) {
	ra := NewRequestAction("weather", func(ctx context.Context, city string) (string, error) {
		return "sunny in " + city, nil
	}, nil)
	rec := &stateRecorder{}
	ra.Listen(rec.listen)

	out, err := ra.Load(waitCtx(t), "Ithaca")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if out != "sunny in Ithaca" {
		t.Errorf("Load = %q", out)
	}
	if len(rec.states) != 2 || rec.states[0] != StatePending || rec.states[1] != StateSuccess {
		t.Fatalf("states = %v, want [pending success]", rec.states)
	}
	if !rec.last.OK() || rec.last.Data != "sunny in Ithaca" {
		t.Errorf("final result = %+v", rec.last)
	}
}

func TestRequestActionErrorSequence(t *testing.T) {
	reason := errors.New("upstream 503")
	ra := NewRequestAction("transit", func(ctx context.Context, _ struct{}) (string, error) {
		return "", reason
	}, nil)
	rec := &stateRecorder{}
	ra.Listen(rec.listen)

	if _, err := ra.Load(waitCtx(t), struct{}{}); !errors.Is(err, reason) {
		t.Fatalf("Load error = %v, want %v", err, reason)
	}
	if len(rec.states) != 2 || rec.states[0] != StatePending || rec.states[1] != StateError {
		t.Fatalf("states = %v, want [pending error]", rec.states)
	}
	if rec.last.Err != reason {
		t.Errorf("Err = %v, want %v", rec.last.Err, reason)
	}
}

func TestRequestActionPanickingLoader(t *testing.T) {
	ra := NewRequestAction("news", func(ctx context.Context, _ int) (string, error) {
		panic("parser exploded")
	}, nil)
	rec := &stateRecorder{}
	ra.Listen(rec.listen)

	if _, err := ra.Load(waitCtx(t), 0); err == nil {
		t.Fatal("Load error = nil, want panic converted to error")
	}
	if len(rec.states) != 2 || rec.states[1] != StateError {
		t.Fatalf("states = %v, want [pending error]", rec.states)
	}
}

func TestRequestActionPendingSettlesBeforeOutcome(t *testing.T) {
	ra := NewRequestAction("slow", func(ctx context.Context, _ int) (string, error) {
		return "ok", nil
	}, nil)

	var pendingDone atomic.Bool
	var sawOutcomeEarly atomic.Bool
	ra.Listen(func(ctx context.Context, res Result[string]) error {
		switch res.State {
		case StatePending:
			time.Sleep(20 * time.Millisecond)
			pendingDone.Store(true)
		case StateSuccess:
			if !pendingDone.Load() {
				sawOutcomeEarly.Store(true)
			}
		}
		return nil
	})

	if _, err := ra.Load(waitCtx(t), 1); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if sawOutcomeEarly.Load() {
		t.Error("Success dispatched before Pending listeners finished")
	}
}

func TestRequestActionLoadHonorsContext(t *testing.T) {
	ra := NewRequestAction("stuck", func(ctx context.Context, _ int) (string, error) {
		return "late", nil
	}, nil)

	release := make(chan struct{})
	outcome := make(chan Result[string], 1)
	ra.Listen(func(ctx context.Context, res Result[string]) error {
		if res.State == StatePending {
			<-release
			return nil
		}
		outcome <- res
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	returned := make(chan error, 1)
	go func() {
		_, err := ra.Load(ctx, 1)
		returned <- err
	}()

	select {
	case err := <-returned:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Load error = %v, want DeadlineExceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Load did not return after its context expired")
	}

	close(release)
	select {
	case res := <-outcome:
		if res.State != StateSuccess || res.Data != "late" {
			t.Errorf("outcome = %+v, want success late", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("outcome never dispatched after Pending listeners finished")
	}
}

func TestRequestActionClock(t *testing.T) {
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	ra := NewRequestAction("clocked", func(ctx context.Context, _ int) (int, error) {
		return 1, nil
	}, nil, WithClock(func() time.Time { return at }))

	var mu sync.Mutex
	var stamps []time.Time
	ra.Listen(func(ctx context.Context, res Result[int]) error {
		mu.Lock()
		stamps = append(stamps, res.At)
		mu.Unlock()
		return nil
	})
	if _, err := ra.Load(waitCtx(t), 0); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(stamps) != 2 || !stamps[0].Equal(at) || !stamps[1].Equal(at) {
		t.Errorf("stamps = %v, want two of %v", stamps, at)
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StatePending: "pending",
		StateSuccess: "success",
		StateError:   "error",
		State(9):     "State(9)",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
