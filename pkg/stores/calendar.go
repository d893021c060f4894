package stores

import (
	"context"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/infoboard/pkg/flux"
	"gitlab.com/tinyland/lab/infoboard/pkg/query"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/calendar"
	"gitlab.com/tinyland/lab/infoboard/pkg/store"
)

// AgendaDay is one day of the agenda view.
type AgendaDay struct {
	Date   time.Time
	Events []calendar.Event
}

// CalendarStore holds upcoming events keyed by Event.Key. On every clock
// tick it waits for the ClockStore and prunes events that have ended.
type CalendarStore struct {
	*base

	clock  *ClockStore
	events *store.Multiple[string, calendar.Event]
	token  flux.ListenerID
}

// NewCalendarStore binds a calendar store to the calendar and clock
// actions.
func NewCalendarStore(
	action *flux.RequestAction[time.Time, []calendar.Event],
	ticks *flux.Action[time.Time],
	clock *ClockStore,
	logger *slog.Logger,
) *CalendarStore {
	b := newBase(calendar.Name, logger)
	c := &CalendarStore{
		base:   b,
		clock:  clock,
		events: store.BindMultiple(b.Store, "events", calendar.Event.Key),
	}

	c.token = store.BindTo(b.Store, action, store.Handlers[[]calendar.Event]{
		OnPending: b.onPending,
		OnError:   b.onError,
		OnSuccess: func(ctx context.Context, events []calendar.Event) error {
			if err := c.events.Replace(dedupe(events, calendar.Event.Key)); err != nil {
				return err
			}
			return b.loaded(ctx)
		},
	})

	store.Listen(b.Store, ticks, func(ctx context.Context, _ time.Time) error {
		if err := ticks.WaitFor(ctx, clock.Token()); err != nil {
			return err
		}
		now := clock.Now()
		n := c.events.RemoveWhere(func(e calendar.Event) bool { return ended(e, now) })
		if n == 0 {
			return store.SkipEmit
		}
		b.Logger().Debug("pruned ended events", "count", n)
		return nil
	})
	return c
}

// Token is the store's dispatch token on the calendar action.
func (c *CalendarStore) Token() flux.ListenerID { return c.token }

// Count returns the number of stored events.
func (c *CalendarStore) Count() int { return c.events.Len() }

// Events returns every stored event in load order.
func (c *CalendarStore) Events() []calendar.Event { return c.events.Values() }

// Upcoming returns up to n events that have not ended at now, ordered by
// start.
func (c *CalendarStore) Upcoming(now time.Time, n int) []calendar.Event {
	q := c.events.Query().Where(func(e calendar.Event, _ int) bool { return !ended(e, now) })
	return query.OrderBy(q, func(e calendar.Event) int64 { return e.Start.UnixNano() }).Take(n).ToArray()
}

// Next returns the first event starting at or after now.
func (c *CalendarStore) Next(now time.Time) (calendar.Event, bool) {
	q := query.OrderBy(c.events.Query(), func(e calendar.Event) int64 { return e.Start.UnixNano() })
	return q.FirstOrDefault(func(e calendar.Event) bool { return !e.Start.Before(now) })
}

// Agenda groups the events of the next days days (today included) by the
// local calendar date of their start. Ongoing events that started earlier
// are listed under today.
func (c *CalendarStore) Agenda(now time.Time, days int) []AgendaDay {
	today := midnight(now)
	limit := today.AddDate(0, 0, days)

	q := c.events.Query().Where(func(e calendar.Event, _ int) bool {
		return !ended(e, now) && e.Start.Before(limit)
	})
	q = query.OrderBy(q, func(e calendar.Event) int64 { return e.Start.UnixNano() })
	groups := query.GroupBy(q, func(e calendar.Event) time.Time {
		if d := midnight(e.Start.In(now.Location())); d.After(today) {
			return d
		}
		return today
	})
	return query.Select(groups, func(g *query.Grouping[time.Time, calendar.Event], _ int) AgendaDay {
		return AgendaDay{Date: g.Key, Events: g.Items()}
	}).ToArray()
}

func ended(e calendar.Event, now time.Time) bool {
	if e.End.Equal(e.Start) {
		return e.Start.Before(now)
	}
	return !e.End.After(now)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
