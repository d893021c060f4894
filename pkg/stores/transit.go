package stores

import (
	"context"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/infoboard/pkg/flux"
	"gitlab.com/tinyland/lab/infoboard/pkg/query"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/transit"
	"gitlab.com/tinyland/lab/infoboard/pkg/store"
)

// TransitStore holds the latest departures keyed by ID.
type TransitStore struct {
	*base

	departures *store.Multiple[string, transit.Departure]
	token      flux.ListenerID
}

func departureID(d transit.Departure) string { return d.ID }

// NewTransitStore binds a transit store to action.
func NewTransitStore(action *flux.RequestAction[time.Time, []transit.Departure], logger *slog.Logger) *TransitStore {
	b := newBase(transit.Name, logger)
	t := &TransitStore{base: b, departures: store.BindMultiple(b.Store, "departures", departureID)}
	t.token = store.BindTo(b.Store, action, store.Handlers[[]transit.Departure]{
		OnPending: b.onPending,
		OnError:   b.onError,
		OnSuccess: func(ctx context.Context, deps []transit.Departure) error {
			if err := t.departures.Replace(dedupe(deps, departureID)); err != nil {
				return err
			}
			return b.loaded(ctx)
		},
	})
	return t
}

// Token is the store's dispatch token.
func (t *TransitStore) Token() flux.ListenerID { return t.token }

// Next returns up to n departures in direction (any direction when empty)
// that are due at or after now, soonest first.
func (t *TransitStore) Next(direction string, now time.Time, n int) []transit.Departure {
	q := t.departures.Query().Where(func(d transit.Departure, _ int) bool {
		return (direction == "" || d.Direction == direction) && !d.Due.Before(now)
	})
	return query.OrderBy(q, func(d transit.Departure) int64 { return d.Due.UnixNano() }).Take(n).ToArray()
}

// Directions returns the distinct directions, sorted.
func (t *TransitStore) Directions() []string {
	groups := query.GroupBy(t.departures.Query(), func(d transit.Departure) string { return d.Direction })
	keys := query.Select(groups, func(g *query.Grouping[string, transit.Departure], _ int) string { return g.Key })
	return query.OrderBy(keys, func(k string) string { return k }).ToArray()
}

// Count returns the number of stored departures.
func (t *TransitStore) Count() int { return t.departures.Len() }
