package stores

import (
	"context"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/infoboard/pkg/flux"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/host"
	"gitlab.com/tinyland/lab/infoboard/pkg/store"
)

// HistoryLen is how many load samples HostStore keeps.
const HistoryLen = 60

// HostStore holds the latest host snapshot and a short 1-minute load
// history for the sparkline.
type HostStore struct {
	*base

	snapshot *store.Single[host.Snapshot]
	history  *store.Single[[]float64]
	token    flux.ListenerID
}

// NewHostStore binds a host store to action.
func NewHostStore(action *flux.RequestAction[time.Time, host.Snapshot], logger *slog.Logger) *HostStore {
	b := newBase(host.Name, logger)
	h := &HostStore{
		base:     b,
		snapshot: store.BindSingle[host.Snapshot](b.Store, "snapshot"),
		history:  store.BindSingle[[]float64](b.Store, "history"),
	}
	h.token = store.BindTo(b.Store, action, store.Handlers[host.Snapshot]{
		OnPending: b.onPending,
		OnError:   b.onError,
		OnSuccess: func(ctx context.Context, snap host.Snapshot) error {
			if err := h.snapshot.Set(snap); err != nil {
				return err
			}
			prev, _ := h.history.Get()
			next := append(append(make([]float64, 0, len(prev)+1), prev...), snap.Load.Load1)
			if len(next) > HistoryLen {
				next = next[len(next)-HistoryLen:]
			}
			if err := h.history.Set(next); err != nil {
				return err
			}
			return b.loaded(ctx)
		},
	})
	return h
}

// Token is the store's dispatch token.
func (h *HostStore) Token() flux.ListenerID { return h.token }

// Snapshot returns the last snapshot and whether one has loaded.
func (h *HostStore) Snapshot() (host.Snapshot, bool) { return h.snapshot.Get() }

// History returns the recorded 1-minute load averages, oldest first. It is
// empty before the first load.
func (h *HostStore) History() []float64 {
	v, _ := h.history.Get()
	return v
}
