package stores

import (
	"context"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/infoboard/pkg/flux"
	"gitlab.com/tinyland/lab/infoboard/pkg/store"
)

// ClockStore records the latest clock tick. Other stores that react to the
// same tick WaitFor its Token so they see the new time.
type ClockStore struct {
	*store.Store

	now   *store.Single[time.Time]
	token flux.ListenerID
}

// NewClockStore binds a clock store to action.
func NewClockStore(action *flux.Action[time.Time], logger *slog.Logger) *ClockStore {
	s := store.New("clock", logger)
	c := &ClockStore{Store: s, now: store.BindSingle[time.Time](s, "now")}
	c.token = store.Listen(s, action, func(_ context.Context, t time.Time) error {
		return c.now.Set(t)
	})
	return c
}

// Token is the store's dispatch token on the clock action.
func (c *ClockStore) Token() flux.ListenerID { return c.token }

// Now returns the last tick, or the zero time before the first one.
func (c *ClockStore) Now() time.Time {
	t, _ := c.now.Get()
	return t
}
