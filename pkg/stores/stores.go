// Package stores holds the dashboard's concrete stores. Each one binds to
// the action of a single source, keeps its data in frozen slots and exposes
// read-only getters for the widgets.
package stores

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/infoboard/pkg/store"
)

// Meta describes the load lifecycle of a source-backed store.
type Meta struct {
	Loading bool      `json:"loading"`
	Error   string    `json:"error,omitempty"`
	Updated time.Time `json:"updated"`
	Loads   int       `json:"loads"`
}

// base is embedded by every source-backed store.
type base struct {
	*store.Store

	mu   sync.Mutex
	meta *store.Single[Meta]
}

func newBase(name string, logger *slog.Logger) *base {
	s := store.New(name, logger)
	return &base{Store: s, meta: store.BindSingle[Meta](s, "meta")}
}

// Meta returns the current lifecycle state. Before the first load it is
// the zero Meta.
func (b *base) Meta() Meta {
	m, _ := b.meta.Get()
	return m
}

// Loading reports whether a load is in flight.
func (b *base) Loading() bool { return b.Meta().Loading }

// Err returns the last load error, or nil after a successful load.
func (b *base) Err() error {
	if msg := b.Meta().Error; msg != "" {
		return errors.New(msg)
	}
	return nil
}

func (b *base) update(fn func(m *Meta)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, _ := b.meta.Get()
	fn(&m)
	return b.meta.Set(m)
}

func (b *base) onPending(context.Context) error {
	return b.update(func(m *Meta) { m.Loading = true })
}

func (b *base) onError(_ context.Context, err error) error {
	b.Logger().Warn("load failed", "error", err)
	return b.update(func(m *Meta) {
		m.Loading = false
		m.Error = err.Error()
	})
}

// loaded records a successful load, stamped with the request's time.
func (b *base) loaded(ctx context.Context) error {
	at := store.LoadedAt(ctx)
	if at.IsZero() {
		at = time.Now()
	}
	return b.update(func(m *Meta) {
		m.Loading = false
		m.Error = ""
		m.Updated = at
		m.Loads++
	})
}

// dedupe keeps the first item for each key.
func dedupe[K comparable, T any](items []T, key func(T) K) []T {
	seen := make(map[K]bool, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}
