package stores

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/infoboard/pkg/flux"
	"gitlab.com/tinyland/lab/infoboard/pkg/query"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/news"
	"gitlab.com/tinyland/lab/infoboard/pkg/store"
)

// DefaultMaxHeadlines bounds how many headlines a NewsStore keeps.
const DefaultMaxHeadlines = 100

// SourceCount is the number of stored headlines from one feed.
type SourceCount struct {
	Source string
	Count  int
}

// NewsStore accumulates headlines across loads. Headlines are upserted by
// ID, a newer load winning, and the oldest are dropped beyond the cap.
type NewsStore struct {
	*base

	mu        sync.Mutex
	limit     int
	headlines *store.Multiple[string, news.Headline]
	token     flux.ListenerID
}

func headlineID(h news.Headline) string { return h.ID }

// NewNewsStore binds a news store to action. limit <= 0 uses
// DefaultMaxHeadlines.
func NewNewsStore(action *flux.RequestAction[time.Time, []news.Headline], limit int, logger *slog.Logger) *NewsStore {
	if limit <= 0 {
		limit = DefaultMaxHeadlines
	}
	b := newBase(news.Name, logger)
	n := &NewsStore{base: b, limit: limit, headlines: store.BindMultiple(b.Store, "headlines", headlineID)}
	n.token = store.BindTo(b.Store, action, store.Handlers[[]news.Headline]{
		OnPending: b.onPending,
		OnError:   b.onError,
		OnSuccess: func(ctx context.Context, hs []news.Headline) error {
			if err := n.merge(hs); err != nil {
				return err
			}
			return b.loaded(ctx)
		},
	})
	return n
}

// merge upserts hs into the stored headlines, keeps the newest limit and
// writes the result in one step.
func (n *NewsStore) merge(hs []news.Headline) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	all := dedupe(append(slices.Clone(hs), n.headlines.Values()...), headlineID)
	newest := query.OrderByDescending(query.From(all), func(h news.Headline) int64 {
		return h.Published.UnixNano()
	}).Take(n.limit).ToArray()
	return n.headlines.Replace(newest)
}

// Token is the store's dispatch token.
func (n *NewsStore) Token() flux.ListenerID { return n.token }

// Latest returns up to count headlines, newest first.
func (n *NewsStore) Latest(count int) []news.Headline {
	return query.OrderByDescending(n.headlines.Query(), func(h news.Headline) int64 {
		return h.Published.UnixNano()
	}).Take(count).ToArray()
}

// Sources counts stored headlines per feed, most prolific first.
func (n *NewsStore) Sources() []SourceCount {
	groups := query.GroupBy(n.headlines.Query(), func(h news.Headline) string { return h.Source })
	counts := query.Select(groups, func(g *query.Grouping[string, news.Headline], _ int) SourceCount {
		return SourceCount{Source: g.Key, Count: g.Len()}
	})
	return query.OrderByDescending(counts, func(c SourceCount) int { return c.Count }).ToArray()
}

// Count returns the number of stored headlines.
func (n *NewsStore) Count() int { return n.headlines.Len() }
