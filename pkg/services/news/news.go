// Package news merges headlines from RSS, Atom and JSON feeds.
package news

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"gitlab.com/tinyland/lab/infoboard/pkg/services"
)

// Name is the source identifier.
const Name = "news"

// Headline is one feed item.
type Headline struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Source    string    `json:"source"`
	Published time.Time `json:"published"`
}

// Config lists the feeds to read.
type Config struct {
	Feeds []string
	// PerFeed caps how many items are taken from each feed.
	PerFeed int
}

// Service fetches and merges feeds.
type Service struct {
	cfg    Config
	client *http.Client
}

// New creates a news Service. A nil client uses
// services.DefaultHTTPClient.
func New(cfg Config, client *http.Client) *Service {
	if cfg.PerFeed <= 0 {
		cfg.PerFeed = 10
	}
	return &Service{cfg: cfg, client: client}
}

// Name returns "news".
func (s *Service) Name() string { return Name }

// Load fetches every feed and returns the merged headlines, newest first.
// A failing feed is reported in the joined error without discarding the
// others.
func (s *Service) Load(ctx context.Context, now time.Time) ([]Headline, error) {
	var (
		all  []Headline
		errs []error
	)
	for _, url := range s.cfg.Feeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := services.Get(ctx, s.client, Name, url)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		items, err := Parse(body, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w (%s)", err, url))
			continue
		}
		if len(items) > s.cfg.PerFeed {
			items = items[:s.cfg.PerFeed]
		}
		all = append(all, items...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Published.After(all[j].Published)
	})

	if len(errs) > 0 {
		err := errors.Join(errs...)
		if len(all) == 0 {
			return nil, err
		}
		return all, err
	}
	return all, nil
}

// Parse decodes a feed document of any supported type. Items without a
// date are stamped with now; items without a GUID get a hash of link and
// title.
func Parse(body []byte, now time.Time) ([]Headline, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("news: parse: %w", err)
	}

	source := strings.TrimSpace(feed.Title)
	out := make([]Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		h := Headline{
			ID:        item.GUID,
			Title:     strings.TrimSpace(item.Title),
			Link:      item.Link,
			Source:    source,
			Published: now,
		}
		switch {
		case item.PublishedParsed != nil:
			h.Published = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			h.Published = *item.UpdatedParsed
		}
		if h.ID == "" {
			h.ID = digest(h.Link, h.Title)
		}
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Published.After(out[j].Published)
	})
	return out, nil
}

func digest(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:8])
}
