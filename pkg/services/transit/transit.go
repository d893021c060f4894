// Package transit reads upcoming departures from a JSON endpoint. Agencies
// publish very different shapes, so every field is located with a
// configurable gjson path.
package transit

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"gitlab.com/tinyland/lab/infoboard/pkg/services"
)

// Name is the source identifier.
const Name = "transit"

// Departure is a single scheduled or predicted departure.
type Departure struct {
	ID          string    `json:"id"`
	Route       string    `json:"route"`
	Direction   string    `json:"direction"`
	Destination string    `json:"destination"`
	Due         time.Time `json:"due"`
}

// In returns the time remaining until departure, clamped at zero.
func (d Departure) In(now time.Time) time.Duration {
	if left := d.Due.Sub(now); left > 0 {
		return left
	}
	return 0
}

// Paths locates departure fields in the response. List is evaluated on the
// whole document; the rest are relative to each list element.
type Paths struct {
	List        string `toml:"list" yaml:"list"`
	ID          string `toml:"id" yaml:"id"`
	Route       string `toml:"route" yaml:"route"`
	Direction   string `toml:"direction" yaml:"direction"`
	Destination string `toml:"destination" yaml:"destination"`
	Due         string `toml:"due" yaml:"due"`
}

// DefaultPaths matches a flat {"departures": [{...}]} document.
func DefaultPaths() Paths {
	return Paths{
		List:        "departures",
		ID:          "id",
		Route:       "route",
		Direction:   "direction",
		Destination: "destination",
		Due:         "due",
	}
}

// withDefaults fills empty paths from DefaultPaths.
func (p Paths) withDefaults() Paths {
	d := DefaultPaths()
	if p.List == "" {
		p.List = d.List
	}
	if p.ID == "" {
		p.ID = d.ID
	}
	if p.Route == "" {
		p.Route = d.Route
	}
	if p.Direction == "" {
		p.Direction = d.Direction
	}
	if p.Destination == "" {
		p.Destination = d.Destination
	}
	if p.Due == "" {
		p.Due = d.Due
	}
	return p
}

// Config identifies the endpoint and its field layout.
type Config struct {
	URL   string
	Paths Paths
}

// Service fetches departures.
type Service struct {
	cfg    Config
	client *http.Client
}

// New creates a transit Service. A nil client uses
// services.DefaultHTTPClient.
func New(cfg Config, client *http.Client) *Service {
	cfg.Paths = cfg.Paths.withDefaults()
	return &Service{cfg: cfg, client: client}
}

// Name returns "transit".
func (s *Service) Name() string { return Name }

// Load fetches departures and drops those already gone at now.
func (s *Service) Load(ctx context.Context, now time.Time) ([]Departure, error) {
	if s.cfg.URL == "" {
		return nil, fmt.Errorf("transit: no url configured")
	}
	body, err := services.Get(ctx, s.client, Name, s.cfg.URL)
	if err != nil {
		return nil, err
	}
	deps, err := Parse(body, s.cfg.Paths)
	if err != nil {
		return nil, err
	}
	out := deps[:0]
	for _, d := range deps {
		if !d.Due.Before(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Parse extracts departures from body, sorted by due time. Elements with
// no parseable due time are skipped. A missing ID falls back to
// route/direction/due so upserts stay stable.
func Parse(body []byte, paths Paths) ([]Departure, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("transit: invalid JSON response")
	}
	paths = paths.withDefaults()

	list := gjson.GetBytes(body, paths.List)
	if !list.IsArray() {
		return nil, fmt.Errorf("transit: path %q is not an array", paths.List)
	}

	var out []Departure
	list.ForEach(func(_, item gjson.Result) bool {
		due, ok := parseDue(item.Get(paths.Due))
		if !ok {
			return true
		}
		d := Departure{
			ID:          item.Get(paths.ID).String(),
			Route:       item.Get(paths.Route).String(),
			Direction:   item.Get(paths.Direction).String(),
			Destination: item.Get(paths.Destination).String(),
			Due:         due,
		}
		if d.ID == "" {
			d.ID = d.Route + "/" + d.Direction + "/" + strconv.FormatInt(due.Unix(), 10)
		}
		out = append(out, d)
		return true
	})

	sort.SliceStable(out, func(i, j int) bool { return out[i].Due.Before(out[j].Due) })
	return out, nil
}

// parseDue accepts RFC3339 strings, unix seconds and unix milliseconds.
func parseDue(v gjson.Result) (time.Time, bool) {
	switch v.Type {
	case gjson.String:
		if t, err := time.Parse(time.RFC3339, v.Str); err == nil {
			return t, true
		}
		if n, err := strconv.ParseInt(v.Str, 10, 64); err == nil {
			return fromUnix(n), true
		}
	case gjson.Number:
		return fromUnix(v.Int()), true
	}
	return time.Time{}, false
}

func fromUnix(n int64) time.Time {
	// anything past year 33658 in seconds is really milliseconds
	if n > 1e12 {
		return time.UnixMilli(n)
	}
	return time.Unix(n, 0)
}
