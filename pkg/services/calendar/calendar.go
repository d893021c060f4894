// Package calendar loads iCalendar (ICS) feeds from URLs or local files and
// returns the events that fall inside a look-ahead window.
package calendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"gitlab.com/tinyland/lab/infoboard/pkg/services"
)

// Name is the source identifier.
const Name = "calendar"

// Event is a single calendar entry.
type Event struct {
	UID      string    `json:"uid"`
	Summary  string    `json:"summary"`
	Location string    `json:"location"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"all_day"`
	// Source is the URL or path the event was read from.
	Source string `json:"source"`
}

// Key identifies an event occurrence. Recurring instances share a UID, so
// the start instant is part of the key.
func (e Event) Key() string {
	return e.UID + "@" + e.Start.UTC().Format(time.RFC3339)
}

// Ongoing reports whether the event spans now.
func (e Event) Ongoing(now time.Time) bool {
	return !now.Before(e.Start) && now.Before(e.End)
}

// Config lists the feeds and the look-ahead window.
type Config struct {
	// Sources are http(s) URLs or local file paths.
	Sources []string
	// Horizon is how far ahead of now events are kept.
	Horizon time.Duration
}

// Service loads and filters ICS feeds.
type Service struct {
	cfg    Config
	client *http.Client
}

// New creates a calendar Service. A nil client uses
// services.DefaultHTTPClient.
func New(cfg Config, client *http.Client) *Service {
	if cfg.Horizon <= 0 {
		cfg.Horizon = 7 * 24 * time.Hour
	}
	return &Service{cfg: cfg, client: client}
}

// Name returns "calendar".
func (s *Service) Name() string { return Name }

// LocalFiles returns the configured sources that are file paths.
func (s *Service) LocalFiles() []string {
	var files []string
	for _, src := range s.cfg.Sources {
		if !isRemote(src) {
			files = append(files, src)
		}
	}
	return files
}

// Load reads every source and returns events that have not ended and start
// before now+Horizon, sorted by start. A failing source does not discard
// the others; its error is joined into the result.
func (s *Service) Load(ctx context.Context, now time.Time) ([]Event, error) {
	var (
		events []Event
		errs   []error
	)
	for _, src := range s.cfg.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := s.read(ctx, src)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		parsed, err := Parse(raw, src)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, Window(parsed, now, s.cfg.Horizon)...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})

	if len(errs) > 0 {
		err := errors.Join(errs...)
		if len(events) == 0 {
			return nil, err
		}
		return events, err
	}
	return events, nil
}

func (s *Service) read(ctx context.Context, src string) ([]byte, error) {
	if isRemote(src) {
		return services.Get(ctx, s.client, Name, src)
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}
	return b, nil
}

// Parse decodes an ICS document. Events without a start time are skipped.
func Parse(raw []byte, source string) ([]Event, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("calendar: parse %s: %w", source, err)
	}

	var out []Event
	for _, ve := range cal.Events() {
		ev, ok := convert(ve)
		if !ok {
			continue
		}
		ev.Source = source
		out = append(out, ev)
	}
	return out, nil
}

func convert(ve *ics.VEvent) (Event, bool) {
	ev := Event{
		UID:      ve.Id(),
		Summary:  propValue(ve, ics.ComponentPropertySummary),
		Location: propValue(ve, ics.ComponentPropertyLocation),
	}

	if p := ve.GetProperty(ics.ComponentPropertyDtStart); p != nil {
		if v, ok := p.ICalParameters[string(ics.ParameterValue)]; ok && len(v) > 0 && v[0] == "DATE" {
			ev.AllDay = true
		}
	}

	var err error
	if ev.AllDay {
		ev.Start, err = ve.GetAllDayStartAt()
	} else {
		ev.Start, err = ve.GetStartAt()
	}
	if err != nil {
		return Event{}, false
	}

	if ev.AllDay {
		ev.End, err = ve.GetAllDayEndAt()
	} else {
		ev.End, err = ve.GetEndAt()
	}
	if err != nil || !ev.End.After(ev.Start) {
		if ev.AllDay {
			ev.End = ev.Start.AddDate(0, 0, 1)
		} else {
			ev.End = ev.Start
		}
	}
	if ev.UID == "" {
		ev.UID = ev.Summary
	}
	return ev, true
}

func propValue(ve *ics.VEvent, prop ics.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

// Window returns the events that have not ended by now and start before
// now+horizon.
func Window(events []Event, now time.Time, horizon time.Duration) []Event {
	limit := now.Add(horizon)
	var out []Event
	for _, e := range events {
		ended := !e.End.After(now)
		if e.End.Equal(e.Start) {
			// zero-length entries (reminders) count as ended once started
			ended = e.Start.Before(now)
		}
		if ended || !e.Start.Before(limit) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
