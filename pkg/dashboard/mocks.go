package dashboard

import (
	"context"
	"math"
	"time"

	"gitlab.com/tinyland/lab/infoboard/pkg/config"
	"gitlab.com/tinyland/lab/infoboard/pkg/services"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/calendar"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/host"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/news"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/transit"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/weather"
)

// MockServices returns offline services with plausible sample data. Times
// are relative to the now passed to each load, so the dashboard looks
// alive for as long as it runs.
func MockServices() Services {
	return Services{
		Weather: services.NewMockService(weather.Name, services.WithLoadFunc(sampleForecast)),
		Calendar: services.NewMockService(calendar.Name, services.WithLoadFunc(
			func(_ context.Context, now time.Time) ([]calendar.Event, error) { return sampleEvents(now), nil })),
		Transit: services.NewMockService(transit.Name, services.WithLoadFunc(
			func(_ context.Context, now time.Time) ([]transit.Departure, error) { return sampleDepartures(now), nil })),
		News: services.NewMockService(news.Name, services.WithLoadFunc(
			func(_ context.Context, now time.Time) ([]news.Headline, error) { return sampleHeadlines(now), nil })),
		Host: services.NewMockService(host.Name, services.WithLoadFunc(sampleHost)),
	}
}

// EnableAll turns on every source and fills in placeholder endpoints so
// cfg validates. It is meant for use with MockServices.
func EnableAll(cfg *config.Config) {
	s := &cfg.Sources
	s.Weather.Enabled = true
	s.Calendar.Enabled = true
	s.Transit.Enabled = true
	s.News.Enabled = true
	s.Host.Enabled = true
	s.Calendar.Watch = false
	if len(s.Calendar.Sources) == 0 {
		s.Calendar.Sources = []string{"https://calendar.invalid/sample.ics"}
	}
	if s.Transit.URL == "" {
		s.Transit.URL = "https://transit.invalid/departures"
	}
	if len(s.News.Feeds) == 0 {
		s.News.Feeds = []string{"https://news.invalid/feed.xml"}
	}
}

func sampleForecast(_ context.Context, now time.Time) (weather.Forecast, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	f := weather.Forecast{
		Location: "Sample City",
		Units:    "°C",
		Current: weather.Current{
			Time:        now,
			Temperature: 14.2,
			FeelsLike:   12.9,
			Humidity:    64,
			WindSpeed:   11,
			Code:        2,
			Description: weather.Describe(2),
		},
	}
	for i, code := range []int{2, 61, 0} {
		f.Daily = append(f.Daily, weather.Day{
			Date:        today.AddDate(0, 0, i),
			High:        16 + float64(i),
			Low:         8 + float64(i)/2,
			PrecipPct:   []float64{10, 70, 0}[i],
			Code:        code,
			Description: weather.Describe(code),
		})
	}
	return f, nil
}

func sampleEvents(now time.Time) []calendar.Event {
	hour := now.Truncate(time.Hour)
	return []calendar.Event{
		{UID: "standup", Summary: "Team standup", Location: "Room 4", Start: hour.Add(time.Hour), End: hour.Add(75 * time.Minute)},
		{UID: "focus", Summary: "Focus block", Start: hour.Add(-30 * time.Minute), End: hour.Add(90 * time.Minute)},
		{UID: "lunch", Summary: "Lunch with Sam", Location: "Noodle bar", Start: hour.Add(3 * time.Hour), End: hour.Add(4 * time.Hour)},
		{UID: "dentist", Summary: "Dentist", Start: hour.Add(26 * time.Hour), End: hour.Add(27 * time.Hour)},
		{UID: "trip", Summary: "Weekend trip", AllDay: true, Start: hour.Add(72 * time.Hour).Truncate(24 * time.Hour), End: hour.Add(120 * time.Hour).Truncate(24 * time.Hour)},
	}
}

func sampleDepartures(now time.Time) []transit.Departure {
	base := now.Truncate(time.Minute)
	var out []transit.Departure
	for i, mins := range []int{2, 7, 11, 18, 24, 31} {
		dir, dest, route := "outbound", "Downtown", "12"
		if i%2 == 1 {
			dir, dest, route = "inbound", "Airport", "Red"
		}
		due := base.Add(time.Duration(mins) * time.Minute)
		out = append(out, transit.Departure{
			ID:          route + "-" + due.Format("1504"),
			Route:       route,
			Direction:   dir,
			Destination: dest,
			Due:         due,
		})
	}
	return out
}

func sampleHeadlines(now time.Time) []news.Headline {
	items := []struct{ id, title, source string }{
		{"n1", "City council approves new bike lanes", "Local Paper"},
		{"n2", "Bridge reopens after six months of repairs", "Local Paper"},
		{"n3", "Release notes: faster startup and a new dark theme", "Tech Blog"},
		{"n4", "Farmers market extends weekend hours", "Local Paper"},
		{"n5", "Why terminal dashboards are back", "Tech Blog"},
	}
	out := make([]news.Headline, len(items))
	for i, it := range items {
		out[i] = news.Headline{
			ID:        it.id,
			Title:     it.title,
			Source:    it.source,
			Link:      "https://example.com/" + it.id,
			Published: now.Add(-time.Duration(i*47) * time.Minute),
		}
	}
	return out
}

func sampleHost(_ context.Context, now time.Time) (host.Snapshot, error) {
	phase := float64(now.Unix()%600) / 600 * 2 * math.Pi
	load := 1.2 + 0.8*math.Sin(phase)
	return host.Snapshot{
		Hostname:   "sample-host",
		Platform:   "linux",
		Uptime:     72 * time.Hour,
		Load:       host.Load{Load1: load, Load5: load * 0.9, Load15: load * 0.8},
		CPUPercent: 20 + 15*math.Sin(phase),
		CPUCount:   8,
		MemPercent: 48,
		MemUsed:    8 << 30,
		MemTotal:   16 << 30,
		Disks:      []host.Disk{{Path: "/", UsedPercent: 61}},
		At:         now,
	}, nil
}
