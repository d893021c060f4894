package widgets

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/infoboard/pkg/components"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/weather"
	"gitlab.com/tinyland/lab/infoboard/pkg/stores"
	"gitlab.com/tinyland/lab/infoboard/pkg/theme"
)

// WeatherWidget shows current conditions and the daily forecast.
type WeatherWidget struct {
	base
	store *stores.WeatherStore
	env   Env
}

// NewWeatherWidget creates a weather widget.
func NewWeatherWidget(s *stores.WeatherStore, env Env) *WeatherWidget {
	env = env.withDefaults()
	return &WeatherWidget{base: newBase(weather.Name, "Weather", env, s.Meta), store: s, env: env}
}

// MinSize returns the minimum width and height this widget requires.
func (w *WeatherWidget) MinSize() (int, int) { return 24, 3 }

// Update handles theme and loading messages.
func (w *WeatherWidget) Update(msg tea.Msg) tea.Cmd { return w.update(msg) }

// HandleKey is a no-op.
func (w *WeatherWidget) HandleKey(tea.KeyMsg) tea.Cmd { return nil }

func (w *WeatherWidget) windUnit() string {
	if w.env.Units == "imperial" {
		return "mph"
	}
	return "km/h"
}

// View renders the current temperature, details and one line per day.
func (w *WeatherWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	f, ok := w.store.Forecast()
	if !ok {
		return w.empty(width, height)
	}
	now := w.env.Now()
	c := f.Current

	head := fmt.Sprintf("%s %s %s", weather.Icon(c.Code), w.th.Strong().Render(fmt.Sprintf("%.0f%s", c.Temperature, f.Units)), w.th.Text().Render(c.Description))
	lines := []string{
		components.Spread(head, w.th.Muted().Render(f.Location), width),
		w.th.Muted().Render(fmt.Sprintf("feels %.0f° · humidity %.0f%% · wind %.0f %s", c.FeelsLike, c.Humidity, c.WindSpeed, w.windUnit())),
	}
	if len(f.Daily) > 0 && height > 3 {
		lines = append(lines, "")
	}
	for _, d := range f.Daily {
		label := d.Date.Format("Mon")
		if y, m, dd := d.Date.Date(); y == now.Year() && m == now.Month() && dd == now.Day() {
			label = "Today"
		}
		left := fmt.Sprintf("%-5s %s %s", label, weather.Icon(d.Code), d.Description)
		right := fmt.Sprintf("%3.0f°/%-3.0f° ", d.High, d.Low) + w.rain(d.PrecipPct)
		lines = append(lines, components.Spread(w.th.Text().Render(left), right, width))
	}
	return w.render(lines, now, width, height)
}

func (w *WeatherWidget) rain(pct float64) string {
	s := fmt.Sprintf("☂%3.0f%%", pct)
	switch {
	case pct >= 60:
		return w.th.Status(theme.LevelWarn).Render(s)
	case pct >= 20:
		return w.th.Text().Render(s)
	}
	return w.th.Muted().Render(s)
}
