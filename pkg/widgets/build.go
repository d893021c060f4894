package widgets

import (
	"time"

	"gitlab.com/tinyland/lab/infoboard/pkg/app"
	"gitlab.com/tinyland/lab/infoboard/pkg/config"
	"gitlab.com/tinyland/lab/infoboard/pkg/dashboard"
	"gitlab.com/tinyland/lab/infoboard/pkg/theme"
)

// Types lists every widget type Build knows, in default focus order.
var Types = []string{"clock", "weather", "calendar", "transit", "news", "host"}

// EnvFromConfig derives the widget environment from cfg.
func EnvFromConfig(cfg *config.Config, th theme.Theme, now func() time.Time) Env {
	return Env{
		Theme:      th,
		TimeFormat: cfg.Display.TimeFormat,
		Units:      cfg.Location.Units,
		Location:   cfg.Location.Name,
		Now:        now,
	}.withDefaults()
}

// Build creates a widget for every type in types backed by st. Unknown
// types are skipped; the model shows a placeholder for them.
func Build(types []string, st dashboard.Stores, cfg *config.Config, env Env) []app.Widget {
	env = env.withDefaults()
	var out []app.Widget
	for _, t := range types {
		switch t {
		case "clock":
			out = append(out, NewClockWidget(st.Clock, env))
		case "weather":
			out = append(out, NewWeatherWidget(st.Weather, env))
		case "calendar":
			out = append(out, NewCalendarWidget(st.Calendar, st.Clock, env))
		case "transit":
			out = append(out, NewTransitWidget(st.Transit, st.Clock, cfg.Sources.Transit.Direction, env))
		case "news":
			out = append(out, NewNewsWidget(st.News, env))
		case "host":
			out = append(out, NewHostWidget(st.Host, env))
		}
	}
	return out
}
