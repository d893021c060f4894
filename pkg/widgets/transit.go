package widgets

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/infoboard/pkg/components"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/transit"
	"gitlab.com/tinyland/lab/infoboard/pkg/stores"
	"gitlab.com/tinyland/lab/infoboard/pkg/theme"
)

// TransitWidget lists upcoming departures per direction. d cycles the
// direction filter.
type TransitWidget struct {
	base
	store     *stores.TransitStore
	clock     *stores.ClockStore
	env       Env
	direction string
}

// NewTransitWidget creates a transit widget. A non-empty direction starts
// filtered to it.
func NewTransitWidget(s *stores.TransitStore, clock *stores.ClockStore, direction string, env Env) *TransitWidget {
	env = env.withDefaults()
	return &TransitWidget{
		base:      newBase(transit.Name, "Departures", env, s.Meta),
		store:     s,
		clock:     clock,
		env:       env,
		direction: direction,
	}
}

// MinSize returns the minimum width and height this widget requires.
func (w *TransitWidget) MinSize() (int, int) { return 20, 3 }

// Update handles theme and loading messages.
func (w *TransitWidget) Update(msg tea.Msg) tea.Cmd { return w.update(msg) }

// HandleKey cycles the direction filter through every direction and back
// to all.
func (w *TransitWidget) HandleKey(key tea.KeyMsg) tea.Cmd {
	if key.String() != "d" {
		return nil
	}
	dirs := append([]string{""}, w.store.Directions()...)
	i := slices.Index(dirs, w.direction)
	w.direction = dirs[(i+1)%len(dirs)]
	return nil
}

// Direction returns the current filter, "" for all.
func (w *TransitWidget) Direction() string { return w.direction }

func (w *TransitWidget) now() time.Time {
	if t := w.clock.Now(); !t.IsZero() {
		return t
	}
	return w.env.Now()
}

// View renders departures grouped by direction, soonest first.
func (w *TransitWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if w.store.Count() == 0 {
		return w.empty(width, height)
	}
	now := w.now()

	dirs := w.store.Directions()
	if w.direction != "" {
		dirs = []string{w.direction}
	}
	per := max((height-1)/max(len(dirs), 1)-1, 1)

	var lines []string
	for _, dir := range dirs {
		deps := w.store.Next(dir, now, per)
		if len(dirs) > 1 || w.direction != "" {
			lines = append(lines, w.th.TitleStyle().Render(dir))
		}
		if len(deps) == 0 {
			lines = append(lines, w.th.Muted().Render("no departures"))
		}
		for _, d := range deps {
			lines = append(lines, w.departure(d, now, width))
		}
	}
	return w.render(lines, now, width, height)
}

func (w *TransitWidget) departure(d transit.Departure, now time.Time, width int) string {
	left := w.th.Strong().Render(components.PadRight(d.Route, 4)) + " " + w.th.Text().Render(d.Destination)
	in := d.In(now)
	style := w.th.Text()
	switch {
	case in < 2*time.Minute:
		style = w.th.Status(theme.LevelError)
	case in < 5*time.Minute:
		style = w.th.Status(theme.LevelWarn)
	}
	return components.Spread(left, style.Render(until(in)), width)
}
