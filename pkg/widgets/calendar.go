package widgets

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/infoboard/pkg/components"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/calendar"
	"gitlab.com/tinyland/lab/infoboard/pkg/stores"
	"gitlab.com/tinyland/lab/infoboard/pkg/theme"
)

// AgendaDays is how many days the calendar widget lists.
const AgendaDays = 7

// CalendarWidget lists upcoming events grouped by day. j and k scroll.
type CalendarWidget struct {
	base
	store  *stores.CalendarStore
	clock  *stores.ClockStore
	env    Env
	offset int
}

// NewCalendarWidget creates a calendar widget.
func NewCalendarWidget(s *stores.CalendarStore, clock *stores.ClockStore, env Env) *CalendarWidget {
	env = env.withDefaults()
	return &CalendarWidget{base: newBase(calendar.Name, "Calendar", env, s.Meta), store: s, clock: clock, env: env}
}

// MinSize returns the minimum width and height this widget requires.
func (w *CalendarWidget) MinSize() (int, int) { return 24, 4 }

// Update handles theme and loading messages.
func (w *CalendarWidget) Update(msg tea.Msg) tea.Cmd { return w.update(msg) }

// HandleKey scrolls the agenda.
func (w *CalendarWidget) HandleKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "j", "down":
		w.offset++
	case "k", "up":
		w.offset = max(w.offset-1, 0)
	case "g", "home":
		w.offset = 0
	}
	return nil
}

func (w *CalendarWidget) now() time.Time {
	if t := w.clock.Now(); !t.IsZero() {
		return t
	}
	return w.env.Now()
}

// View renders the next event countdown and the agenda.
func (w *CalendarWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if w.store.Count() == 0 {
		if w.store.Meta().Loads > 0 {
			return w.render([]string{w.th.Muted().Render("Nothing scheduled")}, w.now(), width, height)
		}
		return w.empty(width, height)
	}
	now := w.now()

	var lines []string
	if next, ok := w.store.Next(now); ok {
		lines = append(lines, w.th.Muted().Render("next ")+w.th.Strong().Render(next.Summary)+w.th.Muted().Render(" in "+until(next.Start.Sub(now))))
	}
	var agenda []string
	for _, day := range w.store.Agenda(now, AgendaDays) {
		agenda = append(agenda, w.th.TitleStyle().Render(dayLabel(day.Date, now)))
		for _, e := range day.Events {
			agenda = append(agenda, w.event(e, now, width))
		}
	}

	w.offset = min(w.offset, max(len(agenda)-1, 0))
	lines = append(lines, agenda[w.offset:]...)
	return w.render(lines, now, width, height)
}

func (w *CalendarWidget) event(e calendar.Event, now time.Time, width int) string {
	when := e.Start.In(now.Location()).Format("15:04")
	style := w.th.Text()
	switch {
	case e.AllDay:
		when = "all day"
	case e.Ongoing(now):
		when = "now"
		style = w.th.Status(theme.LevelOK)
	}
	left := style.Render(components.PadRight(when, 8) + e.Summary)
	if e.Location == "" {
		return components.Truncate(left, width)
	}
	return components.Spread(left, w.th.Muted().Render(e.Location), width)
}

func dayLabel(d, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch d.Sub(today).Round(time.Hour) {
	case 0:
		return "Today"
	case 24 * time.Hour:
		return "Tomorrow"
	}
	return d.Format("Monday 2 Jan")
}
