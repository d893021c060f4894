package widgets

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/infoboard/pkg/components"
	"gitlab.com/tinyland/lab/infoboard/pkg/stores"
)

// ClockWidget shows the time of the last clock tick.
type ClockWidget struct {
	base
	clock *stores.ClockStore
	env   Env
}

// NewClockWidget creates a clock widget.
func NewClockWidget(clock *stores.ClockStore, env Env) *ClockWidget {
	env = env.withDefaults()
	return &ClockWidget{base: newBase("clock", "Clock", env, nil), clock: clock, env: env}
}

// MinSize returns the minimum width and height this widget requires.
func (w *ClockWidget) MinSize() (int, int) { return 12, 2 }

// Update restyles on theme changes.
func (w *ClockWidget) Update(msg tea.Msg) tea.Cmd { return w.update(msg) }

// HandleKey is a no-op.
func (w *ClockWidget) HandleKey(tea.KeyMsg) tea.Cmd { return nil }

// View centers the time, the date and the week.
func (w *ClockWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	now := w.clock.Now()
	if now.IsZero() {
		now = w.env.Now()
	}
	_, week := now.ISOWeek()
	zone, _ := now.Zone()

	lines := []string{
		w.th.Strong().Render(now.Format(w.env.TimeFormat)),
		w.th.Text().Render(now.Format("Monday, 2 January")),
		w.th.Muted().Render(fmt.Sprintf("week %d · %s", week, zone)),
	}
	if w.env.Location != "" {
		lines = append(lines, w.th.Muted().Render(w.env.Location))
	}
	top := max((height-len(lines))/2, 0)
	out := make([]string, top, top+len(lines))
	for _, l := range lines {
		out = append(out, components.PadCenter(l, width))
	}
	return components.Fit(out, width, height)
}
