// Package widgets renders the dashboard panels. Every widget reads its
// store through getters at View time; messages only restyle, animate the
// loading spinner or move a cursor.
package widgets

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"gitlab.com/tinyland/lab/infoboard/pkg/app"
	"gitlab.com/tinyland/lab/infoboard/pkg/components"
	"gitlab.com/tinyland/lab/infoboard/pkg/stores"
	"gitlab.com/tinyland/lab/infoboard/pkg/theme"
)

// Env is the display context shared by all widgets.
type Env struct {
	Theme theme.Theme
	// TimeFormat is the Go layout for the clock, e.g. "15:04:05".
	TimeFormat string
	// Units is "metric" or "imperial".
	Units string
	// Location labels the clock and weather widgets.
	Location string
	// Now is used until the clock store has ticked.
	Now func() time.Time
}

func (e Env) withDefaults() Env {
	if e.Theme.Name == "" {
		e.Theme = theme.Default()
	}
	if e.TimeFormat == "" {
		e.TimeFormat = "15:04:05"
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

// base carries the identity, theme and loading state common to widgets.
type base struct {
	id, title string
	th        theme.Theme
	spin      spinner.Model
	meta      func() stores.Meta
}

func newBase(id, title string, env Env, meta func() stores.Meta) base {
	return base{
		id:    id,
		title: title,
		th:    env.Theme,
		spin:  spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(env.Theme.Strong())),
		meta:  meta,
	}
}

// ID returns the widget's store name.
func (b *base) ID() string { return b.id }

// Title returns the display name, with a spinner while loading.
func (b *base) Title() string {
	if b.loading() {
		return b.title + " " + b.spin.View()
	}
	return b.title
}

func (b *base) loading() bool {
	return b.meta != nil && b.meta().Loading
}

// update handles the messages every widget reacts to the same way.
func (b *base) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case app.ThemeChangeEvent:
		if t, err := theme.Resolve(msg.Theme); err == nil {
			b.th = t
			b.spin.Style = t.Strong()
		}
	case app.StoreChangedEvent:
		if msg.Store == b.id && b.loading() {
			return b.spin.Tick
		}
	case spinner.TickMsg:
		if msg.ID != b.spin.ID() || !b.loading() {
			return nil
		}
		var cmd tea.Cmd
		b.spin, cmd = b.spin.Update(msg)
		return cmd
	}
	return nil
}

// empty is shown before the first successful load.
func (b *base) empty(width, height int) string {
	m := stores.Meta{}
	if b.meta != nil {
		m = b.meta()
	}
	var lines []string
	switch {
	case m.Loading:
		lines = []string{b.spin.View() + " " + b.th.Muted().Render("Loading…")}
	case m.Error != "":
		lines = append(lines, b.th.Status(theme.LevelError).Render("Unavailable"))
		for _, l := range components.Wrap(m.Error, width) {
			lines = append(lines, b.th.Muted().Render(l))
		}
	default:
		lines = []string{b.th.Muted().Render("No data")}
	}
	return components.Fit(lines, width, height)
}

// render fits lines above a status line reporting the last load. With
// fewer than three rows there is no status line.
func (b *base) render(lines []string, now time.Time, width, height int) string {
	if height < 3 || b.meta == nil {
		return components.Fit(lines, width, height)
	}
	body := components.Fit(lines, width, height-1)
	return body + "\n" + components.Fit([]string{b.status(now)}, width, 1)
}

func (b *base) status(now time.Time) string {
	m := b.meta()
	if m.Error != "" {
		return b.th.Status(theme.LevelWarn).Render("⚠ " + m.Error)
	}
	if m.Updated.IsZero() {
		return ""
	}
	return b.th.Muted().Render("updated " + humanize.RelTime(m.Updated, now, "ago", "from now"))
}

// until formats a short countdown such as "now", "7 min" or "2h05".
func until(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%d min", int(d/time.Minute))
	}
	return fmt.Sprintf("%dh%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}
