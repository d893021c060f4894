package widgets

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"gitlab.com/tinyland/lab/infoboard/pkg/components"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/news"
	"gitlab.com/tinyland/lab/infoboard/pkg/stores"
)

// NewsWidget lists the latest headlines with a cursor. j and k move it;
// the selected headline's link is shown at the bottom.
type NewsWidget struct {
	base
	store  *stores.NewsStore
	env    Env
	cursor int
}

// NewNewsWidget creates a news widget.
func NewNewsWidget(s *stores.NewsStore, env Env) *NewsWidget {
	env = env.withDefaults()
	return &NewsWidget{base: newBase(news.Name, "News", env, s.Meta), store: s, env: env}
}

// MinSize returns the minimum width and height this widget requires.
func (w *NewsWidget) MinSize() (int, int) { return 24, 3 }

// Update handles theme and loading messages.
func (w *NewsWidget) Update(msg tea.Msg) tea.Cmd { return w.update(msg) }

// HandleKey moves the cursor.
func (w *NewsWidget) HandleKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "j", "down":
		w.cursor = min(w.cursor+1, max(w.store.Count()-1, 0))
	case "k", "up":
		w.cursor = max(w.cursor-1, 0)
	case "g", "home":
		w.cursor = 0
	}
	return nil
}

// Selected returns the headline under the cursor.
func (w *NewsWidget) Selected() (news.Headline, bool) {
	latest := w.store.Latest(w.cursor + 1)
	if w.cursor >= len(latest) {
		return news.Headline{}, false
	}
	return latest[w.cursor], true
}

// View renders a source summary, the headlines and the selected link.
func (w *NewsWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if w.store.Count() == 0 {
		return w.empty(width, height)
	}
	now := w.env.Now()

	var summary []string
	for _, s := range w.store.Sources() {
		summary = append(summary, fmt.Sprintf("%s %d", s.Source, s.Count))
	}
	lines := []string{w.th.Muted().Render(components.Truncate(strings.Join(summary, " · "), width))}

	// Reserve the summary, the link and the status line.
	rows := max(height-3, 1)
	latest := w.store.Latest(w.store.Count())
	w.cursor = min(w.cursor, len(latest)-1)
	start := max(w.cursor-rows+1, 0)
	for i, h := range latest[start:min(start+rows, len(latest))] {
		lines = append(lines, w.headline(h, start+i == w.cursor, now, width))
	}
	if h, ok := w.Selected(); ok && h.Link != "" && height >= 4 {
		for len(lines) < height-2 {
			lines = append(lines, "")
		}
		lines = append(lines, w.th.Muted().Render(components.Truncate(h.Link, width)))
	}
	return w.render(lines, now, width, height)
}

func (w *NewsWidget) headline(h news.Headline, selected bool, now time.Time, width int) string {
	marker, style := "  ", w.th.Text()
	if selected {
		marker, style = "▸ ", w.th.Strong()
	}
	age := ""
	if !h.Published.IsZero() {
		age = humanize.RelTime(h.Published, now, "ago", "from now")
	}
	return components.Spread(style.Render(marker+h.Title), w.th.Muted().Render(age), width)
}
