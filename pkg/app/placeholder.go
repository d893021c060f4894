package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/infoboard/pkg/components"
	"gitlab.com/tinyland/lab/infoboard/pkg/theme"
)

// PlaceholderWidget stands in for a layout slot with no widget. It shows
// its title and the size it was given.
type PlaceholderWidget struct {
	id    string
	title string
	th    theme.Theme
}

// NewPlaceholder creates a new PlaceholderWidget with the given id and title.
func NewPlaceholder(id, title string) *PlaceholderWidget {
	return &PlaceholderWidget{id: id, title: title, th: theme.Default()}
}

// ID returns the widget's unique identifier.
func (w *PlaceholderWidget) ID() string { return w.id }

// Title returns the widget's display title.
func (w *PlaceholderWidget) Title() string { return w.title }

// Update follows theme changes.
func (w *PlaceholderWidget) Update(msg tea.Msg) tea.Cmd {
	if ev, ok := msg.(ThemeChangeEvent); ok {
		if t, err := theme.Resolve(ev.Theme); err == nil {
			w.th = t
		}
	}
	return nil
}

// View renders the title and size, vertically centered.
func (w *PlaceholderWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := make([]string, max((height-2)/2, 0))
	lines = append(lines,
		components.PadCenter(w.th.Muted().Render(w.title), width),
		components.PadCenter(w.th.Muted().Render(fmt.Sprintf("%dx%d", width, height)), width),
	)
	return components.Fit(lines, width, height)
}

// MinSize returns the minimum dimensions for the placeholder widget.
func (w *PlaceholderWidget) MinSize() (int, int) { return 10, 3 }

// HandleKey is a no-op for the placeholder widget.
func (w *PlaceholderWidget) HandleKey(_ tea.KeyMsg) tea.Cmd { return nil }
