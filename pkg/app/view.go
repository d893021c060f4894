package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/infoboard/pkg/components"
	"gitlab.com/tinyland/lab/infoboard/pkg/layout"
)

// View renders the grid, or the expanded widget, plus a one-line footer.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	bodyHeight := max(m.height-1, 1)
	var body string
	switch {
	case m.helpVisible:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.help())
	case m.expandedWidget != "":
		body = m.frame(m.expandedWidget, layout.Rect{Width: m.width, Height: bodyHeight})
	default:
		body = m.renderGrid()
	}
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, body, m.footer()))
}

// grid lays out the body area.
func (m AppModel) grid() []layout.Cell {
	return layout.Grid(m.rows, layout.Rect{Width: m.width, Height: max(m.height-1, 1)})
}

func (m AppModel) renderGrid() string {
	cells := m.cells
	if m.layoutDirty || cells == nil {
		cells = m.grid()
	}
	var rows []string
	var row []string
	y := -1
	for _, c := range cells {
		if c.Y != y && row != nil {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
		y = c.Y
		row = append(row, m.frame(c.ID, c.Rect))
	}
	if row != nil {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// frame draws widget id inside a bordered box filling r, with its title
// on the first inner line.
func (m AppModel) frame(id string, r layout.Rect) string {
	w, ok := m.widgets[id]
	if !ok || r.Width < 4 || r.Height < 3 {
		return components.Fit(nil, r.Width, r.Height)
	}
	innerW, innerH := r.Width-2, r.Height-2
	th := m.cfg.Theme
	focused := id == m.focusedWidget

	title := th.TitleStyle().Render(w.Title())
	if focused {
		title = th.Strong().Render("▶ " + w.Title())
	}
	content := []string{title}
	if innerH > 1 {
		content = append(content, strings.Split(w.View(innerW, innerH-1), "\n")...)
	}
	box := th.Box(focused).Render(components.Fit(content, innerW, innerH))
	return m.zones.Mark(id, box)
}

func (m AppModel) footer() string {
	th := m.cfg.Theme
	hint := th.Muted().Render("tab focus · enter expand · r refresh · ? help · q quit")
	return components.Spread(th.Text().Render(m.status), hint, m.width)
}

var helpKeys = [][2]string{
	{"tab / shift+tab", "move focus"},
	{"click", "focus widget, click again to refresh"},
	{"enter", "expand / collapse the focused widget"},
	{"esc", "close help or collapse"},
	{"r", "refresh the focused source"},
	{"R", "refresh every source"},
	{"t", "next theme"},
	{"l", "next layout preset"},
	{"?", "toggle this help"},
	{"q / ctrl+c", "quit"},
}

func (m AppModel) help() string {
	th := m.cfg.Theme
	lines := []string{th.TitleStyle().Render("Keys"), ""}
	for _, kv := range helpKeys {
		lines = append(lines, th.Strong().Render(components.PadRight(kv[0], 16))+th.Text().Render(kv[1]))
	}
	return th.Box(true).Padding(0, 2).Render(strings.Join(lines, "\n"))
}
