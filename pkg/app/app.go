package app

import (
	"context"
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/infoboard/pkg/config"
	"gitlab.com/tinyland/lab/infoboard/pkg/layout"
	"gitlab.com/tinyland/lab/infoboard/pkg/theme"
)

// Widget is one panel of the dashboard.
type Widget interface {
	ID() string
	Title() string
	// Update receives every message the model does not consume itself.
	Update(msg tea.Msg) tea.Cmd
	// View renders exactly width x height cells of content.
	View(width, height int) string
	MinSize() (int, int)
	// HandleKey receives keys while the widget has focus.
	HandleKey(key tea.KeyMsg) tea.Cmd
}

// Refresher triggers loads outside the schedule.
type Refresher interface {
	Refresh(ctx context.Context, name string) error
	RefreshAll(ctx context.Context) error
}

// Config configures the model.
type Config struct {
	// RefreshInterval is the render tick.
	RefreshInterval time.Duration
	// RefreshTimeout bounds manual refreshes.
	RefreshTimeout time.Duration
	Theme          theme.Theme
	// Layout places widgets. An empty layout stacks widgets two per row.
	Layout    config.LayoutConfig
	Refresher Refresher
}

// DefaultConfig returns a Config with a one-second tick and the default
// theme.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: time.Second,
		RefreshTimeout:  30 * time.Second,
		Theme:           theme.Default(),
	}
}

// AppModel is the root Bubbletea model.
type AppModel struct {
	cfg Config

	widgets     map[string]Widget
	widgetOrder []string
	rows        []layout.Row

	focusedWidget  string
	expandedWidget string

	width, height int
	layoutDirty   bool
	cells         []layout.Cell

	helpVisible bool
	quitting    bool
	status      string
	zones       *zone.Manager
}

// NewAppModel builds a model. Layout items without a matching widget get
// a placeholder; widgets the layout does not mention are only reachable
// through a preset that does.
func NewAppModel(cfg Config, widgets ...Widget) AppModel {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultConfig().RefreshInterval
	}
	if cfg.Theme.Name == "" {
		cfg.Theme = theme.Default()
	}
	m := AppModel{
		cfg:         cfg,
		widgets:     make(map[string]Widget, len(widgets)),
		layoutDirty: true,
		zones:       zone.New(),
	}
	var ids []string
	for _, w := range widgets {
		if w == nil {
			continue
		}
		m.widgets[w.ID()] = w
		ids = append(ids, w.ID())
	}
	m.applyLayout(cfg.Layout, ids)
	return m
}

// applyLayout sets rows and focus order from l, or from ids when l has no
// rows.
func (m *AppModel) applyLayout(l config.LayoutConfig, ids []string) {
	m.rows = RowsFromConfig(l)
	if len(m.rows) == 0 {
		m.rows = stack(ids)
	}
	m.widgetOrder = nil
	for _, r := range m.rows {
		for _, it := range r.Items {
			if _, ok := m.widgets[it.ID]; !ok {
				m.widgets[it.ID] = NewPlaceholder(it.ID, it.ID+" (unavailable)")
			}
			if !slices.Contains(m.widgetOrder, it.ID) {
				m.widgetOrder = append(m.widgetOrder, it.ID)
			}
		}
	}
	if !slices.Contains(m.widgetOrder, m.focusedWidget) {
		m.focusedWidget = ""
		if len(m.widgetOrder) > 0 {
			m.focusedWidget = m.widgetOrder[0]
		}
	}
	if !slices.Contains(m.widgetOrder, m.expandedWidget) {
		m.expandedWidget = ""
	}
	m.layoutDirty = true
}

// RowsFromConfig converts configured rows to layout rows.
func RowsFromConfig(l config.LayoutConfig) []layout.Row {
	rows := make([]layout.Row, 0, len(l.Rows))
	for _, r := range l.Rows {
		row := layout.Row{Weight: r.Ratio}
		for _, c := range r.Children {
			row.Items = append(row.Items, layout.Item{ID: c.Type, Weight: c.Ratio})
		}
		rows = append(rows, row)
	}
	return rows
}

func stack(ids []string) []layout.Row {
	var rows []layout.Row
	for i := 0; i < len(ids); i += 2 {
		row := layout.Row{Weight: 1}
		for _, id := range ids[i:min(i+2, len(ids))] {
			row.Items = append(row.Items, layout.Item{ID: id, Weight: 1})
		}
		rows = append(rows, row)
	}
	return rows
}

// Init starts the render ticker.
func (m AppModel) Init() tea.Cmd {
	return TickCmd(m.cfg.RefreshInterval)
}

// Update handles window, key, mouse and dashboard events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layoutDirty = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case TickEvent:
		if m.layoutDirty {
			m.cells = m.grid()
			m.layoutDirty = false
		}
		return m, tea.Batch(m.broadcast(msg), TickCmd(m.cfg.RefreshInterval))

	case RefreshDoneEvent:
		m.status = refreshStatus(msg)
		return m, nil

	case WidgetFocusEvent:
		m.FocusWidget(msg.WidgetID)
		return m, nil

	case ThemeChangeEvent:
		t, err := theme.Resolve(msg.Theme)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.cfg.Theme = t
		m.status = "theme: " + t.Name
		return m, m.broadcast(msg)

	case LayoutPresetEvent:
		m.applyLayout(config.LayoutPreset(msg.Preset), nil)
		m.status = "layout: " + msg.Preset
		return m, nil
	}
	return m, m.broadcast(msg)
}

func (m AppModel) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range m.widgetOrder {
		if cmd := m.widgets[id].Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		m.CycleFocusForward()
	case "shift+tab":
		m.CycleFocusBackward()
	case "enter":
		m.ToggleExpand()
		m.layoutDirty = true
	case "esc":
		if m.helpVisible {
			m.helpVisible = false
		} else {
			m.expandedWidget = ""
		}
		m.layoutDirty = true
	case "?":
		m.helpVisible = !m.helpVisible
	case "r":
		if m.focusedWidget == "" {
			return m, nil
		}
		m.status = "refreshing " + m.focusedWidget + "…"
		return m, RefreshCmd(m.cfg.Refresher, m.focusedWidget, m.cfg.RefreshTimeout)
	case "R":
		m.status = "refreshing all…"
		return m, RefreshCmd(m.cfg.Refresher, "", m.cfg.RefreshTimeout)
	case "t":
		next := cycle(theme.Names(), m.cfg.Theme.Name)
		return m, func() tea.Msg { return ThemeChangeEvent{Theme: next} }
	case "l":
		next := cycle(config.PresetNames(), m.cfg.Layout.Preset)
		m.cfg.Layout = config.LayoutPreset(next)
		return m, func() tea.Msg { return LayoutPresetEvent{Preset: next} }
	default:
		if w, ok := m.widgets[m.focusedWidget]; ok {
			return m, w.HandleKey(msg)
		}
	}
	return m, nil
}

// handleMouse focuses the clicked widget; clicking the focused widget
// refreshes it.
func (m AppModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	for _, id := range m.widgetOrder {
		if !m.zones.Get(id).InBounds(msg) {
			continue
		}
		if id == m.focusedWidget {
			m.status = "refreshing " + id + "…"
			return m, RefreshCmd(m.cfg.Refresher, id, m.cfg.RefreshTimeout)
		}
		m.FocusWidget(id)
		return m, nil
	}
	return m, nil
}

func refreshStatus(ev RefreshDoneEvent) string {
	what := ev.Source
	if what == "" {
		what = "all sources"
	}
	if ev.Err != nil {
		return fmt.Sprintf("refresh %s failed: %v", what, ev.Err)
	}
	return fmt.Sprintf("refreshed %s in %s", what, ev.Took.Round(time.Millisecond))
}

// cycle returns the element after cur in names, wrapping around.
func cycle(names []string, cur string) string {
	if len(names) == 0 {
		return cur
	}
	i := slices.Index(names, cur)
	return names[(i+1)%len(names)]
}

// Width returns the terminal width.
func (m AppModel) Width() int { return m.width }

// Height returns the terminal height.
func (m AppModel) Height() int { return m.height }

// LayoutDirty reports whether the grid must be recomputed.
func (m AppModel) LayoutDirty() bool { return m.layoutDirty }

// FocusedWidgetID returns the focused widget, or "" with no widgets.
func (m AppModel) FocusedWidgetID() string { return m.focusedWidget }

// ExpandedWidgetID returns the fullscreen widget, or "".
func (m AppModel) ExpandedWidgetID() string { return m.expandedWidget }

// Quitting reports whether quit was requested.
func (m AppModel) Quitting() bool { return m.quitting }

// HelpVisible reports whether the help overlay is shown.
func (m AppModel) HelpVisible() bool { return m.helpVisible }

// Status returns the footer message.
func (m AppModel) Status() string { return m.status }

// Theme returns the active theme.
func (m AppModel) Theme() theme.Theme { return m.cfg.Theme }

// WidgetOrder returns the focus order.
func (m AppModel) WidgetOrder() []string { return slices.Clone(m.widgetOrder) }
