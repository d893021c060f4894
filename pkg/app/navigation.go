package app

import "slices"

// CycleFocusForward moves focus to the next widget in the order list,
// wrapping around to the first widget after the last.
func (m *AppModel) CycleFocusForward() {
	m.moveFocus(1)
}

// CycleFocusBackward moves focus to the previous widget, wrapping around
// to the last widget before the first.
func (m *AppModel) CycleFocusBackward() {
	m.moveFocus(-1)
}

func (m *AppModel) moveFocus(step int) {
	n := len(m.widgetOrder)
	if n == 0 {
		return
	}
	idx := max(slices.Index(m.widgetOrder, m.focusedWidget), 0)
	m.focusedWidget = m.widgetOrder[(idx+step+n)%n]
	if m.expandedWidget != "" {
		m.expandedWidget = m.focusedWidget
	}
}

// FocusWidget directly sets focus to the widget with the given ID. Focus
// does not change for a widget outside the current layout.
func (m *AppModel) FocusWidget(id string) {
	if slices.Contains(m.widgetOrder, id) {
		m.focusedWidget = id
	}
}

// ToggleExpand toggles the focused widget between normal and fullscreen.
// If a different widget is expanded, expansion moves to the focused one.
func (m *AppModel) ToggleExpand() {
	if m.focusedWidget == "" {
		return
	}
	if m.expandedWidget == m.focusedWidget {
		m.expandedWidget = ""
	} else {
		m.expandedWidget = m.focusedWidget
	}
}
