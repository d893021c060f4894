// Package app is the Bubbletea shell around the dashboard. It owns focus,
// expansion, help and the widget grid; widgets read their stores directly
// and are told when a store changed.
package app

import "time"

// TickEvent is sent periodically by the render ticker so time-relative
// text (countdowns, "5m ago") stays current.
type TickEvent struct {
	Time time.Time
}

// StoreChangedEvent reports that the named store emitted a change. It is
// sent from the store's change callback via tea.Program.Send.
type StoreChangedEvent struct {
	Store string
}

// RefreshDoneEvent reports the end of a manual refresh. Source is empty
// for a refresh of every source.
type RefreshDoneEvent struct {
	Source string
	Err    error
	Took   time.Duration
}

// WidgetFocusEvent requests that focus move to a specific widget.
type WidgetFocusEvent struct {
	WidgetID string
}

// ThemeChangeEvent switches the active color theme. Widgets receive it
// too so they can restyle.
type ThemeChangeEvent struct {
	Theme string
}

// LayoutPresetEvent switches to a named layout preset (e.g. "dashboard",
// "compact", "commute").
type LayoutPresetEvent struct {
	Preset string
}
