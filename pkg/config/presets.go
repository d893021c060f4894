package config

// LayoutPreset returns the layout for a named preset. If the name is not
// recognized, the "dashboard" preset is returned.
func LayoutPreset(name string) LayoutConfig {
	switch name {
	case "compact":
		return compactPreset()
	case "commute":
		return commutePreset()
	default:
		return dashboardPreset()
	}
}

// PresetNames lists the built-in layouts.
func PresetNames() []string {
	return []string{"commute", "compact", "dashboard"}
}

// dashboardPreset returns the default full layout.
//
//	Row 1 (ratio 2): [clock:1] [weather:2] [host:2]
//	Row 2 (ratio 4): [calendar:3] [transit:2]
//	Row 3 (ratio 3): [news:1]
func dashboardPreset() LayoutConfig {
	return LayoutConfig{
		Preset: "dashboard",
		Rows: []RowConfig{
			{
				Ratio: 2,
				Children: []ChildConfig{
					{Type: "clock", Ratio: 1},
					{Type: "weather", Ratio: 2},
					{Type: "host", Ratio: 2},
				},
			},
			{
				Ratio: 4,
				Children: []ChildConfig{
					{Type: "calendar", Ratio: 3},
					{Type: "transit", Ratio: 2},
				},
			},
			{
				Ratio: 3,
				Children: []ChildConfig{
					{Type: "news", Ratio: 1},
				},
			},
		},
	}
}

// compactPreset fits an 80x24 terminal.
//
//	Row 1 (ratio 1): [clock:1] [weather:2]
//	Row 2 (ratio 2): [calendar:1]
func compactPreset() LayoutConfig {
	return LayoutConfig{
		Preset: "compact",
		Rows: []RowConfig{
			{
				Ratio: 1,
				Children: []ChildConfig{
					{Type: "clock", Ratio: 1},
					{Type: "weather", Ratio: 2},
				},
			},
			{
				Ratio: 2,
				Children: []ChildConfig{
					{Type: "calendar", Ratio: 1},
				},
			},
		},
	}
}

// commutePreset puts departures first.
//
//	Row 1 (ratio 1): [clock:1] [weather:1]
//	Row 2 (ratio 3): [transit:1]
func commutePreset() LayoutConfig {
	return LayoutConfig{
		Preset: "commute",
		Rows: []RowConfig{
			{
				Ratio: 1,
				Children: []ChildConfig{
					{Type: "clock", Ratio: 1},
					{Type: "weather", Ratio: 1},
				},
			},
			{
				Ratio: 3,
				Children: []ChildConfig{
					{Type: "transit", Ratio: 1},
				},
			},
		},
	}
}

// Widgets returns the widget types of a layout in row-major order, each
// once.
func (l LayoutConfig) Widgets() []string {
	seen := map[string]bool{}
	var out []string
	for _, row := range l.Rows {
		for _, c := range row.Children {
			if !seen[c.Type] {
				seen[c.Type] = true
				out = append(out, c.Type)
			}
		}
	}
	return out
}
