package theme

func builtins() []Theme {
	return []Theme{defaultTheme(), nordTheme(), gruvboxTheme(), draculaTheme(), paperTheme()}
}

// defaultTheme is dark neutral with a purple accent.
func defaultTheme() Theme {
	return Theme{
		Name:        "default",
		Foreground:  "#d4d4d4",
		Dim:         "#6b6b6b",
		Accent:      "#7C3AED",
		Title:       "#A78BFA",
		Border:      "#3e3e3e",
		BorderFocus: "#7C3AED",
		OK:          "#4ec970",
		Warn:        "#e5c07b",
		Error:       "#e06c75",
		Chart:       "#64B5F6",
	}
}

func nordTheme() Theme {
	return Theme{
		Name:        "nord",
		Foreground:  "#d8dee9",
		Dim:         "#4c566a",
		Accent:      "#88c0d0",
		Title:       "#8fbcbb",
		Border:      "#3b4252",
		BorderFocus: "#88c0d0",
		OK:          "#a3be8c",
		Warn:        "#ebcb8b",
		Error:       "#bf616a",
		Chart:       "#81a1c1",
	}
}

func gruvboxTheme() Theme {
	return Theme{
		Name:        "gruvbox",
		Foreground:  "#ebdbb2",
		Dim:         "#928374",
		Accent:      "#fe8019",
		Title:       "#fabd2f",
		Border:      "#504945",
		BorderFocus: "#fe8019",
		OK:          "#b8bb26",
		Warn:        "#fabd2f",
		Error:       "#fb4934",
		Chart:       "#83a598",
	}
}

func draculaTheme() Theme {
	return Theme{
		Name:        "dracula",
		Foreground:  "#f8f8f2",
		Dim:         "#6272a4",
		Accent:      "#bd93f9",
		Title:       "#ff79c6",
		Border:      "#44475a",
		BorderFocus: "#bd93f9",
		OK:          "#50fa7b",
		Warn:        "#f1fa8c",
		Error:       "#ff5555",
		Chart:       "#8be9fd",
	}
}

// paperTheme is for light terminals.
func paperTheme() Theme {
	return Theme{
		Name:        "paper",
		Foreground:  "#2e3440",
		Dim:         "#8a8f98",
		Accent:      "#005f87",
		Title:       "#5f00af",
		Border:      "#c6c6c6",
		BorderFocus: "#005f87",
		OK:          "#287d3c",
		Warn:        "#a05a00",
		Error:       "#c0392b",
		Chart:       "#0087af",
	}
}
