package theme

import "github.com/charmbracelet/lipgloss"

// Level is a status severity.
type Level int

const (
	LevelOK Level = iota
	LevelWarn
	LevelError
	LevelUnknown
)

func (t Theme) fg(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

// Text is the body text style.
func (t Theme) Text() lipgloss.Style { return t.fg(t.Foreground) }

// Muted is for secondary text such as timestamps.
func (t Theme) Muted() lipgloss.Style { return t.fg(t.Dim) }

// Strong highlights the most important value in a widget.
func (t Theme) Strong() lipgloss.Style { return t.fg(t.Accent).Bold(true) }

// TitleStyle renders widget titles.
func (t Theme) TitleStyle() lipgloss.Style { return t.fg(t.Title).Bold(true) }

// ChartStyle colors sparklines.
func (t Theme) ChartStyle() lipgloss.Style { return t.fg(t.Chart) }

// Status colors text by severity.
func (t Theme) Status(l Level) lipgloss.Style {
	switch l {
	case LevelOK:
		return t.fg(t.OK)
	case LevelWarn:
		return t.fg(t.Warn)
	case LevelError:
		return t.fg(t.Error)
	}
	return t.fg(t.Dim)
}

// Threshold maps a 0..1 usage ratio to a severity: 0.9 and above is an
// error, 0.7 and above a warning.
func Threshold(ratio float64) Level {
	switch {
	case ratio >= 0.9:
		return LevelError
	case ratio >= 0.7:
		return LevelWarn
	}
	return LevelOK
}

// Box is the rounded widget frame.
func (t Theme) Box(focused bool) lipgloss.Style {
	c := t.Border
	if focused {
		c = t.BorderFocus
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(c))
}
