// Package components holds ANSI-aware text primitives shared by the
// widgets: truncation, padding, block fitting, sparklines and bars.
package components

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "…"

// VisibleLen returns the width of s in terminal cells, ignoring escape
// sequences.
func VisibleLen(s string) int {
	return ansi.StringWidth(s)
}

// Truncate cuts s to at most width cells, ending in Ellipsis if anything
// was dropped.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, Ellipsis)
}

// PadRight pads s with spaces to width cells. Wider strings are returned
// unchanged.
func PadRight(s string, width int) string {
	vis := VisibleLen(s)
	if vis >= width {
		return s
	}
	return s + strings.Repeat(" ", width-vis)
}

// PadLeft is PadRight with the padding in front.
func PadLeft(s string, width int) string {
	vis := VisibleLen(s)
	if vis >= width {
		return s
	}
	return strings.Repeat(" ", width-vis) + s
}

// Spread places left and right at the two edges of a width-cell line. If
// they do not fit, right is dropped and left is truncated.
func Spread(left, right string, width int) string {
	gap := width - VisibleLen(left) - VisibleLen(right)
	if gap < 1 {
		return Truncate(left, width)
	}
	return left + strings.Repeat(" ", gap) + right
}

// Wrap word-wraps s at width cells.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	return strings.Split(ansi.Wrap(s, width, ""), "\n")
}

// Fit returns exactly height lines, each exactly width cells: long lines
// are truncated, short ones padded, and missing lines filled with blanks.
func Fit(lines []string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	out := make([]string, height)
	for i := range out {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		if VisibleLen(line) > width {
			line = Truncate(line, width)
		}
		out[i] = PadRight(line, width)
	}
	return strings.Join(out, "\n")
}

// PadCenter centers s within width cells, with any odd space on the right.
func PadCenter(s string, width int) string {
	vis := VisibleLen(s)
	if vis >= width {
		return s
	}
	left := (width - vis) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-vis-left)
}
