package components

import (
	"math"
	"strings"
)

// Block characters for sub-cell precision (8 levels per cell).
var gaugeBlocks = [9]rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

// Bar renders ratio (clamped to 0..1) as a width-cell horizontal bar with
// eighth-cell precision. The empty part is padded with spaces.
func Bar(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}
	ratio = math.Max(0, math.Min(1, ratio))
	if math.IsNaN(ratio) {
		ratio = 0
	}
	eighths := int(math.Round(ratio * float64(width*8)))
	full, part := eighths/8, eighths%8

	var b strings.Builder
	b.WriteString(strings.Repeat(string(gaugeBlocks[8]), full))
	if full < width {
		b.WriteRune(gaugeBlocks[part])
		b.WriteString(strings.Repeat(" ", width-full-1))
	}
	return b.String()
}
