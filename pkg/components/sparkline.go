package components

import (
	"math"
	"strings"
)

// Sparkline block characters: 8 vertical levels per cell.
var sparkBlocks = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders the last width points of data as block characters,
// scaled between the data's own minimum and maximum. Equal values sit at
// mid-height.
func Sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}
	lo, hi := data[0], data[0]
	for _, v := range data[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	span := hi - lo
	for _, v := range data {
		idx := 3
		if span > 0 {
			idx = int(math.Round((v - lo) / span * 7))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}
