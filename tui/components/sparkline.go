package components

import (
	"fmt"
	"math"
	"strings"
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders the newest width samples as a one-line trend, right
// aligned. Bars are scaled from zero and NaN samples are left blank.
func Sparkline(data []float64, width int) string {
	if len(data) > width {
		data = data[len(data)-width:]
	}
	top := 0.0
	for _, v := range data {
		if !math.IsNaN(v) {
			top = math.Max(top, v)
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(data)))
	for _, v := range data {
		switch {
		case math.IsNaN(v):
			sb.WriteRune(' ')
		case top <= 0:
			sb.WriteRune(blocks[0])
		default:
			idx := int(v / top * float64(len(blocks)-1))
			sb.WriteRune(blocks[min(max(idx, 0), len(blocks)-1)])
		}
	}
	return sb.String()
}

// FormatCompact renders v in at most five characters for axis labels.
func FormatCompact(v float64) string {
	switch {
	case v == 0:
		return "0"
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 10_000:
		return fmt.Sprintf("%.0fk", v/1_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case v >= 100:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}
