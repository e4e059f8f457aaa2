package components

import (
	"fmt"
	"math"
	"strings"
)

const chartLabelWidth = 8

// chartBlocks run from empty to a full cell in eighths.
var chartBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// gapMark is drawn on the bottom row for a NaN sample, such as a lost ping.
const gapMark = '×'

// RenderChart draws data (oldest first) as vertical bars scaled from zero.
// width and height include the axis labels and the title row. format renders
// the axis labels; nil uses FormatCompact.
func RenderChart(data []float64, width, height int, title string, format func(float64) string) string {
	if format == nil {
		format = FormatCompact
	}
	width = max(width, 10)
	height = max(height, 4)
	cols := max(width-chartLabelWidth, 2)
	rows := max(height-1, 2)

	if len(data) > cols {
		data = data[len(data)-cols:]
	}
	top, ok := chartTop(data)

	lines := make([]string, 0, rows+1)
	lines = append(lines, centerText(title, width))
	for row := rows - 1; row >= 0; row-- {
		if !ok {
			lines = append(lines, strings.Repeat(" ", width))
			continue
		}
		lo := top * float64(row) / float64(rows)
		hi := top * float64(row+1) / float64(rows)

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%*s ", chartLabelWidth-1, format(hi)))
		sb.WriteString(strings.Repeat(" ", cols-len(data)))
		for _, v := range data {
			sb.WriteRune(chartCell(v, lo, hi, row == 0))
		}
		lines = append(lines, fitWidth(sb.String(), width))
	}
	return strings.Join(lines, "\n")
}

// chartTop returns the axis maximum, or false when nothing is plottable.
func chartTop(data []float64) (float64, bool) {
	top, seen := 0.0, false
	for _, v := range data {
		if math.IsNaN(v) {
			seen = true
			continue
		}
		top, seen = math.Max(top, v), true
	}
	if top <= 0 {
		top = 1
	}
	return top, seen
}

func chartCell(v, lo, hi float64, bottom bool) rune {
	switch {
	case math.IsNaN(v):
		if bottom {
			return gapMark
		}
		return ' '
	case v <= lo:
		return ' '
	case v >= hi:
		return chartBlocks[8]
	}
	idx := int(math.Round((v - lo) / (hi - lo) * 8))
	return chartBlocks[min(max(idx, 0), 8)]
}

// fitWidth trims or pads s to exactly width runes.
func fitWidth(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[len(r)-width:])
	}
	return s + strings.Repeat(" ", width-len(r))
}

func centerText(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	pad := (width - len(r)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(r)-pad)
}
