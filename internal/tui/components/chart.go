package components

import (
	"math"
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// eighths are partial block glyphs, index n fills n/8 of a cell.
var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders one glyph per value, scaled between the series minimum
// (or zero, whichever is lower) and maximum.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := 0.0, values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	glyphs := make([]rune, len(values))
	for i, v := range values {
		level := 1 + int((v-lo)/span*7)
		glyphs[i] = eighths[max(1, min(level, 8))]
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(string(glyphs))
}

// BarChart draws one vertical bar per period, oldest on the left, with a
// y-axis scaled to a rounded ceiling. When the bars do not fit in width the
// oldest periods are dropped. Negative values draw as empty bars.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	if len(labels) != len(values) {
		labels = nil
	}

	t := theme.Active
	surface := lipgloss.NewStyle().Background(t.Surface)
	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	ceiling := niceCeiling(peak)

	axisW := max(len(cli.FormatCompact(ceiling)), len(cli.FormatCompact(ceiling/2))) + 1
	plotW := width - axisW - 1

	// Each bar takes barW cells plus a one cell gap.
	barW := max(1, min(4, plotW/len(values)-1))
	if fit := (plotW + 1) / (barW + 1); fit < len(values) {
		values = values[len(values)-fit:]
		if labels != nil {
			labels = labels[len(labels)-fit:]
		}
	}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		var tick string
		switch row {
		case height:
			tick = cli.FormatCompact(ceiling)
		case (height + 1) / 2:
			if height >= 5 {
				tick = cli.FormatCompact(ceiling / 2)
			}
		}
		b.WriteString(axis.Render(padLeft(tick, axisW) + "┤"))

		rowBase := ceiling * float64(row-1) / float64(height)
		rowStep := ceiling / float64(height)
		for i, v := range values {
			if i > 0 {
				b.WriteString(surface.Render(" "))
			}
			fill := 0
			if v > rowBase {
				fill = min(8, int(math.Ceil((v-rowBase)/rowStep*8)))
			}
			b.WriteString(bar.Render(strings.Repeat(string(eighths[fill]), barW)))
		}
		b.WriteString("\n")
	}

	plotLen := len(values)*(barW+1) - 1
	b.WriteString(axis.Render(padLeft("0", axisW) + "└" + strings.Repeat("─", plotLen)))

	if labels != nil {
		b.WriteString("\n")
		b.WriteString(axis.Render(strings.Repeat(" ", axisW+1) + placeLabels(labels, barW, plotLen)))
	}
	return b.String()
}

// niceCeiling rounds v up to 1, 2 or 5 times a power of ten.
func niceCeiling(v float64) float64 {
	if v <= 0 {
		return 1
	}
	base := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*base {
			return m * base
		}
	}
	return 10 * base
}

// placeLabels writes labels under their bars, skipping any that would
// touch the previous one.
func placeLabels(labels []string, barW, plotLen int) string {
	line := []rune(strings.Repeat(" ", plotLen))
	next := 0
	for i, lbl := range labels {
		pos := i * (barW + 1)
		r := []rune(lbl)
		if pos < next || pos+len(r) > plotLen {
			continue
		}
		copy(line[pos:], r)
		next = pos + len(r) + 1
	}
	return strings.TrimRight(string(line), " ")
}

func padLeft(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return strings.Repeat(" ", w-len(s)) + s
}
