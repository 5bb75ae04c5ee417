package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette used for plain CLI output. The TUI has its own themes.
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	heading = fg(ColorAccent).Bold(true)
	frame   = fg(ColorTextDim)
	cell    = fg(ColorText)
)

// SeparatorRow inserted into Table.Rows draws a horizontal rule.
var SeparatorRow = []string{"---"}

// Table is a boxed table. Column 0 is left aligned and the others right
// aligned. Widths are computed from the content unless set.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int
}

// RenderTitle draws title centered in a rounded box.
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Padding(0, 1).
		Align(lipgloss.Center).
		Render(fg(ColorText).Bold(true).Render(title))
}

type tableWriter struct {
	b      strings.Builder
	widths []int
}

func (w *tableWriter) rule(l, m, r string) {
	segs := make([]string, len(w.widths))
	for i, n := range w.widths {
		segs[i] = strings.Repeat("─", n+2)
	}
	w.b.WriteString(frame.Render(l+strings.Join(segs, m)+r) + "\n")
}

func (w *tableWriter) line(cells []string, style lipgloss.Style, numeric bool) {
	bar := frame.Render("│")
	w.b.WriteString(bar)
	for i, n := range w.widths {
		var c string
		if i < len(cells) {
			c = cells[i]
		}
		pad := strings.Repeat(" ", max(0, n-lipgloss.Width(c)))
		if numeric && i > 0 {
			c = pad + c
		} else {
			c += pad
		}
		w.b.WriteString(style.Render(" "+c+" ") + bar)
	}
	w.b.WriteString("\n")
}

// RenderTable draws t, or returns "" when it has no columns.
func RenderTable(t Table) string {
	cols := len(t.Headers)
	if cols == 0 && len(t.Rows) > 0 {
		cols = len(t.Rows[0])
	}
	if cols == 0 {
		return ""
	}

	w := &tableWriter{widths: make([]int, cols)}
	if t.Widths != nil {
		copy(w.widths, t.Widths)
	} else {
		for _, r := range append([][]string{t.Headers}, t.Rows...) {
			for i := 0; i < len(r) && i < cols; i++ {
				w.widths[i] = max(w.widths[i], lipgloss.Width(r[i]))
			}
		}
	}

	if t.Title != "" {
		w.b.WriteString("  " + heading.Render(t.Title) + "\n")
	}
	w.rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		w.line(t.Headers, heading, false)
		w.rule("├", "┼", "┤")
	}
	for _, r := range t.Rows {
		if len(r) == 1 && r[0] == SeparatorRow[0] {
			w.rule("├", "┼", "┤")
			continue
		}
		w.line(r, cell, true)
	}
	w.rule("╰", "┴", "╯")
	return w.b.String()
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline maps values onto block glyphs. The floor is zero unless
// the series goes negative.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := min(values[0], 0), values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	out := make([]rune, len(values))
	top := len(sparkRunes) - 1
	for i, v := range values {
		out[i] = sparkRunes[max(0, min(int((v-lo)/span*float64(top)), top))]
	}
	return string(out)
}

// Bar draws value as a muted bar, scaled so that top fills width.
func Bar(value, top float64, width int) string {
	if top <= 0 || value <= 0 {
		return ""
	}
	return Muted(strings.Repeat("█", int(value/top*float64(width))))
}

// Revenue colors s as an inflow.
func Revenue(s string) string { return fg(ColorGreen).Render(s) }

// Cost colors s as an outflow.
func Cost(s string) string { return fg(ColorRed).Render(s) }

// Warn colors s as a warning.
func Warn(s string) string { return fg(ColorOrange).Render(s) }

// Muted renders s in the muted text color.
func Muted(s string) string { return fg(ColorTextMuted).Render(s) }
