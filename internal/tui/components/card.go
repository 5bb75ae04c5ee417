// Package components provides reusable TUI widgets for the fincast dashboard.
package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/fincast/internal/tui/theme"
)

const (
	cardBorder  = 2
	cardPadding = 2
	minCardText = 10
)

// Metric is one entry of a MetricCardRow.
type Metric struct {
	Label string
	Value string
	Delta string
	Color lipgloss.Color // TextPrimary when empty
}

// LayoutRow splits total into n widths summing to total. Leading columns
// take the remainder.
func LayoutRow(total, n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = total / n
		if i < total%n {
			out[i]++
		}
	}
	return out
}

// CardInnerWidth is the text width inside a card of the given outer width.
func CardInnerWidth(outer int) int {
	return max(outer-cardBorder-cardPadding, minCardText)
}

func card(outer int) lipgloss.Style {
	t := theme.Active
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(outer-cardBorder, minCardText)).
		Padding(0, 1)
}

func onSurface(fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fg).Background(theme.Active.Surface)
}

// MetricCard renders a label over a bold value, with an optional delta
// line underneath.
func MetricCard(m Metric, outer int) string {
	t := theme.Active
	fg := m.Color
	if fg == "" {
		fg = t.TextPrimary
	}
	lines := []string{
		onSurface(t.TextMuted).Render(m.Label),
		onSurface(fg).Bold(true).Render(m.Value),
	}
	if m.Delta != "" {
		lines = append(lines, onSurface(t.TextDim).Render(m.Delta))
	}
	return card(outer).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// MetricCardRow lays metric cards side by side across total columns.
func MetricCardRow(metrics []Metric, total int) string {
	if len(metrics) == 0 {
		return ""
	}
	widths := LayoutRow(total, len(metrics))
	cards := make([]string, len(metrics))
	for i, m := range metrics {
		cards[i] = MetricCard(m, widths[i])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// ContentCard wraps body in a card, with a bold title line when title is set.
func ContentCard(title, body string, outer int) string {
	if title != "" {
		body = onSurface(theme.Active.TextMuted).Bold(true).Render(title) + "\n" + body
	}
	return card(outer).Render(body)
}

// CardRow joins rendered cards horizontally, skipping empty ones and
// padding shorter cards down to the tallest.
func CardRow(cards []string) string {
	kept := make([]string, 0, len(cards))
	height := 0
	for _, c := range cards {
		if c != "" {
			kept = append(kept, c)
			height = max(height, lipgloss.Height(c))
		}
	}
	if len(kept) == 0 {
		return ""
	}
	fill := lipgloss.NewStyle().Background(theme.Active.Background)
	for i, c := range kept {
		if lipgloss.Height(c) < height {
			kept[i] = fill.Width(lipgloss.Width(c)).Height(height).Render(c)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, kept...)
}
