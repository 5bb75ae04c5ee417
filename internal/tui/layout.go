package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/tui/components"
)

// tabAtX maps a click column on the tab bar to a tab index, or -1.
func (a App) tabAtX(x int) int {
	left := 0
	for i, tab := range components.Tabs {
		right := left + components.TabVisualWidth(tab, i == a.activeTab)
		if x >= left && x < right {
			return i
		}
		left = right + 1
	}
	return -1
}

// predictionsInOrder lists revenue before cost, shorter horizons first.
func predictionsInOrder(f *model.Forecast) []model.Prediction {
	if f == nil {
		return nil
	}
	out := make([]model.Prediction, 0, len(f.Predictions))
	for _, p := range f.Predictions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FlowType != out[j].FlowType {
			return out[i].FlowType == model.Revenue
		}
		return out[i].HorizonDays < out[j].HorizonDays
	})
	return out
}

// truncStr shortens s to limit runes, ending in an ellipsis when cut.
func truncStr(s string, limit int) string {
	r := []rune(s)
	switch {
	case limit <= 0:
		return ""
	case len(r) <= limit:
		return s
	}
	return string(r[:limit-1]) + "…"
}

// fitHeight cuts or pads s to exactly h lines.
func fitHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		return strings.Join(lines[:h], "\n")
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// padLines widens every line of s to w columns of bg.
func padLines(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, l, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
