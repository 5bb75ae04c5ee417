package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/fincast/internal/tui/theme"
)

// Tab is one dashboard view. KeyPos indexes the shortcut letter inside
// Name; -1 means the key is shown as a "[k]" suffix instead.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int
}

// Tabs in display order.
var Tabs = []Tab{
	{"Overview", 'o', 0},
	{"Forecast", 'f', 0},
	{"Ledger", 'l', 0},
	{"Categories", 'c', 0},
	{"Settings", 'x', -1},
}

// TabVisualWidth is the rendered width of a tab label.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active && tab.KeyPos < 0 {
		w += len("[x]")
	}
	return w
}

func inactiveLabel(tab Tab) string {
	t := theme.Active
	plain := onSurface(t.TextMuted)
	key := onSurface(t.Accent).Bold(true)

	if tab.KeyPos < 0 || tab.KeyPos >= len(tab.Name) {
		dim := onSurface(t.TextDim)
		return plain.Render(" "+tab.Name) +
			dim.Render("[") + key.Render(string(tab.Key)) + dim.Render("]") +
			plain.Render(" ")
	}
	return plain.Render(" "+tab.Name[:tab.KeyPos]) +
		key.Render(tab.Name[tab.KeyPos:tab.KeyPos+1]) +
		plain.Render(tab.Name[tab.KeyPos+1:]+" ")
}

// RenderTabBar draws the tab strip across width columns.
func RenderTabBar(active, width int) string {
	t := theme.Active
	selected := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)

	out := ""
	for i, tab := range Tabs {
		if i > 0 {
			out += onSurface(t.TextMuted).Render(" ")
		}
		if i == active {
			out += selected.Render(tab.Name)
		} else {
			out += inactiveLabel(tab)
		}
	}
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(out)
}

// TabIdxByKey maps a shortcut key to its tab index, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
