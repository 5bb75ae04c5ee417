package components

import (
	"fmt"

	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is the state shown in the bottom status bar.
type StatusInfo struct {
	DataAge    string
	Trained    bool
	MeanR2     float64
	Anchor     string
	Refreshing bool
	Message    string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	left := style.Render(" [?]help  [r]etrain  [q]uit")
	if info.Message != "" {
		left += style.Render("  ") + lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Render(info.Message)
	}

	var right string
	switch {
	case info.Refreshing:
		right = lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render("training… ")
	case info.Trained:
		if info.Anchor != "" {
			right = style.Render(fmt.Sprintf("anchor %s  ", info.Anchor))
		}
		right += CompactScoreBar("R²", info.MeanR2, 18) + style.Render(" ")
	default:
		right = style.Render("untrained ")
	}
	if info.DataAge != "" {
		right += style.Render(fmt.Sprintf("│ %s ", info.DataAge))
	}

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + style.Render(fmt.Sprintf("%*s", padding, "")) + right
}
