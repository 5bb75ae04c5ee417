package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/fincast/internal/tui/theme"
)

// ProgressBar renders the file loading bar followed by its percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clampScore(pct)
	done := int(pct * float64(width))

	fg := t.Cyan
	if pct >= 0.5 {
		fg = t.Accent
	}
	return onSurface(fg).Render(strings.Repeat("█", done)) +
		onSurface(t.TextDim).Render(strings.Repeat("░", width-done)) +
		onSurface(fg).Render(" ") +
		onSurface(fg).Bold(true).Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForScore grades an accuracy score in [0,1]: green at 0.9 and
// above, then yellow, orange and red in steps of 0.2.
func ColorForScore(score float64) string {
	t := theme.Active
	grades := []struct {
		floor float64
		color lipgloss.Color
	}{{0.9, t.Green}, {0.7, t.Yellow}, {0.5, t.Orange}}
	for _, g := range grades {
		if score >= g.floor {
			return string(g.color)
		}
	}
	return string(t.Red)
}

func clampScore(score float64) float64 {
	return max(0, min(score, 1))
}

func scoreFill(score float64, width int) string {
	bar := progress.New(
		progress.WithSolidFill(ColorForScore(score)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(theme.Active.TextDim)
	return bar.ViewAs(clampScore(score))
}

// ScoreBar renders "label bar value". Negative scores draw an empty bar
// but print the raw value.
func ScoreBar(label string, score float64, labelW, barW int) string {
	fg := lipgloss.Color(ColorForScore(score))
	gap := onSurface(theme.Active.TextMuted).Render(" ")
	return onSurface(theme.Active.TextMuted).Render(fmt.Sprintf("%-*s", labelW, label)) +
		gap + scoreFill(score, barW) + gap +
		onSurface(fg).Bold(true).Render(fmt.Sprintf("%6.3f", score))
}

// CompactScoreBar fits a score indicator into width columns of the
// status bar, printing the clamped score as a percentage.
func CompactScoreBar(label string, score float64, width int) string {
	fg := lipgloss.Color(ColorForScore(score))
	gap := onSurface(theme.Active.TextMuted).Render(" ")
	barW := max(width-lipgloss.Width(label)-6, 4)
	return onSurface(theme.Active.TextMuted).Render(label) +
		gap + scoreFill(score, barW) + gap +
		onSurface(fg).Bold(true).Render(fmt.Sprintf("%2.0f%%", clampScore(score)*100))
}
