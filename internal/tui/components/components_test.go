package components

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theirongolddev/fincast/internal/tui/theme"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	assert.Equal(t, []int{34, 33, 33}, LayoutRow(100, 3))
	assert.Nil(t, LayoutRow(100, 0))
}

func TestCardRowPadsToTallest(t *testing.T) {
	theme.SetActive("flexoki-dark")

	short := ContentCard("Revenue", "1,000.00", 22)
	tall := ContentCard("Cost", "a\nb\nc\nd\ne", 22)
	require.Less(t, lipgloss.Height(short), lipgloss.Height(tall))

	joined := CardRow([]string{tall, "", short})
	lines := strings.Split(joined, "\n")
	assert.Len(t, lines, lipgloss.Height(tall))
	for i, line := range lines {
		assert.Equal(t, 44, lipgloss.Width(line), "line %d", i)
		assert.Contains(t, line, "\x1b[", "line %d has no styling", i)
	}
	assert.Equal(t, "", CardRow([]string{"", ""}))
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Revenue", Value: "12.5K"},
		{Label: "Cost", Value: "8.1K", Delta: "-3%"},
	}, 61)
	for _, line := range strings.Split(row, "\n") {
		assert.Equal(t, 61, lipgloss.Width(line))
	}
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 0)
		want := 0
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		want += len(Tabs) - 1
		assert.Equal(t, want, lipgloss.Width(bar), "active=%d", active)
	}
	assert.Equal(t, 1, TabIdxByKey('f'))
	assert.Equal(t, -1, TabIdxByKey('z'))
}

func TestColorForScore(t *testing.T) {
	th := theme.Active
	assert.Equal(t, string(th.Green), ColorForScore(0.95))
	assert.Equal(t, string(th.Yellow), ColorForScore(0.75))
	assert.Equal(t, string(th.Orange), ColorForScore(0.55))
	assert.Equal(t, string(th.Red), ColorForScore(-2))
}

func TestSparklineHandlesNegatives(t *testing.T) {
	out := Sparkline([]float64{-100, 0, 100}, theme.Active.Accent)
	assert.Contains(t, out, "▁")
	assert.Contains(t, out, "█")
	assert.Equal(t, 3, lipgloss.Width(out))
}

func TestBarChartKeepsNewestPeriods(t *testing.T) {
	values := make([]float64, 20)
	labels := make([]string, 20)
	for i := range values {
		values[i] = float64(i+1) * 100
		labels[i] = fmt.Sprintf("p%02d", i+1)
	}

	out := BarChart(values, labels, theme.Active.Accent, 30, 4)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)
	for _, l := range lines {
		assert.LessOrEqual(t, lipgloss.Width(l), 30)
	}
	assert.Contains(t, out, "p09")
	assert.NotContains(t, out, "p08")
	assert.Contains(t, lines[0], "2.0K")
}

func TestBarChartSmallFallsBackToSparkline(t *testing.T) {
	out := BarChart([]float64{1, 2, 3}, nil, theme.Active.Accent, 10, 2)
	assert.Equal(t, 3, lipgloss.Width(out))
}

func TestNiceCeiling(t *testing.T) {
	assert.InDelta(t, 2000, niceCeiling(1300), 1e-9)
	assert.InDelta(t, 1000, niceCeiling(1000), 1e-9)
	assert.InDelta(t, 0.5, niceCeiling(0.3), 1e-9)
	assert.InDelta(t, 1, niceCeiling(-5), 1e-9)
}
