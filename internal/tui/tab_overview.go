package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/forecast"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// chartMonths caps the number of months drawn in overview charts.
const chartMonths = 24

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	s := a.summary
	var b strings.Builder

	if s.Records == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		body := muted.Render("No ledger records.") + "\n\n" +
			muted.Render("Import with `fincast import <file>` or drop files into ") +
			lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render(a.opts.ImportDir) +
			muted.Render(" and press r.")
		return components.ContentCard("Overview", body, cw)
	}

	net := s.Net.InexactFloat64()
	cards := []components.Metric{
		{Label: "Revenue", Value: cli.FormatCompact(s.Revenue.InexactFloat64()),
			Delta: cli.FormatCompact(s.RevenuePerMonth.InexactFloat64()) + "/month", Color: t.Revenue()},
		{Label: "Cost", Value: cli.FormatCompact(s.Cost.InexactFloat64()),
			Delta: cli.FormatCompact(s.CostPerMonth.InexactFloat64()) + "/month", Color: t.Cost()},
		{Label: "Net", Value: cli.FormatCompact(net), Delta: fmt.Sprintf("%d months", s.Periods), Color: t.Signed(net)},
		{Label: "Margin", Value: cli.FormatPercent(s.Margin), Delta: fmt.Sprintf("%d categories", s.Categories)},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Monthly revenue and cost, oldest left.
	months := a.months
	if len(months) > chartMonths {
		months = months[:chartMonths]
	}
	n := len(months)
	revVals := make([]float64, n)
	costVals := make([]float64, n)
	netVals := make([]float64, n)
	labels := make([]string, n)
	for i, m := range months {
		j := n - 1 - i
		revVals[j] = m.Revenue.InexactFloat64()
		costVals[j] = m.Cost.InexactFloat64()
		netVals[j] = m.Net.InexactFloat64()
		labels[j] = monthLabel(m.Period)
	}

	halves := components.LayoutRow(cw, 2)
	chartH := 8
	if a.isCompactLayout() {
		chartH = 6
	}
	revW, costW := halves[0], halves[1]
	if a.isCompactLayout() {
		revW, costW = cw, cw
	}
	revCard := components.ContentCard(
		fmt.Sprintf("Monthly Revenue (%dm)", n),
		components.BarChart(revVals, labels, t.Revenue(), components.CardInnerWidth(revW), chartH),
		revW,
	)
	costCard := components.ContentCard(
		fmt.Sprintf("Monthly Cost (%dm)", n),
		components.BarChart(costVals, labels, t.Cost(), components.CardInnerWidth(costW), chartH),
		costW,
	)
	if a.isCompactLayout() {
		b.WriteString(revCard)
		b.WriteString("\n")
		b.WriteString(costCard)
	} else {
		b.WriteString(components.CardRow([]string{revCard, costCard}))
	}
	b.WriteString("\n")

	b.WriteString(components.CardRow([]string{
		components.ContentCard("Net Trend", a.renderNetTrend(netVals, components.CardInnerWidth(halves[0])), halves[0]),
		components.ContentCard("Next Periods", a.renderForecastHeadline(), halves[1]),
	}))

	return b.String()
}

func (a App) renderNetTrend(values []float64, innerW int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if len(values) == 0 {
		return muted.Render("no data")
	}
	if len(values) > innerW {
		values = values[len(values)-innerW:]
	}

	last := values[len(values)-1]
	line := components.Sparkline(values, t.Accent)
	summary := muted.Render("latest ") +
		lipgloss.NewStyle().Foreground(t.Signed(last)).Background(t.Surface).Bold(true).Render(cli.FormatMoney(last))
	if len(values) > 1 {
		summary += muted.Render("  vs prior " + cli.FormatDelta(last, values[len(values)-2]))
	}
	return line + "\n" + summary
}

func (a App) renderForecastHeadline() string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if a.forecast == nil {
		if a.forecastErr != nil {
			return muted.Render(truncStr(a.forecastErr.Error(), 60))
		}
		return muted.Render("no forecast yet, press r to train")
	}

	var b strings.Builder
	for _, h := range forecast.DefaultHorizons {
		rev, okRev := a.forecast.Predictions[forecast.Key(model.Revenue, h)]
		cost, okCost := a.forecast.Predictions[forecast.Key(model.Cost, h)]
		if !okRev || !okCost {
			continue
		}
		net := rev.Predicted - cost.Predicted
		fmt.Fprintf(&b, "%s %s %s %s\n",
			muted.Render(fmt.Sprintf("%-4s→ %s", fmt.Sprintf("%dd", h), rev.TargetPeriod)),
			lipgloss.NewStyle().Foreground(t.Revenue()).Background(t.Surface).Render(cli.FormatCompact(rev.Predicted)),
			lipgloss.NewStyle().Foreground(t.Cost()).Background(t.Surface).Render(cli.FormatCompact(cost.Predicted)),
			lipgloss.NewStyle().Foreground(t.Signed(net)).Background(t.Surface).Bold(true).Render("net "+cli.FormatCompact(net)))
	}
	if b.Len() == 0 {
		return muted.Render("no forecast for default horizons")
	}
	b.WriteString(muted.Render("from " + a.forecast.BasePeriod))
	return b.String()
}

// monthLabel turns "2024-03" into "Mar" ("Jan24" at year starts).
func monthLabel(period string) string {
	p, err := model.ParsePeriod(period)
	if err != nil {
		return period
	}
	if p.Month == 1 {
		return p.Time().Format("Jan06")
	}
	return p.Time().Format("Jan")
}
