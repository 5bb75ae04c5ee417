package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderForecastTab(cw int) string {
	t := theme.Active

	if a.forecast == nil {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		msg := "No forecast available. Press r to sync and retrain."
		if a.forecastErr != nil {
			msg = a.forecastErr.Error()
		}
		return components.ContentCard("Forecast", muted.Render(msg), cw)
	}

	var b strings.Builder
	b.WriteString(a.renderPredictionTable(cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	accCard := components.ContentCard("Accuracy (in-sample)", a.renderAccuracy(halves[0]), halves[0])
	infoCard := components.ContentCard("Model", a.renderModelInfo(), halves[1])
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Accuracy (in-sample)", a.renderAccuracy(cw), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Model", a.renderModelInfo(), cw))
	} else {
		b.WriteString(components.CardRow([]string{accCard, infoCard}))
	}
	return b.String()
}

func (a App) renderPredictionTable(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	const numW = 14
	var body strings.Builder
	if a.isCompactLayout() {
		body.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %4s %-8s %*s %*s", "Flow", "Days", "Target", numW, "Predicted", numW+3, "Band")))
	} else {
		body.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %4s %-8s %*s %*s %*s  %-14s", "Flow", "Days", "Target",
			numW, "Predicted", numW, "Lower", numW, "Upper", "Model")))
	}
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	for _, p := range predictionsInOrder(a.forecast) {
		flowStyle := lipgloss.NewStyle().Foreground(t.Revenue()).Background(t.Surface)
		if p.FlowType == model.Cost {
			flowStyle = flowStyle.Foreground(t.Cost())
		}
		body.WriteString(flowStyle.Render(fmt.Sprintf("%-8s", p.FlowType)))
		if a.isCompactLayout() {
			band := fmt.Sprintf("±%s", cli.FormatCompact((p.Confidence.Upper-p.Confidence.Lower)/2))
			body.WriteString(rowStyle.Render(fmt.Sprintf(" %4d %-8s %*s %*s",
				p.HorizonDays, p.TargetPeriod, numW, cli.FormatMoney(p.Predicted), numW+3, band)))
		} else {
			body.WriteString(rowStyle.Render(fmt.Sprintf(" %4d %-8s %*s %*s %*s",
				p.HorizonDays, p.TargetPeriod,
				numW, cli.FormatMoney(p.Predicted),
				numW, cli.FormatMoney(p.Confidence.Lower),
				numW, cli.FormatMoney(p.Confidence.Upper))))
			body.WriteString(mutedStyle.Render(fmt.Sprintf("  %-14s", p.Model)))
		}
		body.WriteString("\n")
	}

	return components.ContentCard(fmt.Sprintf("Predictions from %s", a.forecast.BasePeriod), body.String(), cw)
}

func (a App) renderAccuracy(outerW int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	barW := max(components.CardInnerWidth(outerW)-24, 8)
	var b strings.Builder
	for _, flow := range model.FlowTypes {
		var score model.Accuracy
		ok := false
		for _, p := range predictionsInOrder(a.forecast) {
			if p.FlowType == flow {
				score, ok = p.Accuracy, true
				break
			}
		}
		if !ok {
			continue
		}
		b.WriteString(muted.Render(fmt.Sprintf("%s (%s)", flow, a.stats.Models[flow])))
		b.WriteString("\n")
		b.WriteString(components.ScoreBar("  R²", score.R2, 8, barW))
		b.WriteString("\n")
		b.WriteString(components.ScoreBar("  1-MAPE", score.MAPE, 8, barW))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return muted.Render("not trained")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a App) renderModelInfo() string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	trained := "never"
	if a.stats.LastTraining != nil {
		trained = a.stats.LastTraining.Local().Format("2006-01-02 15:04:05")
	}
	anchor := a.stats.Anchor
	if anchor == "" {
		anchor = "(earliest period)"
	}

	rows := [][2]string{
		{"Algorithm", a.stats.ActiveModel},
		{"Trained", trained},
		{"Records", cli.FormatNumber(int64(a.stats.TrainingRecords))},
		{"Anchor", anchor},
		{"Mean R²", fmt.Sprintf("%.3f", a.stats.MeanR2)},
		{"Run", truncStr(a.forecast.RunID, 13)},
		{"Stored runs", cli.FormatNumber(int64(a.stats.Predictions))},
	}

	var b strings.Builder
	for i, r := range rows {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s ", r[0])))
		b.WriteString(valueStyle.Render(r[1]))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
