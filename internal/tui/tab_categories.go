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

func (a App) renderCategoryCard(flow model.FlowType, title string, outerW int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(outerW)

	color := t.Revenue()
	if flow == model.Cost {
		color = t.Cost()
	}
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	numStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	var cats []model.CategoryStats
	for _, c := range a.categories {
		if c.FlowType == flow {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		return components.ContentCard(title, numStyle.Render("none"), outerW)
	}

	nameW := max(10, innerW/4)
	const amountW, shareW, countW = 14, 6, 5
	barMax := max(1, innerW-nameW-amountW-shareW-countW-4)

	maxShare := cats[0].SharePercent
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %*s %*s %*s", nameW, "Category", countW, "Recs", amountW, "Total", shareW, "Share")))
	b.WriteString("\n")
	for _, c := range cats {
		barLen := 0
		if maxShare > 0 {
			barLen = int(c.SharePercent / maxShare * float64(barMax))
		}
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(c.Category, nameW))))
		b.WriteString(numStyle.Render(fmt.Sprintf(" %*d %*s %*.1f%%", countW, c.Records, amountW, cli.FormatAmount(c.Total), shareW-1, c.SharePercent)))
		b.WriteString(barStyle.Render(" " + strings.Repeat("█", barLen)))
		b.WriteString("\n")
	}

	return components.ContentCard(title, strings.TrimRight(b.String(), "\n"), outerW)
}

func (a App) renderCategoriesTab(cw int) string {
	var b strings.Builder
	b.WriteString(a.renderCategoryCard(model.Revenue, "Revenue by Category", cw))
	b.WriteString("\n")
	b.WriteString(a.renderCategoryCard(model.Cost, "Cost by Category", cw))
	return b.String()
}
