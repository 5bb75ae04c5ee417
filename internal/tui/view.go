package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

func (a App) contentWidth() int     { return min(a.width, maxContentWidth) }
func (a App) isCompactLayout() bool { return a.contentWidth() < compactWidth }

// View implements tea.Model.
func (a App) View() string {
	switch {
	case a.width == 0:
		return ""
	case a.width < minTerminalWidth:
		return fitHeight(fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  fincast needs at least %d columns.\n",
			a.width, minTerminalWidth), max(a.height, 5))
	case !a.loaded:
		return a.centered(a.loadingCard())
	case a.inSetup():
		return a.setupForm.View()
	case a.showHelp:
		return a.centered(a.helpCard())
	}
	return a.viewMain()
}

// centered places a modal card in the middle of the screen.
func (a App) centered(card string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(theme.Active.Background))
}

func modal(padY, padX int) lipgloss.Style {
	t := theme.Active
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(padY, padX)
}

func surfaceText(fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fg).Background(theme.Active.Surface)
}

func (a App) loadingCard() string {
	t := theme.Active
	muted := surfaceText(t.TextMuted)
	lines := []string{
		surfaceText(t.AccentBright).Bold(true).Render("◈ fincast") + muted.Render(" · ledger forecasts"),
		"",
	}
	if a.progressMax == 0 {
		lines = append(lines, a.spinner.View()+muted.Render(" Loading ledger and training models"))
		return modal(2, 4).Render(strings.Join(lines, "\n"))
	}

	num := surfaceText(t.TextPrimary)
	lines = append(lines,
		a.spinner.View()+muted.Render(" Importing files"),
		"",
		components.ProgressBar(float64(a.progress)/float64(a.progressMax), max(20, min(40, a.width-30))),
		num.Render(cli.FormatNumber(int64(a.progress)))+muted.Render(" / ")+num.Render(cli.FormatNumber(int64(a.progressMax))),
	)
	return modal(2, 4).Render(strings.Join(lines, "\n"))
}

func (a App) helpCard() string {
	t := theme.Active
	return modal(1, 3).Render(strings.Join([]string{
		surfaceText(t.AccentBright).Bold(true).Render("◈ Keys"),
		"",
		a.help.FullHelpView(keys.FullHelp()),
		"",
		surfaceText(t.TextDim).Render("any key closes this"),
	}, "\n"))
}

func (a App) statusInfo() components.StatusInfo {
	info := components.StatusInfo{
		DataAge:    fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		Trained:    a.stats.LastTraining != nil,
		MeanR2:     a.stats.MeanR2,
		Anchor:     a.stats.Anchor,
		Refreshing: a.refreshing,
	}
	switch {
	case a.loadErr != nil:
		info.Message = truncStr(a.loadErr.Error(), 60)
	case a.settings.saveErr != nil:
		info.Message = truncStr("config not saved: "+a.settings.saveErr.Error(), 60)
	case a.lastSync != nil && len(a.lastSync.FileErrors) > 0:
		info.Message = fmt.Sprintf("%d import files rejected", len(a.lastSync.FileErrors))
	}
	return info
}

// infoLine is the row under the tab bar: record count, period range and
// the active ledger filter.
func (a App) infoLine() string {
	t := theme.Active
	dim := surfaceText(t.TextDim)
	hi := surfaceText(t.Accent).Bold(true)

	parts := []string{hi.Render(cli.FormatNumber(int64(a.summary.Records))) + dim.Render(" records")}
	if a.summary.FirstPeriod != "" {
		parts = append(parts, hi.Render(a.summary.FirstPeriod+" → "+a.summary.LastPeriod))
	}
	if a.ledger.query != "" {
		parts = append(parts, dim.Render("filter ")+hi.Render(a.ledger.query))
	}
	line := dim.Render(" ") + strings.Join(parts, dim.Render(" │ "))
	return lipgloss.NewStyle().Background(t.Surface).Width(a.width).Render(line)
}

func (a App) viewMain() string {
	t := theme.Active
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, a.width) + "\n" + a.infoLine()
	status := components.RenderStatusBar(a.width, a.statusInfo())
	bodyH := max(a.height-lipgloss.Height(header)-lipgloss.Height(status), minContentHeight)

	var body string
	switch a.activeTab {
	case tabOverview:
		body = a.renderOverviewTab(cw)
	case tabForecast:
		body = a.renderForecastTab(cw)
	case tabLedger:
		body = a.renderLedgerTab(cw, bodyH)
	case tabCategories:
		body = a.renderCategoriesTab(cw)
	case tabSettings:
		body = a.renderSettingsTab(cw)
	}

	bg := lipgloss.WithWhitespaceBackground(t.Background)
	body = lipgloss.Place(a.width, bodyH, lipgloss.Center, lipgloss.Top,
		padLines(fitHeight(body, bodyH), cw, t.Background), bg)
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, header, body, status), bg)
}
