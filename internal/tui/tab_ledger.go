package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ledgerState holds the ledger tab state. The cursor indexes a.months.
type ledgerState struct {
	cursor      int
	offset      int
	searching   bool
	searchInput textinput.Model
	query       string
}

func (s *ledgerState) move(delta, n int) {
	s.cursor = max(0, min(s.cursor+delta, n-1))
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "category or note"
	ti.CharLimit = 64
	ti.Width = 30
	return ti
}

func (a App) updateLedgerKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "/":
		a.ledger.searching = true
		a.ledger.searchInput = newSearchInput()
		a.ledger.searchInput.SetValue(a.ledger.query)
		a.ledger.searchInput.Focus()
		return a, textinput.Blink, true
	case "esc":
		a.ledger.query = ""
		return a, nil, true
	case "j", "down":
		a.ledger.move(1, len(a.months))
		return a, nil, true
	case "k", "up":
		a.ledger.move(-1, len(a.months))
		return a, nil, true
	case "g":
		a.ledger.cursor = 0
		a.ledger.offset = 0
		return a, nil, true
	case "G":
		a.ledger.move(len(a.months), len(a.months))
		return a, nil, true
	}
	return a, nil, false
}

// updateLedgerSearch handles keys while the filter input is focused.
func (a App) updateLedgerSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.ledger.query = strings.TrimSpace(a.ledger.searchInput.Value())
		a.ledger.searching = false
		return a, nil
	case "esc":
		a.ledger.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.ledger.searchInput, cmd = a.ledger.searchInput.Update(msg)
	return a, cmd
}

// periodRecords returns the records of period matching the current filter,
// revenue first, largest amounts first.
func (a App) periodRecords(period string) []model.Record {
	recs := pipeline.FilterByRange(a.records, period, period)
	if a.ledger.query != "" {
		q := strings.ToLower(a.ledger.query)
		n := 0
		for _, r := range recs {
			if strings.Contains(strings.ToLower(r.Category), q) || strings.Contains(strings.ToLower(r.Note), q) {
				recs[n] = r
				n++
			}
		}
		recs = recs[:n]
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].FlowType != recs[j].FlowType {
			return recs[i].FlowType == model.Revenue
		}
		return recs[i].Amount.GreaterThan(recs[j].Amount)
	})
	return recs
}

func (a App) renderLedgerTab(cw, h int) string {
	t := theme.Active
	if len(a.months) == 0 {
		return components.ContentCard("Ledger",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No ledger records"), cw)
	}

	ls := a.ledger
	leftW := max(cw/3, 34)
	rightW := cw - leftW
	leftInner := components.CardInnerWidth(leftW)

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	visible := max(h-6, 5)
	offset := ls.offset
	if ls.cursor < offset {
		offset = ls.cursor
	}
	if ls.cursor >= offset+visible {
		offset = ls.cursor - visible + 1
	}
	end := min(offset+visible, len(a.months))

	var left strings.Builder
	left.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %12s", "Period", "Net")))
	left.WriteString("\n")
	for i := offset; i < end; i++ {
		m := a.months[i]
		line := fmt.Sprintf("%-8s %12s", m.Period, cli.FormatCompact(m.Net.InexactFloat64()))
		line = truncStr(line, leftInner)
		if i == ls.cursor {
			left.WriteString(selectedStyle.Render(line))
		} else {
			left.WriteString(rowStyle.Render(line))
		}
		left.WriteString("\n")
	}
	if ls.searching {
		left.WriteString("\n/")
		left.WriteString(ls.searchInput.View())
	} else {
		left.WriteString(mutedStyle.Render("\n[/] filter  [j/k] move"))
	}

	leftCard := components.ContentCard("Months", left.String(), leftW)

	sel := a.months[ls.cursor]
	rightCard := components.ContentCard(
		fmt.Sprintf("%s · revenue %s · cost %s", sel.Period, cli.FormatAmount(sel.Revenue), cli.FormatAmount(sel.Cost)),
		a.renderPeriodDetail(sel.Period, rightW, visible),
		rightW,
	)

	return components.CardRow([]string{leftCard, rightCard})
}

func (a App) renderPeriodDetail(period string, outerW, limit int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(outerW)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	revStyle := lipgloss.NewStyle().Foreground(t.Revenue()).Background(t.Surface)
	costStyle := lipgloss.NewStyle().Foreground(t.Cost()).Background(t.Surface)

	recs := a.periodRecords(period)
	if len(recs) == 0 {
		return mutedStyle.Render("no records match the filter")
	}

	const amountW = 14
	catW := max(12, (innerW-amountW-10)/2)
	noteW := max(0, innerW-amountW-catW-10)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %-*s %*s  %s", "Flow", catW, "Category", amountW, "Amount", "Note")))
	b.WriteString("\n")
	for i, r := range recs {
		if i >= limit {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more", len(recs)-limit)))
			break
		}
		style := revStyle
		if r.FlowType == model.Cost {
			style = costStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%-8s", r.FlowType)))
		b.WriteString(style.Render(fmt.Sprintf(" %-*s %*s", catW, truncStr(r.Category, catW), amountW, cli.FormatAmount(r.Amount))))
		b.WriteString(mutedStyle.Render("  " + truncStr(r.Note, noteW)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
