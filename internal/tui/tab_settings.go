package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldTheme = iota
	settingsFieldImportDir
	settingsFieldMinPeriods
	settingsFieldRidgeLambda
	settingsFieldHorizons
	settingsFieldAnchor
	settingsFieldSyncInterval
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	ti.SetValue(a.settingValue(a.settings.cursor))

	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
	case settingsFieldImportDir:
		ti.Placeholder = a.opts.ImportDir
	case settingsFieldMinPeriods:
		ti.Placeholder = "3"
	case settingsFieldRidgeLambda:
		ti.Placeholder = "1e-6"
	case settingsFieldHorizons:
		ti.Placeholder = "30,60"
	case settingsFieldAnchor:
		ti.Placeholder = "YYYY-MM, empty for earliest period"
	case settingsFieldSyncInterval:
		ti.Placeholder = "5m, empty to disable"
	}

	ti.Focus()
	a.settings.input = ti
	return a, textinput.Blink
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func (a App) settingValue(field int) string {
	cfg := a.cfg
	switch field {
	case settingsFieldTheme:
		return cfg.Appearance.Theme
	case settingsFieldImportDir:
		return cfg.General.ImportDir
	case settingsFieldMinPeriods:
		return strconv.Itoa(cfg.Forecast.MinPeriods)
	case settingsFieldRidgeLambda:
		return strconv.FormatFloat(cfg.Forecast.RidgeLambda, 'g', -1, 64)
	case settingsFieldHorizons:
		hs := make([]string, len(cfg.Forecast.Horizons))
		for i, h := range cfg.Forecast.Horizons {
			hs[i] = strconv.Itoa(h)
		}
		return strings.Join(hs, ",")
	case settingsFieldAnchor:
		return cfg.Forecast.Anchor
	case settingsFieldSyncInterval:
		return cfg.Server.SyncInterval
	}
	return ""
}

// applySetting parses val into a copy of cfg for field.
func applySetting(cfg config.Config, field int, val string) (config.Config, error) {
	switch field {
	case settingsFieldTheme:
		if theme.ByName(val).Name != val {
			return cfg, fmt.Errorf("unknown theme %q", val)
		}
		cfg.Appearance.Theme = val
	case settingsFieldImportDir:
		cfg.General.ImportDir = val
	case settingsFieldMinPeriods:
		n, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("min periods: %w", err)
		}
		cfg.Forecast.MinPeriods = n
	case settingsFieldRidgeLambda:
		l, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return cfg, fmt.Errorf("ridge lambda: %w", err)
		}
		cfg.Forecast.RidgeLambda = l
	case settingsFieldHorizons:
		var hs []int
		for _, part := range strings.Split(val, ",") {
			h, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return cfg, fmt.Errorf("horizons: %w", err)
			}
			hs = append(hs, h)
		}
		cfg.Forecast.Horizons = hs
	case settingsFieldAnchor:
		cfg.Forecast.Anchor = val
	case settingsFieldSyncInterval:
		cfg.Server.SyncInterval = val
	}
	return cfg, cfg.Validate()
}

func (a *App) settingsSave() {
	val := strings.TrimSpace(a.settings.input.Value())
	cfg, err := applySetting(a.cfg, a.settings.cursor, val)
	if err != nil {
		a.settings.saveErr = err
		return
	}
	a.cfg = cfg
	if a.settings.cursor == settingsFieldTheme {
		theme.SetActive(cfg.Appearance.Theme)
	}
	a.settings.saveErr = config.SaveTo(a.opts.ConfigPath, cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	labels := [settingsFieldCount]string{
		"Theme", "Import Dir", "Min Periods", "Ridge Lambda", "Horizons", "Anchor", "Sync Interval",
	}

	var form strings.Builder
	for i, label := range labels {
		value := a.settingValue(i)
		if value == "" {
			value = "(not set)"
		}

		if a.settings.editing && i == a.settings.cursor {
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-16s ", label)))
			form.WriteString(a.settings.input.View())
			form.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			l := selectedLabelStyle.Render(fmt.Sprintf("%-16s ", label+":"))
			v := selectedStyle.Render(value)
			form.WriteString(marker + l + v)
			used := lipgloss.Width(marker) + lipgloss.Width(l) + lipgloss.Width(v)
			if pad := components.CardInnerWidth(cw) - used; pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			form.WriteString(labelStyle.Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-16s ", label+":")))
			form.WriteString(valueStyle.Render(value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved. Press r to retrain with the new settings."))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var info strings.Builder
	info.WriteString(labelStyle.Render("Database:        ") + valueStyle.Render(a.opts.DBPath) + "\n")
	info.WriteString(labelStyle.Render("Import dir:      ") + valueStyle.Render(a.opts.ImportDir) + "\n")
	info.WriteString(labelStyle.Render("Records loaded:  ") + valueStyle.Render(cli.FormatNumber(int64(len(a.records)))) + "\n")
	info.WriteString(labelStyle.Render("Load time:       ") + valueStyle.Render(fmt.Sprintf("%.1fs", a.loadTime.Seconds())) + "\n")
	info.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(a.opts.ConfigPath))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", form.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", info.String(), cw))
	return b.String()
}
