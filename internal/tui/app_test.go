package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"go.uber.org/zap"
)

const ledgerCSV = `period,flow_type,category,amount,note
2024-01,revenue,consulting,1000,
2024-02,revenue,consulting,1100,
2024-03,revenue,consulting,1200,
2024-01,cost,rent,400,office
2024-02,cost,rent,400,office
2024-03,cost,software,150,licenses
`

func rec(period string, flow model.FlowType, category string, amount int64, note string) model.Record {
	return model.Record{Period: period, FlowType: flow, Category: category, Amount: decimal.NewFromInt(amount), Note: note}
}

func newTestApp(t *testing.T) App {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, config.SaveTo(cfgPath, config.DefaultConfig()))

	return NewApp(Options{
		DBPath:     filepath.Join(dir, "fincast.db"),
		ImportDir:  filepath.Join(dir, "imports"),
		ConfigPath: cfgPath,
		Config:     config.DefaultConfig(),
		Logger:     zap.NewNop(),
	})
}

func loaded(t *testing.T, a App, msg DataLoadedMsg) App {
	t.Helper()
	m, _ := a.Update(msg)
	return m.(App)
}

func press(a App, key string) App {
	var msg tea.KeyMsg
	switch key {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m, _ := a.Update(msg)
	return m.(App)
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			assert.Equal(t, i, a.tabAtX(pos+w/2), "active=%d tab=%d", active, i)
			pos += w + 1
		}
		assert.Equal(t, -1, a.tabAtX(pos+10))
	}
}

func TestDataLoadedRecomputes(t *testing.T) {
	a := newTestApp(t)
	require.False(t, a.needSetup)

	a = loaded(t, a, DataLoadedMsg{Records: []model.Record{
		rec("2024-01", model.Revenue, "A", 1000, ""),
		rec("2024-02", model.Revenue, "A", 1100, ""),
		rec("2024-02", model.Cost, "rent", 400, ""),
	}})

	assert.True(t, a.loaded)
	assert.Equal(t, 3, a.summary.Records)
	require.Len(t, a.months, 2)
	assert.Equal(t, "2024-02", a.months[0].Period)
	assert.Len(t, a.categories, 2)
}

func TestDataLoadedErrorKeepsPreviousData(t *testing.T) {
	a := newTestApp(t)
	a = loaded(t, a, DataLoadedMsg{Records: []model.Record{rec("2024-01", model.Revenue, "A", 1000, "")}})
	a = loaded(t, a, DataLoadedMsg{Err: assert.AnError})

	assert.Equal(t, 1, a.summary.Records)
	assert.ErrorIs(t, a.loadErr, assert.AnError)
	assert.Contains(t, a.statusInfo().Message, assert.AnError.Error())
}

func TestKeyNavigation(t *testing.T) {
	a := newTestApp(t)
	a = press(a, "f")
	assert.Equal(t, 0, a.activeTab, "keys ignored before load")

	a = loaded(t, a, DataLoadedMsg{})
	a = press(a, "f")
	assert.Equal(t, tabForecast, a.activeTab)
	a = press(a, "x")
	assert.Equal(t, tabSettings, a.activeTab)
	a = press(a, "right")
	assert.Equal(t, tabOverview, a.activeTab)
	a = press(a, "left")
	assert.Equal(t, tabSettings, a.activeTab)

	a = press(a, "?")
	assert.True(t, a.showHelp)
	a = press(a, "o")
	assert.False(t, a.showHelp)
	assert.Equal(t, tabSettings, a.activeTab, "closing help swallows the key")
}

func TestLedgerCursorAndFilter(t *testing.T) {
	a := newTestApp(t)
	a = loaded(t, a, DataLoadedMsg{Records: []model.Record{
		rec("2024-01", model.Cost, "rent", 400, "office"),
		rec("2024-01", model.Revenue, "consulting", 900, ""),
		rec("2024-01", model.Cost, "software", 150, "licenses"),
		rec("2024-02", model.Revenue, "consulting", 1000, ""),
	}})
	a = press(a, "l")

	a = press(a, "k")
	assert.Equal(t, 0, a.ledger.cursor)
	a = press(a, "j")
	a = press(a, "j")
	assert.Equal(t, 1, a.ledger.cursor)
	assert.Equal(t, "2024-01", a.months[a.ledger.cursor].Period)

	recs := a.periodRecords("2024-01")
	require.Len(t, recs, 3)
	assert.Equal(t, model.Revenue, recs[0].FlowType)
	assert.Equal(t, "rent", recs[1].Category)

	a = press(a, "/")
	require.True(t, a.ledger.searching)
	for _, r := range "lic" {
		a = press(a, string(r))
	}
	a = press(a, "enter")
	assert.False(t, a.ledger.searching)
	assert.Equal(t, "lic", a.ledger.query)

	recs = a.periodRecords("2024-01")
	require.Len(t, recs, 1)
	assert.Equal(t, "software", recs[0].Category)

	a = press(a, "esc")
	assert.Empty(t, a.ledger.query)
}

func TestApplySetting(t *testing.T) {
	cfg := config.DefaultConfig()

	got, err := applySetting(cfg, settingsFieldHorizons, "30")
	require.NoError(t, err)
	assert.Equal(t, []int{30}, got.Forecast.Horizons)

	_, err = applySetting(cfg, settingsFieldHorizons, "30,45")
	assert.Error(t, err)

	_, err = applySetting(cfg, settingsFieldAnchor, "2024-13")
	assert.Error(t, err)

	_, err = applySetting(cfg, settingsFieldTheme, "solarized")
	assert.Error(t, err)

	got, err = applySetting(cfg, settingsFieldRidgeLambda, "0.5")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got.Forecast.RidgeLambda, 1e-12)
}

func TestSettingsSavePersists(t *testing.T) {
	a := newTestApp(t)
	a = loaded(t, a, DataLoadedMsg{})
	a = press(a, "x")
	a = press(a, "j")
	a = press(a, "j")
	require.Equal(t, settingsFieldMinPeriods, a.settings.cursor)

	a = press(a, "enter")
	require.True(t, a.settings.editing)
	a.settings.input.SetValue("6")
	a = press(a, "enter")

	require.NoError(t, a.settings.saveErr)
	assert.True(t, a.settings.saved)
	assert.Equal(t, 6, a.cfg.Forecast.MinPeriods)

	onDisk, err := config.LoadFrom(a.opts.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 6, onDisk.Forecast.MinPeriods)
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	v := newSetupValues(cfg, "/data/imports")
	assert.Equal(t, "/data/imports", v.importDir)
	assert.Equal(t, "flexoki-dark", v.theme)

	v.minPeriods = 6
	v.anchor = " 2023-01 "
	v.apply(&cfg)
	assert.Equal(t, "/data/imports", cfg.General.ImportDir)
	assert.Equal(t, 6, cfg.Forecast.MinPeriods)
	assert.Equal(t, "2023-01", cfg.Forecast.Anchor)

	assert.NoError(t, validateAnchor(""))
	assert.Error(t, validateAnchor("2023-1"))
}

func TestLoadAndTrain(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, os.MkdirAll(a.opts.ImportDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(a.opts.ImportDir, "ledger.csv"), []byte(ledgerCSV), 0o600))

	msg := loadAndTrain(a.opts, a.cfg, nil)
	require.NoError(t, msg.Err)
	require.NoError(t, msg.ForecastErr)
	require.NotNil(t, msg.Sync)
	assert.Equal(t, 6, msg.Sync.Saved)
	assert.Len(t, msg.Records, 6)

	require.NotNil(t, msg.Forecast)
	assert.Equal(t, "2024-03", msg.Forecast.BasePeriod)
	preds := predictionsInOrder(msg.Forecast)
	require.Len(t, preds, 4)
	assert.Equal(t, model.Revenue, preds[0].FlowType)
	assert.Equal(t, 30, preds[0].HorizonDays)
	assert.Equal(t, model.Cost, preds[3].FlowType)
	assert.Equal(t, 60, preds[3].HorizonDays)
	assert.NotNil(t, msg.Stats.LastTraining)

	again := loadAndTrain(a.opts, a.cfg, nil)
	require.NoError(t, again.Err)
	assert.Equal(t, 1, again.Sync.Unchanged)
	assert.Len(t, again.Records, 6)
	// Reloading replaces the run for the same base period.
	assert.Equal(t, msg.Stats.Predictions, again.Stats.Predictions)
}

func TestLoadAndTrain_Empty(t *testing.T) {
	a := newTestApp(t)
	msg := loadAndTrain(a.opts, a.cfg, nil)
	require.NoError(t, msg.Err)
	assert.Nil(t, msg.Forecast)
	assert.Error(t, msg.ForecastErr)
}

func TestViewRendersEveryTab(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, os.MkdirAll(a.opts.ImportDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(a.opts.ImportDir, "ledger.csv"), []byte(ledgerCSV), 0o600))

	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	a = m.(App)
	a = loaded(t, a, loadAndTrain(a.opts, a.cfg, nil))

	for i := range components.Tabs {
		a.activeTab = i
		assert.NotEmpty(t, a.View(), "tab %d", i)
	}

	m, _ = a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Contains(t, m.(App).View(), "too narrow")
}

func TestTruncStr(t *testing.T) {
	assert.Equal(t, "abc", truncStr("abc", 5))
	assert.Equal(t, "ab…", truncStr("abcd", 3))
	assert.Equal(t, "", truncStr("abc", 0))
}
