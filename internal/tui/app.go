// Package tui provides the interactive Bubble Tea dashboard for fincast.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/service"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"
	"go.uber.org/zap"
)

// Options configures the dashboard.
type Options struct {
	DBPath     string
	ImportDir  string
	ConfigPath string
	Config     config.Config
	Logger     *zap.Logger
}

// Tab indices, matching components.Tabs.
const (
	tabOverview = iota
	tabForecast
	tabLedger
	tabCategories
	tabSettings
)

// App is the root Bubble Tea model.
type App struct {
	opts Options
	cfg  config.Config

	// Last load.
	records     []model.Record
	loaded      bool
	loadTime    time.Duration
	loadErr     error
	forecastErr error
	lastSync    *pipeline.SyncResult
	refreshing  bool

	// Derived from records.
	summary    model.SummaryStats
	months     []model.MonthlyStats
	categories []model.CategoryStats
	forecast   *model.Forecast
	stats      service.Stats

	width, height int
	activeTab     int
	showHelp      bool
	help          help.Model

	ledger   ledgerState
	settings settingsState

	// Shown instead of the dashboard until the first config is saved.
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool

	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

// NewApp builds the dashboard. A missing config file starts the setup
// form once the first load finishes.
func NewApp(opts Options) App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.Path()
	}
	t := theme.Active

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	h := help.New()
	h.Styles.FullKey = lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	h.Styles.FullSeparator = lipgloss.NewStyle().Background(t.Surface)

	return App{
		opts:      opts,
		cfg:       opts.Config,
		needSetup: !fileExists(opts.ConfigPath),
		spinner:   sp,
		help:      h,
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(tea.EnableMouseCellMotion, loadDataCmd(a.opts, a.cfg, a.loadSub), a.spinner.Tick)
}

func (a App) inSetup() bool { return a.needSetup && a.setupForm != nil }

func (a *App) applyLoad(msg DataLoadedMsg) {
	a.loadTime = msg.LoadTime
	a.loadErr = msg.Err
	if msg.Err != nil {
		return
	}
	a.records = msg.Records
	a.forecast = msg.Forecast
	a.forecastErr = msg.ForecastErr
	a.stats = msg.Stats
	a.lastSync = msg.Sync
	a.recompute()
}

func (a *App) recompute() {
	a.summary = pipeline.Summarize(a.records)
	a.months = pipeline.AggregateMonths(a.records)
	a.categories = pipeline.AggregateCategories(a.records)
	a.ledger.cursor = max(0, min(a.ledger.cursor, len(a.months)-1))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case tea.MouseMsg:
		if a.loaded && !a.showHelp && !a.inSetup() {
			a.handleMouse(msg)
		}
		return a, nil

	case ProgressMsg:
		a.progress, a.progressMax = msg.Current, msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case DataLoadedMsg:
		first := !a.loaded
		a.loaded, a.refreshing = true, false
		a.applyLoad(msg)
		if first && a.needSetup {
			return a, a.startSetup()
		}
		return a, nil

	case spinner.TickMsg:
		if a.loaded && !a.refreshing {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.inSetup() {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a *App) handleMouse(msg tea.MouseMsg) {
	scroll := 0
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		scroll = -1
	case tea.MouseButtonWheelDown:
		scroll = 1
	case tea.MouseButtonLeft:
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	if scroll != 0 && a.activeTab == tabLedger && !a.ledger.searching {
		a.ledger.move(scroll, len(a.months))
	}
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}
	if !a.loaded {
		if key.Matches(msg, keys.Quit) {
			return a, tea.Quit
		}
		return a, nil
	}

	switch {
	case a.inSetup():
		return a.updateSetupForm(msg)
	case a.activeTab == tabSettings && a.settings.editing:
		return a.updateSettingsInput(msg)
	case a.activeTab == tabLedger && a.ledger.searching:
		return a.updateLedgerSearch(msg)
	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		return a, nil
	case a.showHelp:
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabLedger:
		if m, cmd, handled := a.updateLedgerKey(msg.String()); handled {
			return m, cmd
		}
	case tabSettings:
		switch {
		case key.Matches(msg, keys.Down):
			a.settings.cursor = min(a.settings.cursor+1, settingsFieldCount-1)
			return a, nil
		case key.Matches(msg, keys.Up):
			a.settings.cursor = max(a.settings.cursor-1, 0)
			return a, nil
		case key.Matches(msg, keys.Enter):
			return a.settingsStartEdit()
		}
	}

	n := len(components.Tabs)
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Retrain):
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, tea.Batch(refreshDataCmd(a.opts, a.cfg), a.spinner.Tick)
	case key.Matches(msg, keys.Prev):
		a.activeTab = (a.activeTab + n - 1) % n
	case key.Matches(msg, keys.Next):
		a.activeTab = (a.activeTab + 1) % n
	case key.Matches(msg, keys.Jump):
		if r := msg.Runes; len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a *App) startSetup() tea.Cmd {
	a.setupVals = newSetupValues(a.cfg, a.opts.ImportDir)
	a.setupForm = newSetupForm(len(a.records), &a.setupVals)
	if a.width > 0 {
		a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
	}
	return a.setupForm.Init()
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupVals.apply(&a.cfg)
		theme.SetActive(a.cfg.Appearance.Theme)
		a.settings.saveErr = config.SaveTo(a.opts.ConfigPath, a.cfg)
		a.needSetup, a.setupForm, a.refreshing = false, nil, true
		return a, refreshDataCmd(a.opts, a.cfg)
	case huh.StateAborted:
		a.needSetup, a.setupForm = false, nil
		return a, nil
	}
	return a, cmd
}
