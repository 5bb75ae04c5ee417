package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/forecast"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/service"
	"github.com/theirongolddev/fincast/internal/store"
	"go.uber.org/zap"
)

// DataLoadedMsg carries the result of a load or retrain pass. Err is set
// when nothing could be read; ForecastErr when records loaded but no
// forecast was produced.
type DataLoadedMsg struct {
	Records     []model.Record
	Forecast    *model.Forecast
	Stats       service.Stats
	Sync        *pipeline.SyncResult
	ForecastErr error
	Err         error
	LoadTime    time.Duration
}

// ProgressMsg reports how many import files have been parsed.
type ProgressMsg struct {
	Current int
	Total   int
}

// loadDataCmd starts loadAndTrain in the background. Progress updates are
// dropped when the channel is full; the final DataLoadedMsg always arrives.
func loadDataCmd(opts Options, cfg config.Config, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			sub <- loadAndTrain(opts, cfg, func(cur, total int) {
				select {
				case sub <- ProgressMsg{Current: cur, Total: total}:
				default:
				}
			})
		}()
		return <-sub
	}
}

func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-sub }
}

func refreshDataCmd(opts Options, cfg config.Config) tea.Cmd {
	return func() tea.Msg { return loadAndTrain(opts, cfg, nil) }
}

// loadAndTrain syncs the import directory into the store, trains a fresh
// engine on every stored record and forecasts from the latest period.
func loadAndTrain(opts Options, cfg config.Config, progress pipeline.ProgressFunc) DataLoadedMsg {
	start := time.Now()
	msg := func() DataLoadedMsg {
		st, err := store.Open(opts.DBPath)
		if err != nil {
			return DataLoadedMsg{Err: fmt.Errorf("opening database: %w", err)}
		}
		defer func() { _ = st.Close() }()

		var out DataLoadedMsg
		if opts.ImportDir != "" {
			if out.Sync, err = pipeline.LoadWithCache(opts.ImportDir, st, progress); err != nil {
				opts.Logger.Warn("import sync failed", zap.Error(err))
			}
		}
		if out.Records, err = st.AllRecords(); err != nil {
			return DataLoadedMsg{Err: fmt.Errorf("reading records: %w", err)}
		}

		svc := service.New(st, forecast.New(cfg.EngineOptions(opts.Logger)...), opts.Logger,
			service.Config{Horizons: cfg.Forecast.Horizons})
		f, err := svc.LatestForecast()
		if err == nil {
			out.Forecast = &f
		} else {
			out.ForecastErr = err
			if !errors.Is(err, service.ErrNoData) {
				opts.Logger.Warn("forecast failed", zap.Error(err))
			}
		}
		if stats, err := svc.Stats(); err == nil {
			out.Stats = stats
		}
		return out
	}()
	msg.LoadTime = time.Since(start)
	return msg
}
