// Package service ties the ledger store to the forecast engine. It owns the
// only engine in the process and serializes every call into it.
package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/theirongolddev/fincast/internal/forecast"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/store"
	"go.uber.org/zap"
)

// ErrNoData is returned when an operation needs ledger records and the
// store has none.
var ErrNoData = errors.New("no ledger data available")

// Config controls service behavior.
type Config struct {
	Horizons []int
	Now      func() time.Time
}

// ImportResult reports the outcome of storing a batch of records.
type ImportResult struct {
	Processed int `json:"processed"`
	Saved     int `json:"saved"`
}

// TrainResult reports the outcome of a training pass.
type TrainResult struct {
	Records   int                               `json:"records"`
	Accuracy  map[model.FlowType]model.Accuracy `json:"accuracy"`
	TrainedAt time.Time                         `json:"trained_at"`
}

// Stats summarizes model state for status endpoints.
type Stats struct {
	ActiveModel     string                    `json:"active_model"`
	Models          map[model.FlowType]string `json:"models"`
	Predictions     int                       `json:"predictions"`
	MeanR2          float64                   `json:"mean_r2"`
	LastTraining    *time.Time                `json:"last_training,omitempty"`
	TrainingRecords int                       `json:"training_records"`
	Anchor          string                    `json:"anchor,omitempty"`
}

// Health is served by the health endpoint.
type Health struct {
	Status         string     `json:"status"`
	Timestamp      time.Time  `json:"timestamp"`
	DatabaseStatus string     `json:"database_status"`
	TotalRecords   int        `json:"total_records"`
	LastUpdate     *time.Time `json:"last_update"`
}

// Service serializes access to the store and engine.
type Service struct {
	mu       sync.Mutex
	store    *store.Store
	engine   *forecast.Engine
	log      *zap.Logger
	horizons []int
	now      func() time.Time

	trainingRecords int
}

// New returns a Service over an open store and an untrained engine.
func New(st *store.Store, engine *forecast.Engine, logger *zap.Logger, cfg Config) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Horizons) == 0 {
		cfg.Horizons = forecast.DefaultHorizons
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		store:    st,
		engine:   engine,
		log:      logger,
		horizons: cfg.Horizons,
		now:      cfg.Now,
	}
}

// Import validates and stores records. Duplicates of stored records are
// counted as processed but not saved.
func (s *Service) Import(records []model.Record, source string) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importLocked(records, source)
}

func (s *Service) importLocked(records []model.Record, source string) (ImportResult, error) {
	if len(records) == 0 {
		return ImportResult{}, fmt.Errorf("%w: no records in upload", forecast.ErrValidation)
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return ImportResult{}, fmt.Errorf("record %d: %w", i+1, err)
		}
	}

	saved, err := s.store.SaveRecords(records, source)
	if err != nil {
		return ImportResult{}, fmt.Errorf("saving records: %w", err)
	}

	s.log.Info("records imported",
		zap.String("source", source),
		zap.Int("processed", len(records)),
		zap.Int("saved", saved))
	return ImportResult{Processed: len(records), Saved: saved}, nil
}

// Train retrains the engine on every stored record.
func (s *Service) Train() (TrainResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trainLocked()
}

func (s *Service) trainLocked() (TrainResult, error) {
	records, err := s.store.AllRecords()
	if err != nil {
		return TrainResult{}, fmt.Errorf("loading records: %w", err)
	}
	if len(records) == 0 {
		return TrainResult{}, ErrNoData
	}

	acc, err := s.engine.Train(records)
	if err != nil {
		return TrainResult{}, err
	}
	s.trainingRecords = len(records)

	res := TrainResult{Records: len(records), Accuracy: acc}
	if st := s.engine.State(); st.LastTraining != nil {
		res.TrainedAt = *st.LastTraining
	}
	return res, nil
}

// ImportAndTrain stores a batch and retrains on everything stored, holding
// the lock across both steps.
func (s *Service) ImportAndTrain(records []model.Record, source string) (ImportResult, TrainResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	imp, err := s.importLocked(records, source)
	if err != nil {
		return ImportResult{}, TrainResult{}, err
	}
	tr, err := s.trainLocked()
	if err != nil {
		return imp, TrainResult{}, err
	}
	return imp, tr, nil
}

// GeneratePredictions forecasts from basePeriod, training first if the
// engine has never been trained, and records the run in history.
func (s *Service) GeneratePredictions(basePeriod string) (model.Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.predictLocked(basePeriod)
}

func (s *Service) predictLocked(basePeriod string) (model.Forecast, error) {
	if !s.engine.State().Trained {
		s.log.Info("engine untrained, training before forecast")
		if _, err := s.trainLocked(); err != nil {
			return model.Forecast{}, err
		}
	}

	preds, err := s.engine.PredictFuture(basePeriod, s.horizons)
	if err != nil {
		return model.Forecast{}, err
	}

	f := model.Forecast{
		RunID:       uuid.NewString(),
		BasePeriod:  basePeriod,
		GeneratedAt: s.now().UTC(),
		Records:     s.trainingRecords,
		Predictions: preds,
	}
	if err := s.store.SavePredictions(f); err != nil {
		return model.Forecast{}, fmt.Errorf("saving predictions: %w", err)
	}

	s.log.Info("forecast generated",
		zap.String("run_id", f.RunID),
		zap.String("base_period", basePeriod),
		zap.Int("predictions", len(preds)))
	return f, nil
}

// LatestForecast forecasts from the most recent stored period.
func (s *Service) LatestForecast() (model.Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.store.LatestPeriod()
	if err != nil {
		return model.Forecast{}, fmt.Errorf("reading latest period: %w", err)
	}
	if latest == "" {
		return model.Forecast{}, ErrNoData
	}
	return s.predictLocked(latest)
}

// MonthlyUpdate stores a new batch, retrains on everything stored and
// forecasts from the latest period in the batch.
func (s *Service) MonthlyUpdate(records []model.Record, source string) (ImportResult, TrainResult, model.Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	imp, err := s.importLocked(records, source)
	if err != nil {
		return ImportResult{}, TrainResult{}, model.Forecast{}, err
	}
	tr, err := s.trainLocked()
	if err != nil {
		return imp, TrainResult{}, model.Forecast{}, err
	}

	latest := ""
	for _, r := range records {
		if r.Period > latest {
			latest = r.Period
		}
	}
	f, err := s.predictLocked(latest)
	if err != nil {
		return imp, tr, model.Forecast{}, err
	}
	return imp, tr, f, nil
}

// Stats reports the current model state.
func (s *Service) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.engine.State()
	preds, err := s.store.PredictionCount()
	if err != nil {
		return Stats{}, err
	}
	records, err := s.store.RecordCount()
	if err != nil {
		return Stats{}, err
	}

	out := Stats{
		ActiveModel:     "ridge_regression",
		Models:          st.Models,
		Predictions:     preds,
		LastTraining:    st.LastTraining,
		TrainingRecords: records,
		Anchor:          st.Anchor,
	}
	if len(st.Accuracy) > 0 {
		var sum float64
		for _, a := range st.Accuracy {
			sum += a.R2
		}
		out.MeanR2 = sum / float64(len(st.Accuracy))
	}
	return out, nil
}

// Health never fails; database problems are reported in the result.
func (s *Service) Health() Health {
	h := Health{
		Status:         "healthy",
		Timestamp:      s.now().UTC(),
		DatabaseStatus: "connected",
	}

	n, err := s.store.RecordCount()
	if err == nil {
		var last time.Time
		last, err = s.store.LastUpdate()
		if err == nil && !last.IsZero() {
			h.LastUpdate = &last
		}
	}
	if err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		return Health{Status: "error", Timestamp: h.Timestamp, DatabaseStatus: "error"}
	}
	h.TotalRecords = n
	return h
}

// State returns the engine state.
func (s *Service) State() forecast.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State()
}

// History returns recent stored predictions.
func (s *Service) History(limit int) ([]model.HistoryEntry, error) {
	return s.store.RecentPredictions(limit)
}
