package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theirongolddev/fincast/internal/forecast"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/store"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "fincast.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	clock := func() time.Time { return testNow }
	engine := forecast.New(forecast.WithClock(clock), forecast.WithLogger(zap.NewNop()))
	return New(st, engine, zap.NewNop(), Config{Now: clock}), st
}

func rec(period string, flow model.FlowType, category string, amount int64) model.Record {
	return model.Record{Period: period, FlowType: flow, Category: category, Amount: decimal.NewFromInt(amount)}
}

var quarter = []model.Record{
	rec("2024-01", model.Revenue, "A", 1000),
	rec("2024-02", model.Revenue, "A", 1100),
	rec("2024-03", model.Revenue, "A", 1200),
	rec("2024-01", model.Cost, "rent", 400),
	rec("2024-02", model.Cost, "rent", 400),
}

func TestImport(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Import(quarter, "upload.csv")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Processed: 5, Saved: 5}, res)

	res, err = svc.Import(quarter[:2], "upload.csv")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Processed: 2, Saved: 0}, res)

	_, err = svc.Import([]model.Record{rec("2024-01", model.Cost, "rent", 0)}, "bad.csv")
	assert.ErrorIs(t, err, model.ErrInvalidRecord)

	_, err = svc.Import(nil, "empty.csv")
	assert.ErrorIs(t, err, forecast.ErrValidation)
}

func TestTrain_NoData(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Train()
	assert.ErrorIs(t, err, ErrNoData)

	_, err = svc.LatestForecast()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestGeneratePredictions_AutoTrains(t *testing.T) {
	svc, st := newTestService(t)
	_, err := svc.Import(quarter, "upload.csv")
	require.NoError(t, err)
	require.False(t, svc.State().Trained)

	f, err := svc.GeneratePredictions("2024-03")
	require.NoError(t, err)
	assert.True(t, svc.State().Trained)
	assert.NotEmpty(t, f.RunID)
	assert.Equal(t, "2024-03", f.BasePeriod)
	assert.Equal(t, 5, f.Records)
	assert.Equal(t, testNow, f.GeneratedAt)
	require.Len(t, f.Predictions, 4)
	assert.InDelta(t, 1300, f.Predictions["revenue_30d"].Predicted, 10)
	assert.Equal(t, model.ModelAverage, f.Predictions["cost_60d"].Model)
	assert.InDelta(t, 400, f.Predictions["cost_60d"].Predicted, 1e-9)

	n, err := st.PredictionCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// Same base period replaces the stored rows.
	_, err = svc.GeneratePredictions("2024-03")
	require.NoError(t, err)
	n, err = st.PredictionCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestGeneratePredictions_BadBase(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Import(quarter, "upload.csv")
	require.NoError(t, err)

	_, err = svc.GeneratePredictions("March")
	assert.ErrorIs(t, err, forecast.ErrValidation)
}

func TestLatestForecast(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Import(quarter, "upload.csv")
	require.NoError(t, err)

	f, err := svc.LatestForecast()
	require.NoError(t, err)
	assert.Equal(t, "2024-03", f.BasePeriod)
	assert.Equal(t, "2024-05", f.Predictions["revenue_60d"].TargetPeriod)
}

func TestImportAndTrain(t *testing.T) {
	svc, _ := newTestService(t)

	imp, tr, err := svc.ImportAndTrain(quarter, "history.csv")
	require.NoError(t, err)
	assert.Equal(t, 5, imp.Saved)
	assert.Equal(t, 5, tr.Records)
	assert.True(t, svc.State().Trained)

	_, _, err = svc.ImportAndTrain(nil, "empty.csv")
	assert.ErrorIs(t, err, forecast.ErrValidation)
}

func TestMonthlyUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Import(quarter, "history.csv")
	require.NoError(t, err)

	imp, tr, f, err := svc.MonthlyUpdate([]model.Record{
		rec("2024-04", model.Revenue, "A", 1300),
		rec("2024-03", model.Cost, "rent", 410),
	}, "april.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, imp.Saved)
	assert.Equal(t, 7, tr.Records)
	assert.Equal(t, model.ModelFitted, svc.State().Models[model.Cost])
	assert.Equal(t, "2024-04", f.BasePeriod)
	assert.InDelta(t, 1400, f.Predictions["revenue_30d"].Predicted, 15)
}

func TestStatsAndHealth(t *testing.T) {
	svc, st := newTestService(t)

	h := svc.Health()
	assert.Equal(t, "healthy", h.Status)
	assert.Nil(t, h.LastUpdate)

	_, err := svc.Import(quarter, "upload.csv")
	require.NoError(t, err)
	_, err = svc.GeneratePredictions("2024-03")
	require.NoError(t, err)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Predictions)
	assert.Equal(t, 5, stats.TrainingRecords)
	assert.Equal(t, "2024-01", stats.Anchor)
	require.NotNil(t, stats.LastTraining)
	assert.Equal(t, testNow, *stats.LastTraining)
	// Revenue fits perfectly, cost is a constant with R2 0.
	assert.InDelta(t, 0.5, stats.MeanR2, 1e-6)

	h = svc.Health()
	assert.Equal(t, 5, h.TotalRecords)
	assert.NotNil(t, h.LastUpdate)

	require.NoError(t, st.Close())
	h = svc.Health()
	assert.Equal(t, "error", h.Status)
	assert.Equal(t, "error", h.DatabaseStatus)
}

func TestHistory(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Import(quarter, "upload.csv")
	require.NoError(t, err)
	f, err := svc.GeneratePredictions("2024-03")
	require.NoError(t, err)

	hist, err := svc.History(10)
	require.NoError(t, err)
	require.Len(t, hist, 4)
	for _, h := range hist {
		assert.Equal(t, f.RunID, h.RunID)
	}
}
