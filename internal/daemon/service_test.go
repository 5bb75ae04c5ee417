package daemon

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theirongolddev/fincast/internal/forecast"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/service"
	"github.com/theirongolddev/fincast/internal/source"
	"github.com/theirongolddev/fincast/internal/store"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "fincast.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	clock := func() time.Time { return time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC) }
	engine := forecast.New(forecast.WithClock(clock), forecast.WithLogger(zap.NewNop()))
	svc := service.New(st, engine, zap.NewNop(), service.Config{Now: clock})
	return New(Config{EventsBuffer: 10}, svc, st, zap.NewNop())
}

func upload(t *testing.T, h http.Handler, path, filename, body string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

const historyCSV = `period,flow_type,category,amount
2024-01,revenue,A,1000
2024-02,revenue,A,1100
2024-03,revenue,A,1200
2024-01,cost,rent,400
2024-02,cost,rent,400
`

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Records:    10,
		Revenue30d: 1000,
		Cost30d:    400,
		Revenue60d: 1100,
		Cost60d:    410.5,
	}
	curr := Snapshot{
		Records:    12,
		Revenue30d: 1250,
		Cost30d:    400,
		Revenue60d: 1000,
		Cost60d:    413.1,
	}

	delta := diffSnapshots(prev, curr)
	assert.Equal(t, 2, delta.Records)
	assert.InDelta(t, 250, delta.Revenue30d, 1e-9)
	assert.InDelta(t, 0, delta.Cost30d, 1e-9)
	assert.InDelta(t, -100, delta.Revenue60d, 1e-9)
	assert.InDelta(t, 2.6, delta.Cost60d, 1e-9)
	assert.False(t, delta.isZero())
	assert.True(t, diffSnapshots(curr, curr).isZero())
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, nil, nil, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestPublishForecast_SkipsUnchanged(t *testing.T) {
	s := New(Config{}, nil, nil, nil)
	f := model.Forecast{
		BasePeriod: "2024-03",
		Records:    5,
		Predictions: map[string]model.Prediction{
			forecast.Key(model.Revenue, 30): {Predicted: 1297},
		},
	}

	s.publishForecast(f)
	s.publishForecast(f)

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.Len(t, s.events, 1)
	assert.Nil(t, s.events[0].Delta)
	assert.InDelta(t, 1297, s.events[0].Snapshot.Revenue30d, 1e-9)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(forecast.ErrNotTrained))
	assert.Equal(t, http.StatusBadRequest, statusFor(forecast.ErrValidation))
	assert.Equal(t, http.StatusBadRequest, statusFor(model.ErrInvalidRecord))
	assert.Equal(t, http.StatusBadRequest, statusFor(source.ErrInvalidFile))
	_, _, csvErr := source.ParseCSV(strings.NewReader("period,flow_type,category,amount\n2024-01,cost,\"x\"y,5\n"))
	assert.Equal(t, http.StatusBadRequest, statusFor(csvErr))
	assert.Equal(t, http.StatusBadRequest, statusFor(service.ErrNoData))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t).Router()
	rec := get(h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestHistoricalDataThenPredictions(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()

	rec := upload(t, h, "/api/historical-data", "ledger.csv", historyCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 5, body["processed"])
	assert.EqualValues(t, 5, body["saved"])
	assert.Equal(t, true, body["trained"])

	rec = get(h, "/api/predictions")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var f model.Forecast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Equal(t, "2024-03", f.BasePeriod)
	require.Contains(t, f.Predictions, "revenue_30d")
	assert.InDelta(t, 1297.02, f.Predictions["revenue_30d"].Predicted, 0.01)
	assert.Equal(t, model.ModelAverage, f.Predictions["cost_30d"].Model)

	rec = get(h, "/api/history?limit=10")
	require.Equal(t, http.StatusOK, rec.Code)
	var hist []model.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Len(t, hist, 4)

	rec = get(h, "/v1/events")
	var events []Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, EventTrained, events[0].Type)
	assert.Equal(t, EventForecast, events[1].Type)
}

func TestMonthlyUpdate(t *testing.T) {
	h := newTestServer(t).Router()
	rec := upload(t, h, "/api/historical-data", "ledger.csv", historyCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = upload(t, h, "/api/monthly-update", "april.csv",
		"period,flow_type,category,amount\n2024-04,revenue,A,1300\n2024-03,cost,rent,400\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Saved       int            `json:"saved"`
		Predictions model.Forecast `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Saved)
	assert.Equal(t, "2024-04", body.Predictions.BasePeriod)
	assert.Equal(t, 7, body.Predictions.Records)
}

func TestErrorResponses(t *testing.T) {
	h := newTestServer(t).Router()

	rec := get(h, "/api/predictions")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no ledger data")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = upload(t, h, "/api/historical-data", "ledger.txt", historyCSV)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, h, "/api/historical-data", "ledger.csv", "period,amount\n2024-01,5\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, h, "/api/historical-data", "ledger.csv",
		"period,flow_type,category,amount\n2024-01,revenue,\"bad\"x,100\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "line 2")

	rec = get(h, "/api/history?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndStats(t *testing.T) {
	h := newTestServer(t).Router()

	rec := get(h, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var health service.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 0, health.TotalRecords)

	rec = get(h, "/api/model-stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats service.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "ridge_regression", stats.ActiveModel)

	rec = get(h, "/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Engine.Trained)
}
