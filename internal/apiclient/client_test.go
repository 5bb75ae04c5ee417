package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theirongolddev/fincast/internal/daemon"
	"github.com/theirongolddev/fincast/internal/forecast"
	"github.com/theirongolddev/fincast/internal/service"
	"github.com/theirongolddev/fincast/internal/store"
	"go.uber.org/zap"
)

const ledgerCSV = `period,flow_type,category,amount
2024-01,revenue,A,1000
2024-02,revenue,A,1100
2024-03,revenue,A,1200
2024-01,cost,rent,400
2024-02,cost,rent,400
2024-03,cost,rent,420
`

func newDaemon(t *testing.T) *Client {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "fincast.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	clock := func() time.Time { return time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC) }
	engine := forecast.New(forecast.WithClock(clock))
	svc := service.New(st, engine, zap.NewNop(), service.Config{Now: clock})
	srv := httptest.NewServer(daemon.New(daemon.Config{}, svc, st, zap.NewNop()).Router())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNew(t *testing.T) {
	c, err := New("127.0.0.1:8787")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8787", c.base)

	c, err = New("https://fincast.internal/")
	require.NoError(t, err)
	assert.Equal(t, "https://fincast.internal", c.base)

	_, err = New("")
	assert.Error(t, err)
	_, err = New("ftp://host")
	assert.Error(t, err)
}

func TestUploadAndForecast(t *testing.T) {
	c := newDaemon(t)
	ctx := context.Background()

	res, err := c.UploadHistorical(ctx, writeFile(t, "ledger.csv", ledgerCSV))
	require.NoError(t, err)
	assert.Equal(t, 6, res.Processed)
	assert.Equal(t, 6, res.Saved)
	assert.True(t, res.Trained)

	f, err := c.Predictions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-03", f.BasePeriod)
	assert.Len(t, f.Predictions, 4)

	res, err = c.UploadMonthly(ctx, writeFile(t, "april.csv",
		"period,flow_type,category,amount\n2024-04,revenue,A,1300\n"))
	require.NoError(t, err)
	require.NotNil(t, res.Predictions)
	assert.Equal(t, "2024-04", res.Predictions.BasePeriod)

	hist, err := c.History(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, hist, 3)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Engine.Trained)
	require.NotNil(t, st.Latest)
	assert.Equal(t, "2024-04", st.Latest.BasePeriod)

	stats, err := c.ModelStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ridge_regression", stats.ActiveModel)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, h.TotalRecords)
}

func TestAPIErrors(t *testing.T) {
	c := newDaemon(t)
	ctx := context.Background()

	_, err := c.Predictions(ctx)
	require.ErrorIs(t, err, ErrBadRequest)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "no ledger data")

	_, err = c.UploadHistorical(ctx, writeFile(t, "ledger.txt", ledgerCSV))
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = c.UploadHistorical(ctx, filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAPIErrorUnwrap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"model not trained"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.ModelStats(context.Background())
	assert.ErrorIs(t, err, ErrNotTrained)

	plain := &APIError{StatusCode: http.StatusBadGateway}
	assert.NoError(t, plain.Unwrap())
	assert.Contains(t, plain.Error(), "502")
}
