package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/store"
)

const ledgerCSV = `period,flow_type,category,amount
2024-01,revenue,consulting,1000
2024-02,revenue,consulting,1100
2024-03,revenue,consulting,1200
2024-01,cost,rent,400
2024-02,cost,rent,400
2024-03,cost,rent,420
`

func TestInitConfigLayers(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := config.DefaultConfig()
	cfg.General.DataDir = dir
	cfg.Logging.Level = "warn"
	cfg.Server.Addr = "127.0.0.1:9999"
	require.NoError(t, config.SaveTo(cfgPath, cfg))

	flagConfig = cfgPath
	t.Cleanup(func() { flagConfig = "" })
	t.Setenv("FINCAST_LOGGING_LEVEL", "debug")

	require.NoError(t, initConfig(rootCmd, nil))
	assert.Equal(t, cfgPath, appCfgPath)
	assert.Equal(t, "debug", appCfg.Logging.Level, "env beats file")
	assert.Equal(t, "127.0.0.1:9999", appCfg.Server.Addr, "file beats default")
	assert.Equal(t, filepath.Join(dir, "fincast.db"), appCfg.General.DBPath)
	assert.Equal(t, filepath.Join(dir, "imports"), appCfg.General.ImportDir)
}

func TestInitConfigRejectsInvalidEnv(t *testing.T) {
	flagConfig = filepath.Join(t.TempDir(), "missing.toml")
	t.Cleanup(func() { flagConfig = "" })
	t.Setenv("FINCAST_GENERAL_DATA_DIR", t.TempDir())
	t.Setenv("FINCAST_SERVER_SYNC_INTERVAL", "soon")

	assert.Error(t, initConfig(rootCmd, nil))
}

func TestImportThenForecast(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "ledger.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(ledgerCSV), 0o600))
	t.Setenv("FINCAST_GENERAL_DATA_DIR", dir)
	cfgPath := filepath.Join(dir, "config.toml")

	run := func(args ...string) error {
		rootCmd.SetArgs(append([]string{"--config", cfgPath, "--quiet"}, args...))
		return rootCmd.Execute()
	}

	require.NoError(t, run("import", csvPath))
	require.NoError(t, run("forecast"))
	require.NoError(t, run("history", "--limit", "2"))
	require.NoError(t, run("stats"))

	st, err := store.Open(filepath.Join(dir, "fincast.db"))
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	n, err := st.RecordCount()
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	preds, err := st.PredictionCount()
	require.NoError(t, err)
	assert.Equal(t, 4, preds)

	assert.Error(t, run("import", filepath.Join(dir, "missing.csv")))
	assert.Error(t, run("categories", "--flow", "profit"))
}

func TestNetSeriesOldestFirst(t *testing.T) {
	months := []model.MonthlyStats{
		{Period: "2024-03", Net: decimal.NewFromInt(30)},
		{Period: "2024-02", Net: decimal.NewFromInt(-20)},
		{Period: "2024-01", Net: decimal.NewFromInt(10)},
	}
	assert.Equal(t, []float64{10, -20, 30}, netSeries(months, 0))
	assert.Equal(t, []float64{-20, 30}, netSeries(months, 2))
}

func TestFormattingHelpers(t *testing.T) {
	assert.Equal(t, "30d, 60d", joinInts([]int{30, 60}))
	assert.Equal(t, "abcdef12", shortID("abcdef1234567890"))
	assert.Equal(t, "abc", shortID("abc"))
}
