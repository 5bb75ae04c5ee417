// Package cmd implements the fincast CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/forecast"
	"github.com/theirongolddev/fincast/internal/logging"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/service"
	"github.com/theirongolddev/fincast/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	flagConfig string
	flagQuiet  bool

	// Resolved in initConfig before any command runs.
	appCfg     config.Config
	appCfgPath string
	logger     = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "fincast",
	Short: "Ledger forecasting CLI",
	Long: `Import monthly revenue and cost ledgers, fit a forecast model per flow
type and project the next 30 and 60 days with confidence bands.`,
	PersistentPreRunE: initConfig,
	PersistentPostRun: func(_ *cobra.Command, _ []string) { _ = logger.Sync() },
	RunE:              runSummary,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default "+config.Path()+")")
	pf.String("db", "", "Ledger database path")
	pf.String("data-dir", "", "Data directory holding the database and imports")
	pf.String("import-dir", "", "Directory scanned by sync")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("log-format", "", "Log format (console, json)")

	_ = viper.BindPFlag("general.db_path", pf.Lookup("db"))
	_ = viper.BindPFlag("general.data_dir", pf.Lookup("data-dir"))
	_ = viper.BindPFlag("general.import_dir", pf.Lookup("import-dir"))
	_ = viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", pf.Lookup("log-format"))

	viper.SetEnvPrefix("FINCAST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// initConfig loads the TOML file and layers env vars and flags over it.
func initConfig(_ *cobra.Command, _ []string) error {
	appCfgPath = flagConfig
	if appCfgPath == "" {
		appCfgPath = config.Path()
	}
	cfg, err := config.LoadFrom(appCfgPath)
	if err != nil {
		return err
	}

	dataDir := resolve("general.data_dir", cfg.General.DataDir, pipeline.DataDir())
	cfg.General.DataDir = dataDir
	cfg.General.DBPath = resolve("general.db_path", cfg.General.DBPath, filepath.Join(dataDir, "fincast.db"))
	cfg.General.ImportDir = resolve("general.import_dir", cfg.General.ImportDir, filepath.Join(dataDir, "imports"))
	cfg.Logging.Level = resolve("logging.level", cfg.Logging.Level, "info")
	cfg.Logging.Format = resolve("logging.format", cfg.Logging.Format, "console")
	cfg.Server.Addr = resolve("server.addr", cfg.Server.Addr, "127.0.0.1:8787")
	cfg.Server.SyncInterval = resolve("server.sync_interval", cfg.Server.SyncInterval, "")
	if viper.IsSet("server.events_buffer") {
		cfg.Server.EventsBuffer = viper.GetInt("server.events_buffer")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	appCfg = cfg
	logger = l
	return nil
}

// resolve returns the flag or FINCAST_* env value for key, then the file
// value, then def.
func resolve(key, fileValue, def string) string {
	if fileValue == "" {
		fileValue = def
	}
	viper.SetDefault(key, fileValue)
	return viper.GetString(key)
}

// openService opens the ledger database and wires a fresh engine to it.
// The caller closes the returned store.
func openService() (*store.Store, *service.Service, error) {
	st, err := store.Open(appCfg.General.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	engine := forecast.New(appCfg.EngineOptions(logger)...)
	svc := service.New(st, engine, logger, service.Config{Horizons: appCfg.Forecast.Horizons})
	return st, svc, nil
}

// loadRecords returns every stored ledger record.
func loadRecords() ([]model.Record, error) {
	st, err := store.Open(appCfg.General.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = st.Close() }()
	return st.AllRecords()
}

// printNoData prints the empty-ledger hint when err is service.ErrNoData.
func printNoData(err error) bool {
	if !errors.Is(err, service.ErrNoData) {
		return false
	}
	fmt.Println()
	fmt.Println("  No ledger records yet.")
	fmt.Printf("  Run `fincast import <file>` or drop exports into %s and run `fincast sync`.\n",
		appCfg.General.ImportDir)
	return true
}

func progressf(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
