package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(appCfgPath)
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", appCfgPath)
	if fileExists(appCfgPath) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println("  Flags and FINCAST_* environment variables override file values.")
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory:   %s\n", cfg.General.DataDir)
	fmt.Printf("    Database:         %s\n", cfg.General.DBPath)
	fmt.Printf("    Import directory: %s\n", cfg.General.ImportDir)
	fmt.Println()

	fmt.Println("  [Forecast]")
	fmt.Printf("    Min periods:  %d\n", cfg.Forecast.MinPeriods)
	fmt.Printf("    Ridge lambda: %g\n", cfg.Forecast.RidgeLambda)
	fmt.Printf("    Horizons:     %s\n", joinInts(cfg.Forecast.Horizons))
	if cfg.Forecast.Anchor != "" {
		fmt.Printf("    Anchor:       %s\n", cfg.Forecast.Anchor)
	} else {
		fmt.Println("    Anchor:       earliest trained period")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Server.EventsBuffer)
	if cfg.Server.SyncInterval != "" {
		fmt.Printf("    Sync interval: %s\n", cfg.Server.SyncInterval)
	} else {
		fmt.Println("    Sync interval: disabled")
	}
	fmt.Println()

	fmt.Println("  [Logging]")
	fmt.Printf("    Level:  %s\n", cfg.Logging.Level)
	fmt.Printf("    Format: %s\n", cfg.Logging.Format)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `fincast setup` to reconfigure.")
	return nil
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%dd", v)
	}
	return strings.Join(parts, ", ")
}
