package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/fincast/internal/pipeline"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var flagSyncTrain bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import new or changed files from the import directory",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&flagSyncTrain, "train", false, "Retrain and forecast after syncing")
	rootCmd.AddCommand(syncCmd)
}

func runSync(_ *cobra.Command, _ []string) error {
	st, svc, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	dir := appCfg.General.ImportDir
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating import directory: %w", err)
	}
	progressf("  Scanning %s\n", dir)

	var bar *progressbar.ProgressBar
	res, err := pipeline.LoadWithCache(dir, st, func(current, total int) {
		if bar == nil {
			bar = newProgressBar(total, "Parsing files")
		}
		_ = bar.Set(current)
	})
	if err != nil {
		return err
	}

	if res.TotalFiles == 0 {
		fmt.Printf("\n  No import files in %s\n", dir)
		return nil
	}
	fmt.Printf("\n  %d files: %d unchanged, %d parsed, %s records saved\n",
		res.TotalFiles, res.Unchanged, res.Reparsed, formatNumber(int64(res.Saved)))
	if res.SkippedRows > 0 {
		fmt.Printf("  %s rows skipped for missing cells\n", formatNumber(int64(res.SkippedRows)))
	}
	for _, fe := range res.FileErrors {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", fe.Path, fe.Err)
	}

	if flagSyncTrain {
		return trainAndForecast(svc)
	}
	return nil
}
