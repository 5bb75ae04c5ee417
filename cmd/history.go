package cmd

import (
	"fmt"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/store"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Recently stored predictions",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of predictions to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	if flagHistoryLimit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", flagHistoryLimit)
	}
	st, err := store.Open(appCfg.General.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = st.Close() }()

	entries, err := st.RecentPredictions(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("\n  No predictions stored yet. Run `fincast forecast`.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			shortID(e.RunID),
			e.BasePeriod,
			flowTitle(e.FlowType),
			fmt.Sprintf("%dd", e.HorizonDays),
			cli.FormatMoney(e.Predicted),
			cli.FormatInterval(e.Confidence),
			e.Model,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Prediction History",
		Headers: []string{"Created", "Run", "Base", "Flow", "Horizon", "Predicted", "Confidence", "Model"},
		Rows:    rows,
	}))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
