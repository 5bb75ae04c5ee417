package cmd

import (
	"fmt"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagMonths int

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Revenue, cost and net per month",
	RunE:  runMonthly,
}

func init() {
	monthlyCmd.Flags().IntVarP(&flagMonths, "months", "m", 12, "Number of months to show (0 for all)")
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(_ *cobra.Command, _ []string) error {
	records, err := loadRecords()
	if err != nil {
		return err
	}
	months := pipeline.AggregateMonths(records)
	if len(months) == 0 {
		fmt.Println("\n  No ledger records yet.")
		return nil
	}
	if flagMonths > 0 && len(months) > flagMonths {
		months = months[:flagMonths]
	}

	rows := make([][]string, 0, len(months))
	for _, m := range months {
		rows = append(rows, []string{
			m.Period,
			cli.FormatNumber(int64(m.Records)),
			cli.Revenue(cli.FormatAmount(m.Revenue)),
			cli.Cost(cli.FormatAmount(m.Cost)),
			cli.FormatAmount(m.Net),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Monthly Ledger  %d periods", len(months)),
		Headers: []string{"Period", "Records", "Revenue", "Cost", "Net"},
		Rows:    rows,
	}))
	if len(months) > 1 {
		fmt.Printf("\n  Net trend  %s\n", cli.RenderSparkline(netSeries(months, 0)))
	}
	return nil
}

// netSeries returns monthly net values oldest first, limited to the newest
// limit months when limit > 0. months must be newest first.
func netSeries(months []model.MonthlyStats, limit int) []float64 {
	if limit > 0 && len(months) > limit {
		months = months[:limit]
	}
	out := make([]float64, len(months))
	for i, m := range months {
		out[len(months)-1-i] = m.Net.InexactFloat64()
	}
	return out
}
