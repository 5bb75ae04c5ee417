package cmd

import (
	"fmt"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Ledger totals with the latest month compared to the one before",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	records, err := loadRecords()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("\n  No ledger records yet.")
		fmt.Println("  Import a CSV or OFX export with `fincast import <file>`.")
		return nil
	}

	stats := pipeline.Summarize(records)
	months := pipeline.AggregateMonths(records)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LEDGER  %s → %s", stats.FirstPeriod, stats.LastPeriod)))
	fmt.Println()

	rows := [][]string{
		{"Records", cli.FormatNumber(int64(stats.Records))},
		{"Periods", cli.FormatNumber(int64(stats.Periods))},
		{"Categories", cli.FormatNumber(int64(stats.Categories))},
		cli.SeparatorRow,
		{"Revenue", cli.Revenue(cli.FormatAmount(stats.Revenue))},
		{"Cost", cli.Cost(cli.FormatAmount(stats.Cost))},
		{"Net", cli.FormatAmount(stats.Net)},
		{"Margin", cli.FormatPercent(stats.Margin)},
		cli.SeparatorRow,
		{"Revenue/month", cli.FormatAmount(stats.RevenuePerMonth)},
		{"Cost/month", cli.FormatAmount(stats.CostPerMonth)},
	}

	// months is newest first
	if len(months) >= 2 {
		curr, prev := months[0], months[1]
		rows = append(rows, cli.SeparatorRow,
			[]string{curr.Period + " revenue", fmt.Sprintf("%s  (%s vs %s)",
				cli.FormatAmount(curr.Revenue),
				cli.FormatDelta(curr.Revenue.InexactFloat64(), prev.Revenue.InexactFloat64()), prev.Period)},
			[]string{curr.Period + " cost", fmt.Sprintf("%s  (%s vs %s)",
				cli.FormatAmount(curr.Cost),
				cli.FormatDelta(curr.Cost.InexactFloat64(), prev.Cost.InexactFloat64()), prev.Period)},
		)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if len(months) > 1 {
		fmt.Printf("\n  Net trend  %s\n", cli.RenderSparkline(netSeries(months, 24)))
	}
	return nil
}
