package cmd

import (
	"fmt"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagCategoryFlow string
	flagCategoryFrom string
	flagCategoryTo   string
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Totals per category for each flow type",
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().StringVar(&flagCategoryFlow, "flow", "", "Only show one flow type (revenue or cost)")
	categoriesCmd.Flags().StringVar(&flagCategoryFrom, "from", "", "First period to include (YYYY-MM)")
	categoriesCmd.Flags().StringVar(&flagCategoryTo, "to", "", "Last period to include (YYYY-MM)")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	var flows []model.FlowType
	switch flagCategoryFlow {
	case "":
		flows = []model.FlowType{model.Revenue, model.Cost}
	case string(model.Revenue), string(model.Cost):
		flows = []model.FlowType{model.FlowType(flagCategoryFlow)}
	default:
		return fmt.Errorf("--flow must be revenue or cost, got %q", flagCategoryFlow)
	}
	for _, p := range []string{flagCategoryFrom, flagCategoryTo} {
		if p == "" {
			continue
		}
		if _, err := model.ParsePeriod(p); err != nil {
			return err
		}
	}

	records, err := loadRecords()
	if err != nil {
		return err
	}
	records = pipeline.FilterByRange(records, flagCategoryFrom, flagCategoryTo)
	cats := pipeline.AggregateCategories(records)
	if len(cats) == 0 {
		fmt.Println("\n  No ledger records in range.")
		return nil
	}

	for _, flow := range flows {
		var rows [][]string
		var top float64
		for _, c := range cats {
			if c.FlowType != flow {
				continue
			}
			if top == 0 {
				top = c.Total.InexactFloat64()
			}
			rows = append(rows, []string{
				c.Category,
				cli.FormatNumber(int64(c.Records)),
				cli.FormatAmount(c.Total),
				cli.FormatPercent(c.SharePercent / 100),
				cli.Bar(c.Total.InexactFloat64(), top, 20),
			})
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   flowTitle(flow),
			Headers: []string{"Category", "Records", "Total", "Share", ""},
			Rows:    rows,
		}))
	}
	return nil
}

func flowTitle(flow model.FlowType) string {
	if flow == model.Revenue {
		return "Revenue"
	}
	return "Cost"
}
