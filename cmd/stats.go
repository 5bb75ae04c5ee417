package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/service"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Database health and model state",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	st, svc, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	// Models live in memory only; fit them so the report reflects the ledger.
	if _, err := svc.Train(); err != nil && !errors.Is(err, service.ErrNoData) {
		return err
	}

	health := svc.Health()
	stats, err := svc.Stats()
	if err != nil {
		return err
	}

	lastUpdate := "never"
	if health.LastUpdate != nil {
		lastUpdate = health.LastUpdate.Local().Format("2006-01-02 15:04")
	}
	lastTraining := "untrained"
	if stats.LastTraining != nil {
		lastTraining = stats.LastTraining.Local().Format("2006-01-02 15:04")
	}
	anchor := stats.Anchor
	if anchor == "" {
		anchor = "(none)"
	}

	rows := [][]string{
		{"Database", appCfg.General.DBPath},
		{"Status", health.DatabaseStatus},
		{"Records", cli.FormatNumber(int64(health.TotalRecords))},
		{"Last import", lastUpdate},
		cli.SeparatorRow,
		{"Active model", stats.ActiveModel},
		{"Last training", lastTraining},
		{"Anchor", anchor},
		{"Mean R²", fmt.Sprintf("%.3f", stats.MeanR2)},
		{"Stored predictions", cli.FormatNumber(int64(stats.Predictions))},
	}
	for _, flow := range []model.FlowType{model.Revenue, model.Cost} {
		if m, ok := stats.Models[flow]; ok {
			rows = append(rows, []string{flowTitle(flow) + " model", m})
		}
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "fincast stats",
		Headers: []string{"Item", "Value"},
		Rows:    rows,
	}))
	return nil
}
