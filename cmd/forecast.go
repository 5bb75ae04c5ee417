package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagForecastBase string
	flagForecastJSON bool
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast revenue and cost for the next 30 and 60 days",
	Long: `Train on every stored record and forecast from a base period. The base
defaults to the latest period in the ledger. Each run is kept in history.`,
	RunE: runForecast,
}

func init() {
	forecastCmd.Flags().StringVar(&flagForecastBase, "base", "", "Base period to forecast from (YYYY-MM)")
	forecastCmd.Flags().BoolVar(&flagForecastJSON, "json", false, "Print the forecast as JSON")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(_ *cobra.Command, _ []string) error {
	st, svc, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var f model.Forecast
	if flagForecastBase == "" {
		f, err = svc.LatestForecast()
	} else {
		f, err = svc.GeneratePredictions(flagForecastBase)
	}
	if err != nil {
		if printNoData(err) {
			return nil
		}
		return err
	}

	if flagForecastJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}
	printForecast(f)
	return nil
}

func printForecast(f model.Forecast) {
	preds := make([]model.Prediction, 0, len(f.Predictions))
	for _, p := range f.Predictions {
		preds = append(preds, p)
	}
	sort.Slice(preds, func(i, j int) bool {
		if preds[i].FlowType != preds[j].FlowType {
			return preds[i].FlowType == model.Revenue
		}
		return preds[i].HorizonDays < preds[j].HorizonDays
	})

	rows := make([][]string, 0, len(preds))
	for _, p := range preds {
		value := cli.FormatMoney(p.Predicted)
		if p.FlowType == model.Revenue {
			value = cli.Revenue(value)
		} else {
			value = cli.Cost(value)
		}
		modelName := p.Model
		if p.Model == model.ModelAverage {
			modelName = cli.Warn(modelName)
		}
		rows = append(rows, []string{
			flowTitle(p.FlowType),
			fmt.Sprintf("%dd", p.HorizonDays),
			p.TargetPeriod,
			value,
			cli.FormatInterval(p.Confidence),
			modelName,
			cli.FormatAccuracy(p.Accuracy),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Forecast from %s  (%s records)", f.BasePeriod, formatNumber(int64(f.Records))),
		Headers: []string{"Flow", "Horizon", "Target", "Predicted", "Confidence", "Model", "Accuracy"},
		Rows:    rows,
	}))
	fmt.Println(cli.Muted("  run " + f.RunID))
}
