package cmd

import (
	"fmt"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/service"

	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the forecast models on every stored record",
	RunE:  runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(_ *cobra.Command, _ []string) error {
	st, svc, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	res, err := svc.Train()
	if err != nil {
		if printNoData(err) {
			return nil
		}
		return err
	}

	fmt.Printf("\n  Trained on %s records\n", cli.FormatNumber(int64(res.Records)))
	state := svc.State()
	if state.Anchor != "" {
		fmt.Printf("  Time index anchored at %s\n", state.Anchor)
	}
	printAccuracy(res.Accuracy, state.Models)
	return nil
}

// trainAndForecast retrains svc and prints a forecast from the latest
// stored period.
func trainAndForecast(svc *service.Service) error {
	res, err := svc.Train()
	if err != nil {
		if printNoData(err) {
			return nil
		}
		return err
	}
	printAccuracy(res.Accuracy, svc.State().Models)

	f, err := svc.LatestForecast()
	if err != nil {
		return err
	}
	printForecast(f)
	return nil
}
