package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/source"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagImportTrain bool

var importCmd = &cobra.Command{
	Use:   "import <files...>",
	Short: "Import CSV or OFX/QFX ledger files",
	Long: `Parse each file and store its records. Records already in the ledger are
skipped. CSV files need period, flow_type, category and amount columns.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportTrain, "train", false, "Retrain and forecast after importing")
	rootCmd.AddCommand(importCmd)
}

type importOutcome struct {
	path      string
	processed int
	saved     int
	skipped   int
	err       error
}

func runImport(_ *cobra.Command, args []string) error {
	st, svc, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	bar := newProgressBar(len(args), "Importing files")
	outcomes := make([]importOutcome, 0, len(args))
	for _, path := range args {
		out := importOutcome{path: path}
		pr := source.ParsePath(path)
		switch {
		case pr.Err != nil:
			out.err = pr.Err
		case len(pr.Records) == 0:
			out.err = fmt.Errorf("%w: no records", source.ErrInvalidFile)
		default:
			res, err := svc.Import(pr.Records, filepath.Base(path))
			out.processed, out.saved, out.err = res.Processed, res.Saved, err
		}
		out.skipped = pr.Skipped
		if out.err != nil {
			logger.Warn("import failed", zap.String("file", path), zap.Error(out.err))
		}
		outcomes = append(outcomes, out)
		_ = bar.Add(1)
	}

	var failed int
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		status := "ok"
		if o.err != nil {
			failed++
			status = cli.Warn(o.err.Error())
		}
		rows = append(rows, []string{
			filepath.Base(o.path),
			cli.FormatNumber(int64(o.processed)),
			cli.FormatNumber(int64(o.saved)),
			cli.FormatNumber(int64(o.skipped)),
			status,
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Import",
		Headers: []string{"File", "Processed", "Saved", "Skipped", "Status"},
		Rows:    rows,
	}))

	if failed == len(outcomes) {
		return errors.New("no files imported")
	}
	if flagImportTrain {
		return trainAndForecast(svc)
	}
	return nil
}

// newProgressBar returns a stderr bar, or a silent one with --quiet.
func newProgressBar(total int, description string) *progressbar.ProgressBar {
	var w io.Writer = os.Stderr
	if flagQuiet {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(w) }),
	)
}

// printAccuracy renders per-flow fit quality.
func printAccuracy(acc map[model.FlowType]model.Accuracy, models map[model.FlowType]string) {
	var rows [][]string
	for _, flow := range []model.FlowType{model.Revenue, model.Cost} {
		a, ok := acc[flow]
		if !ok {
			continue
		}
		name := models[flow]
		if name == "" {
			name = "-"
		}
		rows = append(rows, []string{
			flowTitle(flow),
			name,
			fmt.Sprintf("%.3f", a.R2),
			cli.FormatPercent(a.MAPE),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Model Fit",
		Headers: []string{"Flow", "Model", "R²", "1-MAPE"},
		Rows:    rows,
	}))
}
