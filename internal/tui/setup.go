package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues are bound to the setup form fields.
type setupValues struct {
	importDir  string
	theme      string
	minPeriods int
	anchor     string
}

func newSetupValues(cfg config.Config, importDir string) setupValues {
	v := setupValues{
		importDir:  cfg.General.ImportDir,
		theme:      cfg.Appearance.Theme,
		minPeriods: cfg.Forecast.MinPeriods,
		anchor:     cfg.Forecast.Anchor,
	}
	if v.importDir == "" {
		v.importDir = importDir
	}
	if v.theme == "" {
		v.theme = theme.FlexokiDark.Name
	}
	return v
}

// apply copies the form answers into cfg.
func (v setupValues) apply(cfg *config.Config) {
	cfg.General.ImportDir = strings.TrimSpace(v.importDir)
	cfg.Appearance.Theme = v.theme
	if v.minPeriods >= 2 {
		cfg.Forecast.MinPeriods = v.minPeriods
	}
	cfg.Forecast.Anchor = strings.TrimSpace(v.anchor)
}

func validateAnchor(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	_, err := model.ParsePeriod(s)
	return err
}

// newSetupForm builds the first-run wizard bound to vals.
func newSetupForm(recordCount int, vals *setupValues) *huh.Form {
	welcome := "No ledger records yet. Drop CSV or OFX exports into the import directory."
	if recordCount > 0 {
		welcome = fmt.Sprintf("Found %s ledger records.", cli.FormatNumber(int64(recordCount)))
	}

	minOpts := []huh.Option[int]{
		huh.NewOption("2 months", 2),
		huh.NewOption("3 months (default)", 3),
		huh.NewOption("6 months", 6),
		huh.NewOption("12 months", 12),
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fincast").
				Description(welcome+"\nLet's set up a few things."),
			huh.NewInput().
				Title("Import directory").
				Description("Scanned by sync and the dashboard for .csv, .ofx and .qfx files.").
				Value(&vals.importDir),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.theme),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("History needed before fitting a trend").
				Description("Flow types with fewer months use their average.").
				Options(minOpts...).
				Value(&vals.minPeriods),
			huh.NewInput().
				Title("Anchor period (optional)").
				Description("YYYY-MM origin for the time trend. Blank uses the earliest imported month.").
				Placeholder("2023-01").
				Validate(validateAnchor).
				Value(&vals.anchor),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

// RunSetup runs the setup wizard standalone and saves the result to path.
func RunSetup(path string, cfg config.Config, importDir string, recordCount int) (config.Config, error) {
	vals := newSetupValues(cfg, importDir)
	if err := newSetupForm(recordCount, &vals).Run(); err != nil {
		return cfg, err
	}
	vals.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := config.SaveTo(path, cfg); err != nil {
		return cfg, fmt.Errorf("saving config: %w", err)
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
