package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/theirongolddev/fincast/internal/tui"
	"github.com/theirongolddev/fincast/internal/tui/theme"
	"go.uber.org/zap"
)

var flagTUITheme string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive forecast dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagTUITheme, "theme", "", "Palette for this session: "+strings.Join(theme.Names(), ", "))
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	name := appCfg.Appearance.Theme
	if flagTUITheme != "" {
		name = flagTUITheme
	}
	theme.SetActive(name)
	// Backgrounds are only drawn with a color profile set.
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Logs go nowhere while the alt screen is up.
	opts := tui.Options{
		DBPath:     appCfg.General.DBPath,
		ImportDir:  appCfg.General.ImportDir,
		ConfigPath: appCfgPath,
		Config:     appCfg,
		Logger:     zap.NewNop(),
	}
	if _, err := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
