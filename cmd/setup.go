package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/fincast/internal/store"
	"github.com/theirongolddev/fincast/internal/tui"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	records := 0
	if st, err := store.Open(appCfg.General.DBPath); err == nil {
		records, _ = st.RecordCount()
		_ = st.Close()
	}

	cfg, err := tui.RunSetup(appCfgPath, appCfg, appCfg.General.ImportDir, records)
	switch {
	case errors.Is(err, huh.ErrUserAborted):
		fmt.Println("  Setup cancelled.")
		return nil
	case err != nil:
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)
	if err := os.MkdirAll(cfg.General.ImportDir, 0o750); err != nil {
		return fmt.Errorf("creating import directory: %w", err)
	}

	fmt.Printf("\n  Config written to %s\n", appCfgPath)
	fmt.Printf("  Put CSV or OFX exports in %s, then run `fincast sync --train`.\n\n", cfg.General.ImportDir)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
