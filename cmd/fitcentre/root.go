// ABOUTME: Root Cobra command for fitcentre CLI.
// ABOUTME: Loads config, sets up logging, and owns the Repository lifecycle.
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/fitcentre/internal/config"
	"github.com/harperreed/fitcentre/internal/logging"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// skipStorage marks commands that never touch the Repository.
const skipStorage = "skip-storage"

var (
	cfg  *config.Config
	repo storage.Repository

	flagBackend  string
	flagDataDir  string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:     "fitcentre",
	Short:   "Fitness centre member registry",
	Version: version,
	Long: `Fitcentre keeps a registry of fitness centre members, their physical
assessments, and their health conditions, with a dashboard of aggregate statistics.

WHAT IT TRACKS:

  Members       email (unique), first and last name, gender
  Assessments   one per member per date: height, BMI, blood pressure, heart rate, weight
  Conditions    one per member per name: severity (Mild, Moderate, Severe) and notes

QUICK START:

  $ fitcentre member add a@x.com --first Ann --last Lee --gender Female
  $ fitcentre assessment add a@x.com --date 2024-01-01 --bmi 22.5
  $ fitcentre condition add a@x.com "Knee Pain" --severity Mild
  $ fitcentre dashboard

STORAGE BACKENDS:

  sqlite     Local SQLite file (default)
  postgres   PostgreSQL server (set postgres_dsn)
  badger     Local Badger key-value store
  charm      Charm KV, synced across devices and E2E encrypted

  Select with --backend, FITCENTRE_BACKEND, or "backend" in
  ~/.config/fitcentre/config.json.

OTHER SURFACES:

  $ fitcentre serve      # JSON API on :8080
  $ fitcentre mcp        # MCP server on stdio for AI assistants`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if flagBackend != "" {
			cfg.Backend = flagBackend
		}
		if flagDataDir != "" {
			cfg.DataDir = flagDataDir
		}
		if flagLogLevel != "" {
			cfg.LogLevel = flagLogLevel
		}
		logging.Setup(cfg.GetLogLevel(), os.Stderr)

		if !needsStorage(cmd) {
			return nil
		}
		return openRepo()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeRepo()
	},
}

// Execute runs the root command and always releases the Repository.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeRepo(); err == nil {
		err = cerr
	}
	return err
}

func needsStorage(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipStorage]; ok {
			return false
		}
	}
	return cmd.Name() != "help" && cmd.Name() != "completion"
}

func openRepo() error {
	if repo != nil {
		return nil
	}
	r, err := cfg.OpenStorage()
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
	}
	logging.WithComponent("cli").WithField("backend", cfg.GetBackend()).Debug("storage opened")
	repo = r
	return nil
}

func closeRepo() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo = nil
	logging.WithComponent("cli").Debug("storage closed")
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite, postgres, badger, or charm")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.local/share/fitcentre)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}
