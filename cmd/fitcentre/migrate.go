// ABOUTME: CLI command for copying records between storage backends.
// ABOUTME: Opens source and destination from config and copies every record.
package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/harperreed/fitcentre/internal/config"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
	migrateForce  bool
	migrateUse    bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy all records from one backend to another",
	Long: `Copy all members, assessments, and conditions between storage backends.

Both backends are opened with the current configuration (data directory,
postgres_dsn). Record IDs and timestamps are preserved.

IMPORTANT:

  - The destination should be empty; existing records cause an error
  - A Badger destination directory that already has files is refused unless --force
  - Run with --dry-run first to see what would be migrated
  - --use saves the destination as the configured backend afterwards

USAGE:

  fitcentre migrate --from sqlite --to badger --dry-run
  fitcentre migrate --from sqlite --to postgres
  fitcentre migrate --from badger --to charm --use`,
	Annotations: map[string]string{skipStorage: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == migrateTo {
			return fmt.Errorf("source and destination are both %q", migrateFrom)
		}

		src, err := openBackend(migrateFrom)
		if err != nil {
			return err
		}
		defer src.Close()

		out := cmd.OutOrStdout()
		if migrateDryRun {
			yell.Fprintln(out, "Dry run mode - no changes will be made")
			return printCounts(cmd, src)
		}

		if migrateTo == config.BackendBadger && !migrateForce {
			dir := filepath.Join(cfg.GetDataDir(), "badger")
			nonEmpty, err := storage.IsDirNonEmpty(dir)
			if err != nil {
				return err
			}
			if nonEmpty {
				return fmt.Errorf("destination %s is not empty (use --force to merge into it)", dir)
			}
		}

		dst, err := openBackend(migrateTo)
		if err != nil {
			return err
		}
		defer dst.Close()

		var summary *storage.MigrateSummary
		err = batchWrites(migrateTo, func() error {
			summary, err = storage.MigrateData(src, dst)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		success(out, "Migrated %s to %s", migrateFrom, migrateTo)
		fmt.Fprintf(out, "  Members: %d\n", summary.Members)
		fmt.Fprintf(out, "  Assessments: %d\n", summary.Assessments)
		fmt.Fprintf(out, "  Conditions: %d\n", summary.Conditions)

		if migrateUse {
			return useBackend(cmd, migrateTo)
		}
		return nil
	},
}

// openBackend opens the named backend with the rest of the loaded config.
func openBackend(backend string) (storage.Repository, error) {
	c := *cfg
	c.Backend = backend
	r, err := c.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", backend, err)
	}
	return r, nil
}

// useBackend saves backend to the config file. The file is reloaded first
// so --backend and --data-dir flags are not persisted with it.
func useBackend(cmd *cobra.Command, backend string) error {
	saved, err := config.Load()
	if err != nil {
		return err
	}
	saved.Backend = backend
	if err := saved.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	success(cmd.OutOrStdout(), "Backend set to %s in %s", backend, config.GetConfigPath())
	return nil
}

// recordCounts is the per-collection size of a store.
type recordCounts struct {
	Members, Assessments, Conditions int
}

func (rc recordCounts) print(out io.Writer) {
	fmt.Fprintf(out, "  Members: %d\n", rc.Members)
	fmt.Fprintf(out, "  Assessments: %d\n", rc.Assessments)
	fmt.Fprintf(out, "  Conditions: %d\n", rc.Conditions)
}

// countRecords reads every collection of r. A failed read is returned, never shown as zero.
func countRecords(r storage.Repository) (recordCounts, error) {
	members, err := r.ListMembers(nil)
	if err != nil {
		return recordCounts{}, fmt.Errorf("read members: %w", err)
	}
	assessments, err := r.ListAssessments(nil)
	if err != nil {
		return recordCounts{}, fmt.Errorf("read assessments: %w", err)
	}
	conditions, err := r.ListConditions(nil)
	if err != nil {
		return recordCounts{}, fmt.Errorf("read conditions: %w", err)
	}
	return recordCounts{len(members), len(assessments), len(conditions)}, nil
}

func printCounts(cmd *cobra.Command, r storage.Repository) error {
	counts, err := countRecords(r)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Would migrate from %s to %s:\n", migrateFrom, migrateTo)
	counts.print(out)
	return nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", config.BackendSQLite, "source backend")
	migrateCmd.Flags().StringVar(&migrateTo, "to", config.BackendBadger, "destination backend")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "migrate into a non-empty Badger directory")
	migrateCmd.Flags().BoolVar(&migrateUse, "use", false, "save the destination as the configured backend")
	rootCmd.AddCommand(migrateCmd)
}
