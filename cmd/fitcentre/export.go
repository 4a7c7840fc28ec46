// ABOUTME: CLI commands for exporting and importing registry data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats and JSON import.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/harperreed/fitcentre/internal/models"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export registry data",
	Long: `Export registry data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export grouped by member (human-readable)
  markdown   Markdown tables (for documentation/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include records since this date (markdown only, YYYY-MM-DD)

EXAMPLES:

  fitcentre export json                          # Export all data as JSON
  fitcentre export json -o backup.json           # Save to file
  fitcentre export yaml                          # Export as YAML
  fitcentre export markdown --since 2024-01-01   # Records from 2024 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = storage.ExportJSON(repo)
		case "yaml":
			data, err = storage.ExportYAML(repo)
		case "markdown", "md":
			var since *time.Time
			if exportSince != "" {
				t, perr := time.Parse(models.DateLayout, exportSince)
				if perr != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			var md string
			md, err = storage.ExportMarkdown(repo, since)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			success(out, "Exported to %s", exportOutput)
		} else {
			fmt.Fprintln(out, string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import registry data from JSON",
	Long: `Import registry data from a JSON backup file.

Members are imported before their assessments and conditions. A member,
assessment, or condition that already exists causes an error.

EXAMPLES:

  fitcentre import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		var imported *storage.ExportData
		err = batchWrites(cfg.GetBackend(), func() error {
			imported, err = storage.ImportJSON(repo, data)
			return err
		})
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		out := cmd.OutOrStdout()
		success(out, "Imported from %s", filename)
		fmt.Fprintf(out, "  Members: %d\n", len(imported.Members))
		fmt.Fprintf(out, "  Assessments: %d\n", len(imported.Assessments))
		fmt.Fprintf(out, "  Conditions: %d\n", len(imported.Conditions))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include records since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
