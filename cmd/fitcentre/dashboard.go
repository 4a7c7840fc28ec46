// ABOUTME: CLI command for the fitness centre dashboard.
// ABOUTME: Builds fresh statistics from storage and renders them as text or JSON.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/harperreed/fitcentre/internal/report"
	"github.com/spf13/cobra"
)

var (
	dashboardJSON bool
	dashboardBins int
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Show centre statistics",
	Long: `Show statistics computed from the current records.

SUMMARY:

  Total Members, Total Assessments, Average BMI ("N/A" without BMI data),
  and the Most Common Condition.

DISTRIBUTIONS:

  Gender distribution, BMI histogram, and condition frequency, drawn as bars.

EXAMPLES:

  fitcentre dashboard
  fitcentre dash --bins 5
  fitcentre dash --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bins := cfg.GetHistogramBins()
		if cmd.Flags().Changed("bins") {
			bins = dashboardBins
		}

		d, err := report.Build(repo, report.WithBins(bins))
		if err != nil {
			return fmt.Errorf("failed to build dashboard: %w", err)
		}

		out := cmd.OutOrStdout()
		if dashboardJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		}
		return report.Render(out, d)
	},
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "print the dashboard as JSON")
	dashboardCmd.Flags().IntVar(&dashboardBins, "bins", report.DefaultBins, "number of BMI histogram bins")
	rootCmd.AddCommand(dashboardCmd)
}
