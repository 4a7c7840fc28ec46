// ABOUTME: CLI command describing the installation.
// ABOUTME: Prints version, backend, data location, and collection status.
package main

import (
	"fmt"

	"github.com/harperreed/fitcentre/internal/config"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/spf13/cobra"
)

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Show version and storage details",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "fitcentre %s\n", version)
		fmt.Fprintln(out, "Member registry with assessments, conditions, and a statistics dashboard.")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Backend:   %s\n", cfg.GetBackend())
		fmt.Fprintf(out, "  Data:      %s\n", cfg.Location())
		fmt.Fprintf(out, "  Config:    %s\n", config.GetConfigPath())
		fmt.Fprintln(out)

		for _, collection := range storage.AllCollections {
			ok, err := repo.Exists(collection)
			switch {
			case err != nil:
				fmt.Fprintf(out, "  %s %s\n", padRight(collection, 12), yell.Sprintf("error: %v", err))
			case ok:
				fmt.Fprintf(out, "  %s %s\n", padRight(collection, 12), green.Sprint("ready"))
			default:
				fmt.Fprintf(out, "  %s %s\n", padRight(collection, 12), yell.Sprint("missing"))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(aboutCmd)
}
