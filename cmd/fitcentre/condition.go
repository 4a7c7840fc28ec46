// ABOUTME: CLI commands for managing member health conditions.
// ABOUTME: Supports add, list, show, edit, and delete subcommands keyed by email and name.
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/harperreed/fitcentre/internal/models"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/spf13/cobra"
)

var (
	conditionSeverity string
	conditionNotes    string
	conditionEmail    string
	conditionQuery    string
)

var conditionCmd = &cobra.Command{
	Use:     "condition",
	Aliases: []string{"c", "conditions"},
	Short:   "Manage member health conditions",
	Long: `Record health conditions of members.

A member has at most one condition of a given name. Severity is one of
Mild, Moderate, or Severe and may be left empty.

COMMANDS:

  add      Record a condition
  list     List conditions in the order they were recorded
  show     Show one condition
  edit     Change severity or notes
  delete   Delete a condition`,
}

var conditionAddCmd = &cobra.Command{
	Use:   "add <email> <name>",
	Short: "Record a condition",
	Long: `Record a condition for a member.

Examples:
  fitcentre condition add a@x.com "Knee Pain" --severity Mild
  fitcentre c add a@x.com Asthma --severity moderate --notes "uses inhaler"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		severity, err := parseSeverity(conditionSeverity)
		if err != nil {
			return err
		}

		c := models.NewCondition(args[0], args[1], severity).WithNotes(conditionNotes)
		if err := repo.CreateCondition(c); err != nil {
			return fmt.Errorf("failed to add condition: %w", err)
		}

		out := cmd.OutOrStdout()
		success(out, "Added %s for %s", c.Name, c.Email)
		fmt.Fprintf(out, "  %s %s\n", faint.Sprint(c.ID.String()[:8]), orDash(string(c.Severity)))
		return nil
	},
}

var conditionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List conditions",
	Long: `List conditions in the order they were recorded.

FILTERING:

  --email        case-insensitive substring of the member email
  --query, -q    case-insensitive substring of condition name or notes
  --severity     exact severity (Mild, Moderate, Severe)

EXAMPLES:

  fitcentre condition list
  fitcentre condition list -q knee --severity mild`,
	RunE: func(cmd *cobra.Command, args []string) error {
		severity, err := parseSeverity(conditionSeverity)
		if err != nil {
			return err
		}

		conditions, err := repo.ListConditions(&storage.ConditionFilter{
			Email:    conditionEmail,
			Query:    conditionQuery,
			Severity: severity,
		})
		if err != nil {
			return fmt.Errorf("failed to list conditions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(conditions) == 0 {
			fmt.Fprintln(out, "No conditions found.")
			return nil
		}
		for _, c := range conditions {
			fmt.Fprintf(out, "%s ", padRight(c.Email, 28))
			printConditionLine(out, c)
		}
		return nil
	},
}

var conditionShowCmd = &cobra.Command{
	Use:   "show <email> <name>",
	Short: "Show one condition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := repo.GetCondition(args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to get condition: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", c.Name, faint.Sprint(c.ID.String()[:8]))
		fmt.Fprintf(out, "  Member:    %s\n", c.Email)
		fmt.Fprintf(out, "  Severity:  %s\n", orDash(string(c.Severity)))
		fmt.Fprintf(out, "  Notes:     %s\n", orDash(c.Notes))
		fmt.Fprintf(out, "  Recorded:  %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

var conditionEditCmd = &cobra.Command{
	Use:   "edit <email> <name>",
	Short: "Change severity or notes of a condition",
	Long: `Change severity or notes of a condition. Only the flags given are changed.

Example:
  fitcentre condition edit a@x.com "Knee Pain" --severity Severe`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := repo.GetCondition(args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to get condition: %w", err)
		}

		if cmd.Flags().Changed("severity") {
			severity, err := parseSeverity(conditionSeverity)
			if err != nil {
				return err
			}
			c.Severity = severity
		}
		if cmd.Flags().Changed("notes") {
			c.Notes = conditionNotes
		}

		if err := repo.UpdateCondition(c); err != nil {
			return fmt.Errorf("failed to update condition: %w", err)
		}
		success(cmd.OutOrStdout(), "Updated %s for %s", c.Name, c.Email)
		return nil
	},
}

var conditionDeleteCmd = &cobra.Command{
	Use:     "delete <email> <name>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a condition",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := models.NormalizeEmail(args[0])
		if err := repo.DeleteCondition(email, args[1]); err != nil {
			return fmt.Errorf("failed to delete condition: %w", err)
		}
		removed(cmd.OutOrStdout(), "Deleted %s for %s", args[1], email)
		return nil
	},
}

// parseSeverity accepts any casing of a known severity; empty means unspecified.
func parseSeverity(s string) (models.Severity, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	sev, ok := models.ParseSeverity(s)
	if !ok {
		return "", fmt.Errorf("unknown severity: %s\nValid severities: Mild, Moderate, Severe", s)
	}
	return sev, nil
}

func printConditionLine(w io.Writer, c *models.Condition) {
	notes := ""
	if c.Notes != "" {
		notes = faint.Sprintf(" (%s)", truncate(c.Notes, 30))
	}
	fmt.Fprintf(w, "  %s %s %s%s\n",
		faint.Sprint(c.ID.String()[:8]),
		padRight(c.Name, 20),
		orDash(string(c.Severity)),
		notes)
}

func init() {
	for _, c := range []*cobra.Command{conditionAddCmd, conditionEditCmd} {
		c.Flags().StringVar(&conditionSeverity, "severity", "", "severity (Mild, Moderate, Severe)")
		c.Flags().StringVar(&conditionNotes, "notes", "", "notes")
	}
	conditionListCmd.Flags().StringVar(&conditionEmail, "email", "", "filter by email substring")
	conditionListCmd.Flags().StringVarP(&conditionQuery, "query", "q", "", "filter by name or notes substring")
	conditionListCmd.Flags().StringVar(&conditionSeverity, "severity", "", "filter by severity")

	conditionCmd.AddCommand(conditionAddCmd, conditionListCmd, conditionShowCmd, conditionEditCmd, conditionDeleteCmd)
	rootCmd.AddCommand(conditionCmd)
}
