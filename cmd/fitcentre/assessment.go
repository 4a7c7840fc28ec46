// ABOUTME: CLI commands for managing member assessments.
// ABOUTME: Supports add, list, show, edit, and delete subcommands keyed by email and date.
package main

import (
	"fmt"
	"io"
	"time"

	"github.com/harperreed/fitcentre/internal/models"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/spf13/cobra"
)

var (
	assessmentDate  string
	assessmentEmail string
	assessmentFrom  string
	assessmentTo    string
	assessmentLimit int

	measureHeight float64
	measureBMI    float64
	measureBP     float64
	measureHR     float64
	measureWeight float64
)

// measurementFlags maps flag names onto the assessment fields they set.
var measurementFlags = []struct {
	name  string
	usage string
	value *float64
	field func(a *models.Assessment) **float64
}{
	{"height", "height in cm", &measureHeight, func(a *models.Assessment) **float64 { return &a.Height }},
	{"bmi", "body mass index", &measureBMI, func(a *models.Assessment) **float64 { return &a.BMI }},
	{"blood-pressure", "blood pressure in mmHg", &measureBP, func(a *models.Assessment) **float64 { return &a.BloodPressure }},
	{"heart-rate", "resting heart rate in bpm", &measureHR, func(a *models.Assessment) **float64 { return &a.HeartRate }},
	{"weight", "weight in kg", &measureWeight, func(a *models.Assessment) **float64 { return &a.Weight }},
}

var assessmentCmd = &cobra.Command{
	Use:     "assessment",
	Aliases: []string{"a", "assessments"},
	Short:   "Manage member assessments",
	Long: `Record physical assessments of members.

A member has at most one assessment per date. Every measurement is optional.

MEASUREMENTS:

  --height           cm
  --bmi              body mass index
  --blood-pressure   mmHg
  --heart-rate       bpm
  --weight           kg

COMMANDS:

  add      Record an assessment
  list     List assessments, most recent first
  show     Show one assessment
  edit     Change measurements of an assessment
  delete   Delete an assessment`,
}

var assessmentAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Record an assessment",
	Long: `Record an assessment for a member. The date defaults to today.

Examples:
  fitcentre assessment add a@x.com --bmi 22.5 --weight 61.2
  fitcentre a add a@x.com --date 2024-01-01 --height 168 --heart-rate 62`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now()
		if assessmentDate != "" {
			d, err := parseDateArg(assessmentDate)
			if err != nil {
				return err
			}
			date = d
		}

		a := models.NewAssessment(args[0], date)
		applyMeasurements(cmd, a)
		if err := repo.CreateAssessment(a); err != nil {
			return fmt.Errorf("failed to add assessment: %w", err)
		}

		out := cmd.OutOrStdout()
		success(out, "Added assessment for %s on %s", a.Email, a.DateString())
		fmt.Fprintf(out, "  %s\n", faint.Sprint(a.ID.String()[:8]))
		return nil
	},
}

var assessmentListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List assessments",
	Long: `List assessments, most recent date first.

OUTPUT FORMAT:

  DATE  EMAIL  HEIGHT  BMI  BP  HR  WEIGHT   ("-" marks a missing measurement)

FILTERING:

  --email        case-insensitive substring of the member email
  --from, --to   inclusive date range (YYYY-MM-DD)
  -n             max number of results (0 for all)

EXAMPLES:

  fitcentre assessment list
  fitcentre assessment list --email a@x.com --from 2024-01-01 --to 2024-12-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := &storage.AssessmentFilter{Email: assessmentEmail, Limit: assessmentLimit}
		if assessmentFrom != "" {
			from, err := parseDateArg(assessmentFrom)
			if err != nil {
				return err
			}
			filter.From = &from
		}
		if assessmentTo != "" {
			to, err := parseDateArg(assessmentTo)
			if err != nil {
				return err
			}
			filter.To = &to
		}

		assessments, err := repo.ListAssessments(filter)
		if err != nil {
			return fmt.Errorf("failed to list assessments: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(assessments) == 0 {
			fmt.Fprintln(out, "No assessments found.")
			return nil
		}
		fmt.Fprintln(out, faint.Sprintf("%-10s %-28s %7s %6s %6s %5s %7s",
			"DATE", "EMAIL", "HEIGHT", "BMI", "BP", "HR", "WEIGHT"))
		for _, a := range assessments {
			fmt.Fprintf(out, "%-10s %-28s %7s %6s %6s %5s %7s\n",
				a.DateString(), a.Email,
				optional(a.Height), optional(a.BMI), optional(a.BloodPressure),
				optional(a.HeartRate), optional(a.Weight))
		}
		return nil
	},
}

var assessmentShowCmd = &cobra.Command{
	Use:   "show <email> <date>",
	Short: "Show one assessment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getAssessment(args[0], args[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s on %s %s\n", a.Email, a.DateString(), faint.Sprint(a.ID.String()[:8]))
		for _, name := range models.AllMeasurements {
			fmt.Fprintf(out, "  %s %s %s\n",
				padRight(string(name)+":", 16),
				optional(a.Measurements()[name]),
				faint.Sprint(models.MeasurementUnits[name]))
		}
		return nil
	},
}

var assessmentEditCmd = &cobra.Command{
	Use:   "edit <email> <date>",
	Short: "Change measurements of an assessment",
	Long: `Change measurements of an assessment. Only the flags given are changed.

Example:
  fitcentre assessment edit a@x.com 2024-01-01 --weight 60.4`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getAssessment(args[0], args[1])
		if err != nil {
			return err
		}

		applyMeasurements(cmd, a)
		if err := repo.UpdateAssessment(a); err != nil {
			return fmt.Errorf("failed to update assessment: %w", err)
		}
		success(cmd.OutOrStdout(), "Updated assessment for %s on %s", a.Email, a.DateString())
		return nil
	},
}

var assessmentDeleteCmd = &cobra.Command{
	Use:     "delete <email> <date>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete an assessment",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateArg(args[1])
		if err != nil {
			return err
		}
		email := models.NormalizeEmail(args[0])
		if err := repo.DeleteAssessment(email, date); err != nil {
			return fmt.Errorf("failed to delete assessment: %w", err)
		}
		removed(cmd.OutOrStdout(), "Deleted assessment for %s on %s", email, args[1])
		return nil
	},
}

func getAssessment(email, rawDate string) (*models.Assessment, error) {
	date, err := parseDateArg(rawDate)
	if err != nil {
		return nil, err
	}
	a, err := repo.GetAssessment(email, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

// applyMeasurements copies every measurement flag the user set onto a.
func applyMeasurements(cmd *cobra.Command, a *models.Assessment) {
	for _, f := range measurementFlags {
		if cmd.Flags().Changed(f.name) {
			v := *f.value
			*f.field(a) = &v
		}
	}
}

func parseDateArg(s string) (time.Time, error) {
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s (use YYYY-MM-DD)", s)
	}
	return d, nil
}

func printAssessmentLine(w io.Writer, a *models.Assessment) {
	fmt.Fprintf(w, "  %s %s height %s  bmi %s  bp %s  hr %s  weight %s\n",
		faint.Sprint(a.ID.String()[:8]), a.DateString(),
		optional(a.Height), optional(a.BMI), optional(a.BloodPressure),
		optional(a.HeartRate), optional(a.Weight))
}

func init() {
	for _, c := range []*cobra.Command{assessmentAddCmd, assessmentEditCmd} {
		for _, f := range measurementFlags {
			c.Flags().Float64Var(f.value, f.name, 0, f.usage)
		}
	}
	assessmentAddCmd.Flags().StringVar(&assessmentDate, "date", "", "assessment date (YYYY-MM-DD, default today)")

	assessmentListCmd.Flags().StringVar(&assessmentEmail, "email", "", "filter by email substring")
	assessmentListCmd.Flags().StringVar(&assessmentFrom, "from", "", "earliest date, inclusive (YYYY-MM-DD)")
	assessmentListCmd.Flags().StringVar(&assessmentTo, "to", "", "latest date, inclusive (YYYY-MM-DD)")
	assessmentListCmd.Flags().IntVarP(&assessmentLimit, "limit", "n", 20, "max number of results")

	assessmentCmd.AddCommand(assessmentAddCmd, assessmentListCmd, assessmentShowCmd, assessmentEditCmd, assessmentDeleteCmd)
	rootCmd.AddCommand(assessmentCmd)
}
