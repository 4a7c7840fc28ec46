// ABOUTME: CLI commands for managing members.
// ABOUTME: Supports add, list, show, edit, and delete subcommands.
package main

import (
	"fmt"
	"strings"

	"github.com/harperreed/fitcentre/internal/models"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/spf13/cobra"
)

var (
	memberFirst  string
	memberLast   string
	memberGender string
	memberQuery  string
)

var memberCmd = &cobra.Command{
	Use:     "member",
	Aliases: []string{"m", "members"},
	Short:   "Manage members",
	Long: `Register and maintain fitness centre members.

A member is identified by email address. Emails are stored lowercased, so
Ann@X.com and ann@x.com are the same member.

COMMANDS:

  add      Register a new member
  list     List members ordered by last name
  show     Show a member with their assessments and conditions
  edit     Change a member's name or gender
  delete   Delete a member together with their assessments and conditions`,
}

var memberAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Register a new member",
	Long: `Register a new member.

Examples:
  fitcentre member add a@x.com --first Ann --last Lee --gender Female
  fitcentre m add b@x.com --first Bob`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gender, err := parseGender(memberGender)
		if err != nil {
			return err
		}

		m := models.NewMember(args[0], memberFirst, memberLast, gender)
		if err := repo.CreateMember(m); err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}

		out := cmd.OutOrStdout()
		success(out, "Added member %s", m.Email)
		fmt.Fprintf(out, "  %s %s\n", faint.Sprint(m.ID.String()[:8]), orDash(m.FullName()))
		return nil
	},
}

var memberListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List members",
	Long: `List members ordered by last name, first name, then email.

FILTERING:

  --query, -q   case-insensitive substring of email, first name, or last name
  --gender      exact gender (Male, Female, Other, Prefer not to say)

EXAMPLES:

  fitcentre member list
  fitcentre member list -q lee
  fitcentre member list --gender female`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gender, err := parseGender(memberGender)
		if err != nil {
			return err
		}

		members, err := repo.ListMembers(&storage.MemberFilter{Query: memberQuery, Gender: gender})
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(members) == 0 {
			fmt.Fprintln(out, "No members found.")
			return nil
		}
		for _, m := range members {
			fmt.Fprintf(out, "%s %s %s\n",
				padRight(m.Email, 28),
				padRight(orDash(m.FullName()), 24),
				faint.Sprint(orDash(string(m.Gender))))
		}
		return nil
	},
}

var memberShowCmd = &cobra.Command{
	Use:   "show <email>",
	Short: "Show a member with their records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := repo.GetMember(args[0])
		if err != nil {
			return fmt.Errorf("failed to get member: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", m.Email, faint.Sprint(m.ID.String()[:8]))
		fmt.Fprintf(out, "  Name:    %s\n", orDash(m.FullName()))
		fmt.Fprintf(out, "  Gender:  %s\n", orDash(string(m.Gender)))
		fmt.Fprintf(out, "  Joined:  %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04"))

		assessments, err := repo.ListAssessments(&storage.AssessmentFilter{Email: m.Email})
		if err != nil {
			return fmt.Errorf("failed to list assessments: %w", err)
		}
		fmt.Fprintln(out, "\nAssessments:")
		printed := 0
		for _, a := range assessments {
			if a.Email != m.Email {
				continue
			}
			printAssessmentLine(out, a)
			printed++
		}
		if printed == 0 {
			fmt.Fprintln(out, faint.Sprint("  (none)"))
		}

		conditions, err := repo.ListConditions(&storage.ConditionFilter{Email: m.Email})
		if err != nil {
			return fmt.Errorf("failed to list conditions: %w", err)
		}
		fmt.Fprintln(out, "\nConditions:")
		printed = 0
		for _, c := range conditions {
			if c.Email != m.Email {
				continue
			}
			printConditionLine(out, c)
			printed++
		}
		if printed == 0 {
			fmt.Fprintln(out, faint.Sprint("  (none)"))
		}
		return nil
	},
}

var memberEditCmd = &cobra.Command{
	Use:   "edit <email>",
	Short: "Change a member's name or gender",
	Long: `Change a member's name or gender. Only the flags given are changed.

Examples:
  fitcentre member edit a@x.com --last Park
  fitcentre member edit a@x.com --gender ""     # clear gender`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := repo.GetMember(args[0])
		if err != nil {
			return fmt.Errorf("failed to get member: %w", err)
		}

		flags := cmd.Flags()
		if flags.Changed("first") {
			m.FirstName = strings.TrimSpace(memberFirst)
		}
		if flags.Changed("last") {
			m.LastName = strings.TrimSpace(memberLast)
		}
		if flags.Changed("gender") {
			gender, err := parseGender(memberGender)
			if err != nil {
				return err
			}
			m.Gender = gender
		}

		if err := repo.UpdateMember(m); err != nil {
			return fmt.Errorf("failed to update member: %w", err)
		}
		success(cmd.OutOrStdout(), "Updated member %s", m.Email)
		return nil
	},
}

var memberDeleteCmd = &cobra.Command{
	Use:     "delete <email>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a member and all their records",
	Long: `Delete a member together with all of their assessments and conditions.

CAUTION:

  This permanently deletes the member's records. There is no undo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := models.NormalizeEmail(args[0])
		if err := repo.DeleteMember(email); err != nil {
			return fmt.Errorf("failed to delete member: %w", err)
		}
		removed(cmd.OutOrStdout(), "Deleted member %s", email)
		return nil
	},
}

// parseGender accepts any casing of a known gender; empty means unspecified.
func parseGender(s string) (models.Gender, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	g, ok := models.ParseGender(s)
	if !ok {
		return "", fmt.Errorf("unknown gender: %s\nValid genders: Male, Female, Other, Prefer not to say", s)
	}
	return g, nil
}

func init() {
	for _, c := range []*cobra.Command{memberAddCmd, memberEditCmd} {
		c.Flags().StringVar(&memberFirst, "first", "", "first name")
		c.Flags().StringVar(&memberLast, "last", "", "last name")
		c.Flags().StringVar(&memberGender, "gender", "", "gender (Male, Female, Other, Prefer not to say)")
	}
	memberListCmd.Flags().StringVarP(&memberQuery, "query", "q", "", "filter by email or name substring")
	memberListCmd.Flags().StringVar(&memberGender, "gender", "", "filter by gender")

	memberCmd.AddCommand(memberAddCmd, memberListCmd, memberShowCmd, memberEditCmd, memberDeleteCmd)
	rootCmd.AddCommand(memberCmd)
}
