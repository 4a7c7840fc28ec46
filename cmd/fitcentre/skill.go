// ABOUTME: install-skill command that writes an assistant skill for this registry.
// ABOUTME: The skill is rendered from an embedded template with the active backend and data location.
package main

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/harperreed/fitcentre/internal/config"
	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md.tmpl
var skillFS embed.FS

var (
	skillSkipConfirm bool
	skillDir         string
)

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install the fitcentre skill for Claude Code",
	Long: `Write a SKILL.md describing the fitcentre commands to ~/.claude/skills/fitcentre/.

The skill records which backend and data location this installation uses, so
re-run install-skill after switching backends (for example after migrate --use).`,
	Annotations: map[string]string{skipStorage: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := skillDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			dir = filepath.Join(home, ".claude", "skills", "fitcentre")
		}
		return installSkill(cmd.OutOrStdout(), cmd.InOrStdin(), dir, skillSkipConfirm)
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "skip confirmation prompt")
	installSkillCmd.Flags().StringVar(&skillDir, "dir", "", "install directory (default ~/.claude/skills/fitcentre)")
	rootCmd.AddCommand(installSkillCmd)
}

// skillContext is the data the skill template is rendered with.
type skillContext struct {
	Version  string
	Backend  string
	Location string
	// BackendFlag is set when the backend differs from the default.
	BackendFlag string
}

func newSkillContext(c *config.Config) skillContext {
	sc := skillContext{
		Version:  version,
		Backend:  c.GetBackend(),
		Location: c.Location(),
	}
	if sc.Backend != config.BackendSQLite {
		sc.BackendFlag = "--backend " + sc.Backend
	}
	return sc
}

func renderSkill(sc skillContext) ([]byte, error) {
	tmpl, err := template.ParseFS(skillFS, "skill/SKILL.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse skill template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, sc); err != nil {
		return nil, fmt.Errorf("render skill: %w", err)
	}
	return buf.Bytes(), nil
}

func installSkill(out io.Writer, in io.Reader, dir string, yes bool) error {
	sc := newSkillContext(cfg)
	content, err := renderSkill(sc)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "SKILL.md")

	fmt.Fprintln(out, "Installs the fitcentre skill so Claude Code can manage members,")
	fmt.Fprintln(out, "assessments, and conditions and read the centre dashboard.")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Backend:     %s\n", sc.Backend)
	fmt.Fprintf(out, "  Data:        %s\n", sc.Location)
	fmt.Fprintf(out, "  Destination: %s\n", path)
	fmt.Fprintln(out)

	if existing, err := os.ReadFile(path); err == nil {
		if bytes.Equal(existing, content) {
			success(out, "Skill already up to date")
			return nil
		}
		yell.Fprintln(out, "An existing skill file will be overwritten.")
	}

	if !yes {
		fmt.Fprint(out, "Install the fitcentre skill? [y/N] ")
		response, _ := bufio.NewReader(in).ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Installation canceled.")
			return nil
		}
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	success(out, "Installed skill to %s", path)
	return nil
}
