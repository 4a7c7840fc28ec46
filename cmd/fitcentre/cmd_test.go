// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Runs commands end to end against temporary SQLite and Badger stores.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/harperreed/fitcentre/internal/config"
	"github.com/harperreed/fitcentre/internal/models"
	"github.com/harperreed/fitcentre/internal/report"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupTestCLI points config and data at temp directories and returns the data dir.
func setupTestCLI(t *testing.T) string {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dataDir := t.TempDir()
	for _, key := range []string{"BACKEND", "POSTGRES_DSN", "LOG_LEVEL", "HTTP_ADDR", "HISTOGRAM_BINS"} {
		t.Setenv("FITCENTRE_"+key, "")
	}
	t.Setenv("FITCENTRE_DATA_DIR", dataDir)
	t.Setenv("FITCENTRE_LOG_LEVEL", "error")
	return dataDir
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err := Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// openTestDB opens the SQLite store the CLI wrote to.
func openTestDB(t *testing.T, dataDir string) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(dataDir, "fitcentre.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedCLI(t *testing.T) {
	t.Helper()
	mustRun(t, "member", "add", "Ann@X.com", "--first", "Ann", "--last", "Lee", "--gender", "female")
	mustRun(t, "assessment", "add", "a@x.com", "--date", "2024-01-01", "--bmi", "22.5")
	mustRun(t, "condition", "add", "a@x.com", "Knee Pain", "--severity", "Mild")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string no truncation", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"needs truncation", "hello world this is a long string", 15, "hello world ..."},
		{"multi-byte runes kept whole", "Épaule droite très douloureuse", 10, "Épaule ..."},
		{"multi-byte within limit", "Épaule", 6, "Épaule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.input, tt.maxLen)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q, want %q", got, "ab  ")
	}
	if got := padRight("Zoë", 5); got != "Zoë  " {
		t.Errorf("padRight = %q, want %q", got, "Zoë  ")
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Errorf("padRight should not cut long strings, got %q", got)
	}
}

func TestOptional(t *testing.T) {
	if got := optional(nil); got != "-" {
		t.Errorf("optional(nil) = %q, want -", got)
	}
	v := 22.46
	if got := optional(&v); got != "22.5" {
		t.Errorf("optional(22.46) = %q, want 22.5", got)
	}
}

func TestRootCmdFlags(t *testing.T) {
	if rootCmd.Use != "fitcentre" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "fitcentre")
	}
	if rootCmd.Long == "" {
		t.Error("Expected rootCmd.Long to be non-empty")
	}
	for _, name := range []string{"backend", "data-dir", "log-level"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected --%s persistent flag", name)
		}
	}
}

func TestCommandGroups(t *testing.T) {
	tests := []struct {
		cmd     *cobra.Command
		alias   string
		subcmds []string
	}{
		{memberCmd, "m", []string{"add", "delete", "edit", "list", "show"}},
		{assessmentCmd, "a", []string{"add", "delete", "edit", "list", "show"}},
		{conditionCmd, "c", []string{"add", "delete", "edit", "list", "show"}},
		{syncCmd, "s", []string{"link", "repair", "reset", "status", "unlink", "wipe"}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			hasAlias := false
			for _, a := range tt.cmd.Aliases {
				if a == tt.alias {
					hasAlias = true
				}
			}
			if !hasAlias {
				t.Errorf("Expected alias %q on %s", tt.alias, tt.cmd.Name())
			}

			names := make(map[string]bool)
			for _, c := range tt.cmd.Commands() {
				names[c.Name()] = true
			}
			for _, want := range tt.subcmds {
				if !names[want] {
					t.Errorf("Expected subcommand %s %s", tt.cmd.Name(), want)
				}
			}
		})
	}
}

func TestNeedsStorage(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		want bool
	}{
		{memberAddCmd, true},
		{dashboardCmd, true},
		{syncStatusCmd, false},
		{installSkillCmd, false},
		{migrateCmd, false},
	}
	for _, tt := range tests {
		if got := needsStorage(tt.cmd); got != tt.want {
			t.Errorf("needsStorage(%s) = %v, want %v", tt.cmd.CommandPath(), got, tt.want)
		}
	}
}

func TestMemberCommands(t *testing.T) {
	dataDir := setupTestCLI(t)

	out := mustRun(t, "member", "add", "Ann@X.com", "--first", "Ann", "--last", "Lee", "--gender", "female")
	if !strings.Contains(out, "Added member a@x.com") {
		t.Errorf("Expected normalized email in output, got %q", out)
	}
	mustRun(t, "m", "add", "bob@x.com", "--first", "Bob", "--last", "Ray")

	out = mustRun(t, "member", "list")
	if strings.Index(out, "a@x.com") > strings.Index(out, "bob@x.com") {
		t.Errorf("Expected Lee before Ray, got:\n%s", out)
	}

	out = mustRun(t, "member", "list", "--gender", "Female")
	if strings.Contains(out, "bob@x.com") {
		t.Errorf("Gender filter leaked bob@x.com:\n%s", out)
	}

	mustRun(t, "member", "edit", "a@x.com", "--last", "Park")
	db := openTestDB(t, dataDir)
	m, err := db.GetMember("a@x.com")
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if m.LastName != "Park" || m.FirstName != "Ann" || m.Gender != models.GenderFemale {
		t.Errorf("Edit changed more than --last: %+v", m)
	}
}

func TestMemberAddErrors(t *testing.T) {
	setupTestCLI(t)
	mustRun(t, "member", "add", "a@x.com", "--first", "Ann")

	_, err := run(t, "member", "add", "A@x.com")
	if !errors.Is(err, storage.ErrConstraint) {
		t.Errorf("Expected ErrConstraint for duplicate email, got %v", err)
	}

	_, err = run(t, "member", "add", "b@x.com", "--gender", "robot")
	if err == nil || !strings.Contains(err.Error(), "unknown gender") {
		t.Errorf("Expected unknown gender error, got %v", err)
	}

	_, err = run(t, "member", "edit", "ghost@x.com", "--first", "G")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound editing a missing member, got %v", err)
	}
}

func TestMemberShowAndDeleteCascade(t *testing.T) {
	dataDir := setupTestCLI(t)
	seedCLI(t)

	out := mustRun(t, "member", "show", "a@x.com")
	for _, want := range []string{"Ann Lee", "Female", "2024-01-01", "Knee Pain"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in member show output:\n%s", want, out)
		}
	}

	out = mustRun(t, "member", "delete", "a@x.com")
	if !strings.Contains(out, "Deleted member a@x.com") {
		t.Errorf("Unexpected delete output: %q", out)
	}

	db := openTestDB(t, dataDir)
	assessments, _ := db.ListAssessments(nil)
	conditions, _ := db.ListConditions(nil)
	if len(assessments) != 0 || len(conditions) != 0 {
		t.Errorf("Expected cascade delete, got %d assessments and %d conditions", len(assessments), len(conditions))
	}

	if _, err := run(t, "member", "delete", "a@x.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestAssessmentCommands(t *testing.T) {
	dataDir := setupTestCLI(t)
	seedCLI(t)
	mustRun(t, "a", "add", "a@x.com", "--date", "2024-02-01", "--weight", "61.2")

	out := mustRun(t, "assessment", "list", "--from", "2024-01-01", "--to", "2024-01-01")
	if !strings.Contains(out, "2024-01-01") || strings.Contains(out, "2024-02-01") {
		t.Errorf("Expected only the 2024-01-01 assessment:\n%s", out)
	}

	out = mustRun(t, "assessment", "list")
	if strings.Index(out, "2024-02-01") > strings.Index(out, "2024-01-01") {
		t.Errorf("Expected most recent first:\n%s", out)
	}

	out = mustRun(t, "assessment", "show", "a@x.com", "2024-01-01")
	if !strings.Contains(out, "22.5") {
		t.Errorf("Expected BMI in show output:\n%s", out)
	}

	mustRun(t, "assessment", "edit", "a@x.com", "2024-01-01", "--heart-rate", "62")

	if _, err := run(t, "assessment", "add", "a@x.com", "--date", "2024-01-01"); !errors.Is(err, storage.ErrConstraint) {
		t.Errorf("Expected ErrConstraint for duplicate date, got %v", err)
	}
	if _, err := run(t, "assessment", "add", "ghost@x.com", "--date", "2024-01-01"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown member, got %v", err)
	}
	if _, err := run(t, "assessment", "add", "a@x.com", "--date", "01/03/2024"); err == nil {
		t.Error("Expected error for malformed date")
	}

	mustRun(t, "assessment", "delete", "a@x.com", "2024-02-01")

	db := openTestDB(t, dataDir)
	a, err := db.GetAssessment("a@x.com", mustDate(t, "2024-01-01"))
	if err != nil {
		t.Fatalf("GetAssessment failed: %v", err)
	}
	if a.HeartRate == nil || *a.HeartRate != 62 {
		t.Errorf("Expected heart rate 62, got %v", a.HeartRate)
	}
	if a.BMI == nil || *a.BMI != 22.5 {
		t.Errorf("Edit should keep BMI, got %v", a.BMI)
	}
	if _, err := db.GetAssessment("a@x.com", mustDate(t, "2024-02-01")); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected deleted assessment to be gone, got %v", err)
	}
}

func TestConditionCommands(t *testing.T) {
	dataDir := setupTestCLI(t)
	seedCLI(t)
	mustRun(t, "c", "add", "a@x.com", "Asthma", "--severity", "moderate", "--notes", "uses inhaler")

	out := mustRun(t, "condition", "list", "-q", "INHALER")
	if !strings.Contains(out, "Asthma") || strings.Contains(out, "Knee Pain") {
		t.Errorf("Expected only Asthma:\n%s", out)
	}

	out = mustRun(t, "condition", "show", "a@x.com", "Knee Pain")
	if !strings.Contains(out, "Mild") {
		t.Errorf("Expected severity in show output:\n%s", out)
	}

	mustRun(t, "condition", "edit", "a@x.com", "Knee Pain", "--notes", "left knee")
	mustRun(t, "condition", "delete", "a@x.com", "Asthma")

	if _, err := run(t, "condition", "add", "a@x.com", "Knee Pain"); !errors.Is(err, storage.ErrConstraint) {
		t.Errorf("Expected ErrConstraint for duplicate condition, got %v", err)
	}
	if _, err := run(t, "condition", "list", "--severity", "extreme"); err == nil {
		t.Error("Expected error for unknown severity")
	}

	db := openTestDB(t, dataDir)
	c, err := db.GetCondition("a@x.com", "Knee Pain")
	if err != nil {
		t.Fatalf("GetCondition failed: %v", err)
	}
	if c.Notes != "left knee" || c.Severity != models.SeverityMild {
		t.Errorf("Unexpected condition after edit: %+v", c)
	}
}

func TestDashboardCmd(t *testing.T) {
	setupTestCLI(t)

	out := mustRun(t, "dashboard")
	if !strings.Contains(out, "N/A") {
		t.Errorf("Expected N/A on an empty dashboard:\n%s", out)
	}

	seedCLI(t)
	out = mustRun(t, "dash")
	for _, want := range []string{"FITNESS CENTRE DASHBOARD", "22.50", "Knee Pain"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in dashboard:\n%s", want, out)
		}
	}

	out = mustRun(t, "dashboard", "--json", "--bins", "3")
	var d report.Dashboard
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("Failed to parse dashboard JSON: %v\n%s", err, out)
	}
	if d.Members != 1 || len(d.BMIHistogram) != 3 {
		t.Errorf("Unexpected dashboard: %+v", d)
	}
}

func TestAboutCmd(t *testing.T) {
	dataDir := setupTestCLI(t)

	out := mustRun(t, "about")
	for _, want := range []string{"fitcentre", "sqlite", filepath.Join(dataDir, "fitcentre.db"), "members", "ready"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in about output:\n%s", want, out)
		}
	}
}

func TestBackendFlag(t *testing.T) {
	dataDir := setupTestCLI(t)

	mustRun(t, "--backend", "badger", "member", "add", "a@x.com", "--first", "Ann")

	kv, err := storage.OpenBadger(filepath.Join(dataDir, "badger"))
	if err != nil {
		t.Fatalf("OpenBadger failed: %v", err)
	}
	defer kv.Close()
	if _, err := kv.GetMember("a@x.com"); err != nil {
		t.Errorf("Expected member in badger store: %v", err)
	}

	if _, err := run(t, "--backend", "floppy", "member", "list"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestExportImportCmd(t *testing.T) {
	setupTestCLI(t)
	seedCLI(t)

	out := mustRun(t, "export", "yaml")
	if !strings.Contains(out, "email: a@x.com") {
		t.Errorf("Expected YAML export to contain member:\n%s", out)
	}

	out = mustRun(t, "export", "markdown", "--since", "2024-01-01")
	if !strings.Contains(out, "# Fitness Centre Export") {
		t.Errorf("Expected markdown heading:\n%s", out)
	}

	if _, err := run(t, "export", "csv"); err == nil {
		t.Error("Expected error for unknown format")
	}
	if _, err := run(t, "export", "markdown", "--since", "last week"); err == nil {
		t.Error("Expected error for invalid --since")
	}

	backup := filepath.Join(t.TempDir(), "backup.json")
	mustRun(t, "export", "json", "-o", backup)

	// Import into a fresh data directory.
	freshDir := t.TempDir()
	t.Setenv("FITCENTRE_DATA_DIR", freshDir)
	out = mustRun(t, "import", backup)
	if !strings.Contains(out, "Members: 1") {
		t.Errorf("Unexpected import output: %q", out)
	}

	db := openTestDB(t, freshDir)
	if _, err := db.GetCondition("a@x.com", "Knee Pain"); err != nil {
		t.Errorf("Expected condition after import: %v", err)
	}

	if _, err := run(t, "import", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestMigrateCmd(t *testing.T) {
	dataDir := setupTestCLI(t)
	seedCLI(t)

	out := mustRun(t, "migrate", "--dry-run")
	if !strings.Contains(out, "Assessments: 1") {
		t.Errorf("Unexpected dry run output: %q", out)
	}
	if nonEmpty, _ := storage.IsDirNonEmpty(filepath.Join(dataDir, "badger")); nonEmpty {
		t.Error("Dry run must not create the destination")
	}

	out = mustRun(t, "migrate", "--from", "sqlite", "--to", "badger")
	if !strings.Contains(out, "Members: 1") || !strings.Contains(out, "Conditions: 1") {
		t.Errorf("Unexpected migrate output: %q", out)
	}

	if _, err := run(t, "migrate", "--from", "sqlite", "--to", "badger"); err == nil {
		t.Error("Expected refusal to migrate into a non-empty badger directory")
	}
	if _, err := run(t, "migrate", "--from", "sqlite", "--to", "sqlite"); err == nil {
		t.Error("Expected error when source equals destination")
	}

	kv, err := storage.OpenBadger(filepath.Join(dataDir, "badger"))
	if err != nil {
		t.Fatalf("OpenBadger failed: %v", err)
	}
	defer kv.Close()
	a, err := kv.GetAssessment("a@x.com", mustDate(t, "2024-01-01"))
	if err != nil {
		t.Fatalf("Expected migrated assessment: %v", err)
	}
	if a.BMI == nil || *a.BMI != 22.5 {
		t.Errorf("BMI not preserved: %v", a.BMI)
	}
}

func TestMigrateUseSavesBackend(t *testing.T) {
	setupTestCLI(t)
	seedCLI(t)

	out := mustRun(t, "migrate", "--from", "sqlite", "--to", "badger", "--use")
	if !strings.Contains(out, "Backend set to badger") {
		t.Errorf("Expected backend switch message, got %q", out)
	}

	saved, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	if saved.GetBackend() != config.BackendBadger {
		t.Errorf("Expected saved backend badger, got %s", saved.GetBackend())
	}

	out = mustRun(t, "about")
	if !strings.Contains(out, "badger") {
		t.Errorf("Expected about to report the badger backend, got %q", out)
	}
	out = mustRun(t, "member", "list")
	if !strings.Contains(out, "a@x.com") {
		t.Errorf("Expected migrated member from badger, got %q", out)
	}
}

func TestMigrateWithoutUseKeepsConfig(t *testing.T) {
	setupTestCLI(t)
	seedCLI(t)

	mustRun(t, "migrate", "--from", "sqlite", "--to", "badger")
	if _, err := os.Stat(config.GetConfigPath()); !os.IsNotExist(err) {
		t.Errorf("Expected no config file without --use, got %v", err)
	}
}

func TestBatchWritesPassesThrough(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := batchWrites(config.BackendSQLite, func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Errorf("Expected fn to run once and its error returned, got calls=%d err=%v", calls, err)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"wipe\n", true},
		{"no\n", false},
		{"", false},
	}
	for _, tt := range tests {
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader(tt.input))
		cmd.SetOut(&bytes.Buffer{})
		if got := confirm(cmd, "? ", "wipe"); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSyncWipeCanceled(t *testing.T) {
	setupTestCLI(t)

	out, err := run(t, "sync", "wipe")
	if err != nil {
		t.Fatalf("sync wipe failed: %v", err)
	}
	if !strings.Contains(out, "Canceled.") {
		t.Errorf("Expected wipe to cancel without confirmation, got %q", out)
	}
}

func TestCountRecords(t *testing.T) {
	dataDir := setupTestCLI(t)
	seedCLI(t)

	db := openTestDB(t, dataDir)
	counts, err := countRecords(db)
	if err != nil {
		t.Fatalf("countRecords failed: %v", err)
	}
	if counts != (recordCounts{Members: 1, Assessments: 1, Conditions: 1}) {
		t.Errorf("Unexpected counts: %+v", counts)
	}

	db.Close()
	if _, err := countRecords(db); err == nil {
		t.Error("Expected a read failure to be reported, not counted as zero")
	}
}

func TestSyncResetCanceled(t *testing.T) {
	setupTestCLI(t)

	out, err := run(t, "sync", "reset")
	if err != nil {
		t.Fatalf("sync reset failed: %v", err)
	}
	if !strings.Contains(out, "Canceled.") {
		t.Errorf("Expected reset to cancel without confirmation, got %q", out)
	}
}

func TestRenderSkill(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    []string
		notWant []string
	}{
		{
			name:    "default sqlite",
			cfg:     &config.Config{DataDir: "/data/fc"},
			want:    []string{"Backend: `sqlite`", "/data/fc/fitcentre.db", "`fitcentre mcp`"},
			notWant: []string{"--backend"},
		},
		{
			name: "badger needs the flag",
			cfg:  &config.Config{Backend: "badger", DataDir: "/data/fc"},
			want: []string{"Backend: `badger`", "/data/fc/badger", "`--backend badger`", "`fitcentre mcp --backend badger`"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := renderSkill(newSkillContext(tt.cfg))
			if err != nil {
				t.Fatalf("renderSkill failed: %v", err)
			}
			md := string(content)
			if !strings.HasPrefix(md, "---\nname: fitcentre") {
				t.Errorf("Expected skill front matter, got %q", md[:40])
			}
			for _, w := range tt.want {
				if !strings.Contains(md, w) {
					t.Errorf("Expected skill to contain %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(md, w) {
					t.Errorf("Expected skill not to contain %q", w)
				}
			}
		})
	}
}

func TestInstallSkillCmd(t *testing.T) {
	dataDir := setupTestCLI(t)
	dir := filepath.Join(t.TempDir(), "skills", "fitcentre")

	out := mustRun(t, "install-skill", "--yes", "--dir", dir, "--backend", "badger")
	if !strings.Contains(out, "Installed skill to") {
		t.Errorf("Unexpected output: %q", out)
	}

	content, err := os.ReadFile(filepath.Join(dir, "SKILL.md"))
	if err != nil {
		t.Fatalf("Expected skill file: %v", err)
	}
	if !strings.Contains(string(content), filepath.Join(dataDir, "badger")) {
		t.Errorf("Expected skill to name the badger data dir, got:\n%s", content)
	}

	out = mustRun(t, "install-skill", "--yes", "--dir", dir, "--backend", "badger")
	if !strings.Contains(out, "already up to date") {
		t.Errorf("Expected unchanged skill to be left alone, got %q", out)
	}
}

func TestInstallSkillOverwriteNeedsConfirmation(t *testing.T) {
	setupTestCLI(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "SKILL.md")
	if err := os.WriteFile(path, []byte("old content"), 0600); err != nil {
		t.Fatalf("Failed to write skill file: %v", err)
	}

	out := mustRun(t, "install-skill", "--dir", dir)
	if !strings.Contains(out, "will be overwritten") || !strings.Contains(out, "Installation canceled.") {
		t.Errorf("Expected overwrite warning and cancel, got %q", out)
	}
	if content, _ := os.ReadFile(path); string(content) != "old content" {
		t.Error("Expected skill file to be kept without confirmation")
	}

	mustRun(t, "install-skill", "--dir", dir, "--yes")
	if content, _ := os.ReadFile(path); string(content) == "old content" {
		t.Error("Expected skill file to be overwritten with --yes")
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) failed: %v", s, err)
	}
	return d
}

func TestFullWorkflow(t *testing.T) {
	setupTestCLI(t)

	out := mustRun(t, "member", "add", "a@x.com", "--first", "Ann", "--last", "Lee", "--gender", "Female")
	if !strings.Contains(out, "Added member a@x.com") {
		t.Errorf("Expected 'Added member' in output, got: %s", out)
	}

	mustRun(t, "assessment", "add", "a@x.com", "--date", "2024-01-01", "--bmi", "22.5")

	out = mustRun(t, "assessment", "list", "--from", "2024-01-01", "--to", "2024-01-01")
	if n := strings.Count(out, "a@x.com"); n != 1 {
		t.Errorf("Expected one assessment row, got %d:\n%s", n, out)
	}

	mustRun(t, "member", "delete", "a@x.com")

	out = mustRun(t, "assessment", "list")
	if !strings.Contains(out, "No assessments found.") {
		t.Errorf("Expected no assessments after deleting the member, got: %s", out)
	}
}
