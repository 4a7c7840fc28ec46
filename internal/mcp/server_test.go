// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harperreed/fitcentre/internal/models"
	"github.com/harperreed/fitcentre/internal/report"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// setupTestDB creates a test database in a temp directory.
func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "fitcentre-mcp-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	db, err := storage.Open(filepath.Join(tmpDir, "fitcentre.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func float(v float64) *float64 { return &v }

// seedServer returns a server holding one member with one assessment and one condition.
func seedServer(t *testing.T) *Server {
	t.Helper()

	server, err := NewServer(setupTestDB(t))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	ctx := context.Background()

	if _, _, err := server.handleAddMember(ctx, nil, addMemberInput{
		Email: "Ann@X.com", FirstName: "Ann", LastName: "Lee", Gender: "female",
	}); err != nil {
		t.Fatalf("add_member failed: %v", err)
	}
	if _, _, err := server.handleAddAssessment(ctx, nil, addAssessmentInput{
		Email: "ann@x.com", Date: "2024-01-01", BMI: float(22.5),
	}); err != nil {
		t.Fatalf("add_assessment failed: %v", err)
	}
	if _, _, err := server.handleAddCondition(ctx, nil, addConditionInput{
		Email: "ann@x.com", Name: "Knee Pain", Severity: "mild",
	}); err != nil {
		t.Fatalf("add_condition failed: %v", err)
	}
	return server
}

func TestNewServer(t *testing.T) {
	db := setupTestDB(t)

	server, err := NewServer(db, report.WithBins(5))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if server == nil {
		t.Fatal("Expected non-nil server")
	}
	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.repo == nil {
		t.Error("Expected non-nil repo")
	}
	if len(server.reportOpts) != 1 {
		t.Errorf("Expected 1 report option, got %d", len(server.reportOpts))
	}
}

func TestHandleAddMember(t *testing.T) {
	server, _ := NewServer(setupTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name      string
		input     addMemberInput
		wantErr   error
		errSubstr string
	}{
		{
			name:  "valid member",
			input: addMemberInput{Email: "a@x.com", FirstName: "Ann", LastName: "Lee", Gender: "Female"},
		},
		{
			name:  "gender is optional",
			input: addMemberInput{Email: "b@x.com", FirstName: "Bob"},
		},
		{
			name:    "duplicate email differing in case",
			input:   addMemberInput{Email: "A@X.COM", FirstName: "Other"},
			wantErr: storage.ErrConstraint,
		},
		{
			name:      "unknown gender",
			input:     addMemberInput{Email: "c@x.com", Gender: "robot"},
			errSubstr: "unknown gender",
		},
		{
			name:    "missing email",
			input:   addMemberInput{FirstName: "Nobody"},
			wantErr: storage.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleAddMember(ctx, nil, tt.input)

			if tt.wantErr != nil || tt.errSubstr != "" {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				if tt.errSubstr != "" && !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("Expected error containing %q, got %q", tt.errSubstr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.Email != models.NormalizeEmail(tt.input.Email) {
				t.Errorf("Expected email %s, got %s", tt.input.Email, output.Email)
			}
			if output.Message == "" {
				t.Error("Expected non-empty message")
			}
		})
	}
}

func TestHandleListMembers(t *testing.T) {
	server := seedServer(t)
	ctx := context.Background()

	if _, _, err := server.handleAddMember(ctx, nil, addMemberInput{Email: "bob@x.com", FirstName: "Bob", LastName: "Ray"}); err != nil {
		t.Fatalf("add_member failed: %v", err)
	}

	_, out, err := server.handleListMembers(ctx, nil, listMembersInput{})
	if err != nil {
		t.Fatalf("list_members failed: %v", err)
	}
	all := out.(listMembersOutput)
	if all.Count != 2 {
		t.Errorf("Expected 2 members, got %d", all.Count)
	}
	if all.Members[0].LastName != "Lee" {
		t.Errorf("Expected members ordered by last name, got %s first", all.Members[0].LastName)
	}

	_, out, err = server.handleListMembers(ctx, nil, listMembersInput{Gender: "FEMALE"})
	if err != nil {
		t.Fatalf("list_members with gender failed: %v", err)
	}
	if females := out.(listMembersOutput); females.Count != 1 || females.Members[0].Email != "ann@x.com" {
		t.Errorf("Expected only ann@x.com, got %+v", females.Members)
	}

	if _, _, err := server.handleListMembers(ctx, nil, listMembersInput{Gender: "robot"}); err == nil {
		t.Error("Expected error for unknown gender filter")
	}
}

func TestHandleGetMember(t *testing.T) {
	server := seedServer(t)
	ctx := context.Background()

	_, out, err := server.handleGetMember(ctx, nil, emailInput{Email: " ANN@x.com "})
	if err != nil {
		t.Fatalf("get_member failed: %v", err)
	}
	detail := out.(memberDetailOutput)
	if detail.Member.FirstName != "Ann" {
		t.Errorf("Expected Ann, got %s", detail.Member.FirstName)
	}
	if len(detail.Assessments) != 1 || len(detail.Conditions) != 1 {
		t.Errorf("Expected 1 assessment and 1 condition, got %d and %d",
			len(detail.Assessments), len(detail.Conditions))
	}

	_, _, err = server.handleGetMember(ctx, nil, emailInput{Email: "ghost@x.com"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHandleUpdateMember(t *testing.T) {
	server := seedServer(t)
	ctx := context.Background()

	_, out, err := server.handleUpdateMember(ctx, nil, addMemberInput{Email: "ann@x.com", LastName: "Park"})
	if err != nil {
		t.Fatalf("update_member failed: %v", err)
	}
	if out.Name != "Ann Park" {
		t.Errorf("Expected Ann Park, got %s", out.Name)
	}
	if out.Gender != string(models.GenderFemale) {
		t.Errorf("Expected gender to be kept, got %q", out.Gender)
	}

	_, _, err = server.handleUpdateMember(ctx, nil, addMemberInput{Email: "ghost@x.com", LastName: "X"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHandleDeleteMemberCascades(t *testing.T) {
	server := seedServer(t)
	ctx := context.Background()

	if _, _, err := server.handleDeleteMember(ctx, nil, emailInput{Email: "ann@x.com"}); err != nil {
		t.Fatalf("delete_member failed: %v", err)
	}

	_, out, err := server.handleListAssessments(ctx, nil, listAssessmentsInput{})
	if err != nil {
		t.Fatalf("list_assessments failed: %v", err)
	}
	if n := out.(listAssessmentsOutput).Count; n != 0 {
		t.Errorf("Expected assessments to be removed with the member, got %d", n)
	}

	_, out, err = server.handleListConditions(ctx, nil, listConditionsInput{})
	if err != nil {
		t.Fatalf("list_conditions failed: %v", err)
	}
	if n := out.(listConditionsOutput).Count; n != 0 {
		t.Errorf("Expected conditions to be removed with the member, got %d", n)
	}

	_, _, err = server.handleDeleteMember(ctx, nil, emailInput{Email: "ann@x.com"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestHandleAddAssessment(t *testing.T) {
	server := seedServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   addAssessmentInput
		wantErr error
	}{
		{
			name:  "second date is fine",
			input: addAssessmentInput{Email: "ann@x.com", Date: "2024-02-01", Weight: float(61)},
		},
		{
			name:    "same member and date",
			input:   addAssessmentInput{Email: "ann@x.com", Date: "2024-01-01"},
			wantErr: storage.ErrConstraint,
		},
		{
			name:    "unknown member",
			input:   addAssessmentInput{Email: "ghost@x.com", Date: "2024-01-01"},
			wantErr: storage.ErrNotFound,
		},
		{
			name:    "negative measurement",
			input:   addAssessmentInput{Email: "ann@x.com", Date: "2024-03-01", HeartRate: float(-1)},
			wantErr: storage.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleAddAssessment(ctx, nil, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.Date != tt.input.Date {
				t.Errorf("Expected date %s, got %s", tt.input.Date, output.Date)
			}
			if len(output.ID) != 8 {
				t.Errorf("Expected 8-char ID prefix, got %q", output.ID)
			}
		})
	}

	if _, _, err := server.handleAddAssessment(ctx, nil, addAssessmentInput{Email: "ann@x.com", Date: "01/02/2024"}); err == nil {
		t.Error("Expected error for malformed date")
	}
}

func TestHandleListAssessmentsDateRange(t *testing.T) {
	server := seedServer(t)
	ctx := context.Background()

	for _, date := range []string{"2024-02-01", "2024-03-01"} {
		if _, _, err := server.handleAddAssessment(ctx, nil, addAssessmentInput{Email: "ann@x.com", Date: date}); err != nil {
			t.Fatalf("add_assessment failed: %v", err)
		}
	}

	_, out, err := server.handleListAssessments(ctx, nil, listAssessmentsInput{From: "2024-02-01", To: "2024-03-01"})
	if err != nil {
		t.Fatalf("list_assessments failed: %v", err)
	}
	got := out.(listAssessmentsOutput)
	if got.Count != 2 {
		t.Fatalf("Expected 2 assessments in range, got %d", got.Count)
	}
	if got.Assessments[0].DateString() != "2024-03-01" {
		t.Errorf("Expected most recent first, got %s", got.Assessments[0].DateString())
	}

	_, out, err = server.handleListAssessments(ctx, nil, listAssessmentsInput{Limit: 1})
	if err != nil {
		t.Fatalf("list_assessments with limit failed: %v", err)
	}
	if n := out.(listAssessmentsOutput).Count; n != 1 {
		t.Errorf("Expected limit to apply, got %d", n)
	}

	if _, _, err := server.handleListAssessments(ctx, nil, listAssessmentsInput{From: "yesterday"}); err == nil {
		t.Error("Expected error for malformed from date")
	}
}

func TestHandleDeleteAssessment(t *testing.T) {
	server := seedServer(t)
	ctx := context.Background()

	if _, _, err := server.handleDeleteAssessment(ctx, nil, assessmentKeyInput{Email: "ann@x.com", Date: "2024-01-01"}); err != nil {
		t.Fatalf("delete_assessment failed: %v", err)
	}
	_, _, err := server.handleDeleteAssessment(ctx, nil, assessmentKeyInput{Email: "ann@x.com", Date: "2024-01-01"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHandleConditions(t *testing.T) {
	server := seedServer(t)
	ctx := context.Background()

	_, out, err := server.handleAddCondition(ctx, nil, addConditionInput{
		Email: "ann@x.com", Name: "Asthma", Severity: "Severe", Notes: "uses inhaler",
	})
	if err != nil {
		t.Fatalf("add_condition failed: %v", err)
	}
	if out.Severity != string(models.SeveritySevere) {
		t.Errorf("Expected Severe, got %s", out.Severity)
	}

	_, _, err = server.handleAddCondition(ctx, nil, addConditionInput{Email: "ann@x.com", Name: "Knee Pain"})
	if !errors.Is(err, storage.ErrConstraint) {
		t.Errorf("Expected ErrConstraint for duplicate condition, got %v", err)
	}

	if _, _, err := server.handleAddCondition(ctx, nil, addConditionInput{Email: "ann@x.com", Name: "Flu", Severity: "terminal"}); err == nil {
		t.Error("Expected error for unknown severity")
	}

	_, list, err := server.handleListConditions(ctx, nil, listConditionsInput{Query: "INHALER"})
	if err != nil {
		t.Fatalf("list_conditions failed: %v", err)
	}
	if got := list.(listConditionsOutput); got.Count != 1 || got.Conditions[0].Name != "Asthma" {
		t.Errorf("Expected notes search to find Asthma, got %+v", got.Conditions)
	}

	if _, _, err := server.handleDeleteCondition(ctx, nil, conditionKeyInput{Email: "ann@x.com", Name: "Asthma"}); err != nil {
		t.Fatalf("delete_condition failed: %v", err)
	}
	_, _, err = server.handleDeleteCondition(ctx, nil, conditionKeyInput{Email: "ann@x.com", Name: "Asthma"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHandleGetDashboard(t *testing.T) {
	server := seedServer(t)
	ctx := context.Background()

	_, out, err := server.handleGetDashboard(ctx, nil, dashboardInput{})
	if err != nil {
		t.Fatalf("get_dashboard failed: %v", err)
	}
	d := out.(*report.Dashboard)
	if d.Members != 1 || d.Assessments != 1 {
		t.Errorf("Expected 1 member and 1 assessment, got %d and %d", d.Members, d.Assessments)
	}
	if d.AverageBMI == nil || *d.AverageBMI != 22.5 {
		t.Errorf("Expected average BMI 22.5, got %v", d.AverageBMI)
	}
	if d.MostCommonCondition != "Knee Pain" {
		t.Errorf("Expected Knee Pain, got %q", d.MostCommonCondition)
	}
}

func TestDashboardResource(t *testing.T) {
	server := seedServer(t)

	result, err := server.handleDashboardResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("dashboard resource failed: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("Expected 1 content, got %d", len(result.Contents))
	}
	if result.Contents[0].URI != dashboardURI {
		t.Errorf("Expected URI %s, got %s", dashboardURI, result.Contents[0].URI)
	}

	var d report.Dashboard
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &d); err != nil {
		t.Fatalf("Failed to parse dashboard JSON: %v", err)
	}
	if d.Members != 1 {
		t.Errorf("Expected 1 member, got %d", d.Members)
	}
}

func TestMembersResource(t *testing.T) {
	server := seedServer(t)

	result, err := server.handleMembersResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("members resource failed: %v", err)
	}

	var parsed struct {
		Members []*models.Member `json:"members"`
		Count   int              `json:"count"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &parsed); err != nil {
		t.Fatalf("Failed to parse members JSON: %v", err)
	}
	if parsed.Count != 1 || parsed.Members[0].Email != "ann@x.com" {
		t.Errorf("Unexpected members resource: %+v", parsed)
	}
}
