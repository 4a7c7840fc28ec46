// ABOUTME: MCP tool implementations for members, assessments, and conditions.
// ABOUTME: Each handler validates input, calls the Repository, and returns a structured result.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/fitcentre/internal/logging"
	"github.com/harperreed/fitcentre/internal/models"
	"github.com/harperreed/fitcentre/internal/report"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_member",
		Description: "Register a new fitness centre member",
	}, s.handleAddMember)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_members",
		Description: "List members, optionally filtered by name/email substring or gender",
	}, s.handleListMembers)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_member",
		Description: "Get a member with their assessments and conditions",
	}, s.handleGetMember)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_member",
		Description: "Update a member's name or gender; omitted fields are kept",
	}, s.handleUpdateMember)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_member",
		Description: "Delete a member and all of their assessments and conditions",
	}, s.handleDeleteMember)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_assessment",
		Description: "Record a physical assessment for a member on a date",
	}, s.handleAddAssessment)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_assessments",
		Description: "List assessments, most recent first, optionally filtered by email and date range",
	}, s.handleListAssessments)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_assessment",
		Description: "Delete a member's assessment on a date",
	}, s.handleDeleteAssessment)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_condition",
		Description: "Record a health condition for a member",
	}, s.handleAddCondition)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_conditions",
		Description: "List conditions, optionally filtered by email, text, or severity",
	}, s.handleListConditions)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_condition",
		Description: "Delete a member's condition by name",
	}, s.handleDeleteCondition)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Get member and assessment counts, average BMI, most common condition, and distributions",
	}, s.handleGetDashboard)
}

// Tool input/output types

type addMemberInput struct {
	Email     string `json:"email" jsonschema:"Member email address, used as the member key"`
	FirstName string `json:"first_name,omitempty" jsonschema:"First name"`
	LastName  string `json:"last_name,omitempty" jsonschema:"Last name"`
	Gender    string `json:"gender,omitempty" jsonschema:"One of Male, Female, Other, Prefer not to say"`
}

type memberOutput struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Gender  string `json:"gender,omitempty"`
	Message string `json:"message"`
}

type listMembersInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Case-insensitive substring of email, first name, or last name"`
	Gender string `json:"gender,omitempty" jsonschema:"Exact gender to match"`
}

type listMembersOutput struct {
	Members []*models.Member `json:"members"`
	Count   int              `json:"count"`
}

type emailInput struct {
	Email string `json:"email" jsonschema:"Member email address"`
}

type memberDetailOutput struct {
	Member      *models.Member       `json:"member"`
	Assessments []*models.Assessment `json:"assessments"`
	Conditions  []*models.Condition  `json:"conditions"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type addAssessmentInput struct {
	Email         string   `json:"email" jsonschema:"Member email address"`
	Date          string   `json:"date,omitempty" jsonschema:"Assessment date (YYYY-MM-DD), defaults to today"`
	Height        *float64 `json:"height,omitempty" jsonschema:"Height in cm"`
	BMI           *float64 `json:"bmi,omitempty" jsonschema:"Body mass index"`
	BloodPressure *float64 `json:"blood_pressure,omitempty" jsonschema:"Blood pressure in mmHg"`
	HeartRate     *float64 `json:"heart_rate,omitempty" jsonschema:"Resting heart rate in bpm"`
	Weight        *float64 `json:"weight,omitempty" jsonschema:"Weight in kg"`
}

type assessmentOutput struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

type listAssessmentsInput struct {
	Email string `json:"email,omitempty" jsonschema:"Case-insensitive substring of the member email"`
	From  string `json:"from,omitempty" jsonschema:"Earliest date (YYYY-MM-DD), inclusive"`
	To    string `json:"to,omitempty" jsonschema:"Latest date (YYYY-MM-DD), inclusive"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listAssessmentsOutput struct {
	Assessments []*models.Assessment `json:"assessments"`
	Count       int                  `json:"count"`
}

type assessmentKeyInput struct {
	Email string `json:"email" jsonschema:"Member email address"`
	Date  string `json:"date" jsonschema:"Assessment date (YYYY-MM-DD)"`
}

type addConditionInput struct {
	Email    string `json:"email" jsonschema:"Member email address"`
	Name     string `json:"condition_name" jsonschema:"Condition name, e.g. Knee Pain"`
	Severity string `json:"severity,omitempty" jsonschema:"One of Mild, Moderate, Severe"`
	Notes    string `json:"notes,omitempty" jsonschema:"Free-text notes"`
}

type conditionOutput struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"condition_name"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message"`
}

type listConditionsInput struct {
	Email    string `json:"email,omitempty" jsonschema:"Case-insensitive substring of the member email"`
	Query    string `json:"query,omitempty" jsonschema:"Case-insensitive substring of condition name or notes"`
	Severity string `json:"severity,omitempty" jsonschema:"Exact severity to match"`
}

type listConditionsOutput struct {
	Conditions []*models.Condition `json:"conditions"`
	Count      int                 `json:"count"`
}

type conditionKeyInput struct {
	Email string `json:"email" jsonschema:"Member email address"`
	Name  string `json:"condition_name" jsonschema:"Condition name"`
}

type dashboardInput struct{}

// Tool handlers

func (s *Server) handleAddMember(ctx context.Context, req *mcp.CallToolRequest, input addMemberInput) (*mcp.CallToolResult, memberOutput, error) {
	gender, err := parseGender(input.Gender)
	if err != nil {
		return nil, memberOutput{}, err
	}

	m := models.NewMember(input.Email, input.FirstName, input.LastName, gender)
	if err := s.repo.CreateMember(m); err != nil {
		return nil, memberOutput{}, toolError("add_member", err)
	}

	return nil, memberOutput{
		Email:   m.Email,
		Name:    m.FullName(),
		Gender:  string(m.Gender),
		Message: fmt.Sprintf("Added member %s (%s)", m.FullName(), m.Email),
	}, nil
}

func (s *Server) handleListMembers(ctx context.Context, req *mcp.CallToolRequest, input listMembersInput) (*mcp.CallToolResult, any, error) {
	gender, err := parseGender(input.Gender)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.ListMembers(&storage.MemberFilter{Query: input.Query, Gender: gender})
	if err != nil {
		return nil, nil, toolError("list_members", err)
	}
	return nil, listMembersOutput{Members: members, Count: len(members)}, nil
}

func (s *Server) handleGetMember(ctx context.Context, req *mcp.CallToolRequest, input emailInput) (*mcp.CallToolResult, any, error) {
	m, err := s.repo.GetMember(input.Email)
	if err != nil {
		return nil, nil, toolError("get_member", err)
	}

	// Substring filters are narrowed to exact matches on the member key.
	assessments, err := s.repo.ListAssessments(&storage.AssessmentFilter{Email: m.Email})
	if err != nil {
		return nil, nil, toolError("get_member", err)
	}
	conditions, err := s.repo.ListConditions(&storage.ConditionFilter{Email: m.Email})
	if err != nil {
		return nil, nil, toolError("get_member", err)
	}

	out := memberDetailOutput{Member: m, Assessments: []*models.Assessment{}, Conditions: []*models.Condition{}}
	for _, a := range assessments {
		if a.Email == m.Email {
			out.Assessments = append(out.Assessments, a)
		}
	}
	for _, c := range conditions {
		if c.Email == m.Email {
			out.Conditions = append(out.Conditions, c)
		}
	}
	return nil, out, nil
}

func (s *Server) handleUpdateMember(ctx context.Context, req *mcp.CallToolRequest, input addMemberInput) (*mcp.CallToolResult, memberOutput, error) {
	m, err := s.repo.GetMember(input.Email)
	if err != nil {
		return nil, memberOutput{}, toolError("update_member", err)
	}

	if input.FirstName != "" {
		m.FirstName = strings.TrimSpace(input.FirstName)
	}
	if input.LastName != "" {
		m.LastName = strings.TrimSpace(input.LastName)
	}
	if input.Gender != "" {
		gender, err := parseGender(input.Gender)
		if err != nil {
			return nil, memberOutput{}, err
		}
		m.Gender = gender
	}

	if err := s.repo.UpdateMember(m); err != nil {
		return nil, memberOutput{}, toolError("update_member", err)
	}

	return nil, memberOutput{
		Email:   m.Email,
		Name:    m.FullName(),
		Gender:  string(m.Gender),
		Message: fmt.Sprintf("Updated member %s", m.Email),
	}, nil
}

func (s *Server) handleDeleteMember(ctx context.Context, req *mcp.CallToolRequest, input emailInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteMember(input.Email); err != nil {
		return nil, simpleOutput{}, toolError("delete_member", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted member %s with their assessments and conditions", models.NormalizeEmail(input.Email)),
	}, nil
}

func (s *Server) handleAddAssessment(ctx context.Context, req *mcp.CallToolRequest, input addAssessmentInput) (*mcp.CallToolResult, assessmentOutput, error) {
	date := time.Now()
	if input.Date != "" {
		d, err := models.ParseDate(input.Date)
		if err != nil {
			return nil, assessmentOutput{}, err
		}
		date = d
	}

	a := models.NewAssessment(input.Email, date)
	a.Height = input.Height
	a.BMI = input.BMI
	a.BloodPressure = input.BloodPressure
	a.HeartRate = input.HeartRate
	a.Weight = input.Weight

	if err := s.repo.CreateAssessment(a); err != nil {
		return nil, assessmentOutput{}, toolError("add_assessment", err)
	}

	return nil, assessmentOutput{
		ID:      a.ID.String()[:8],
		Email:   a.Email,
		Date:    a.DateString(),
		Message: fmt.Sprintf("Added assessment for %s on %s (ID: %s)", a.Email, a.DateString(), a.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListAssessments(ctx context.Context, req *mcp.CallToolRequest, input listAssessmentsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	filter := &storage.AssessmentFilter{Email: input.Email, Limit: input.Limit}
	if input.From != "" {
		from, err := models.ParseDate(input.From)
		if err != nil {
			return nil, nil, err
		}
		filter.From = &from
	}
	if input.To != "" {
		to, err := models.ParseDate(input.To)
		if err != nil {
			return nil, nil, err
		}
		filter.To = &to
	}

	assessments, err := s.repo.ListAssessments(filter)
	if err != nil {
		return nil, nil, toolError("list_assessments", err)
	}
	return nil, listAssessmentsOutput{Assessments: assessments, Count: len(assessments)}, nil
}

func (s *Server) handleDeleteAssessment(ctx context.Context, req *mcp.CallToolRequest, input assessmentKeyInput) (*mcp.CallToolResult, simpleOutput, error) {
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	if err := s.repo.DeleteAssessment(input.Email, date); err != nil {
		return nil, simpleOutput{}, toolError("delete_assessment", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted assessment for %s on %s", models.NormalizeEmail(input.Email), input.Date),
	}, nil
}

func (s *Server) handleAddCondition(ctx context.Context, req *mcp.CallToolRequest, input addConditionInput) (*mcp.CallToolResult, conditionOutput, error) {
	severity, err := parseSeverity(input.Severity)
	if err != nil {
		return nil, conditionOutput{}, err
	}

	c := models.NewCondition(input.Email, strings.TrimSpace(input.Name), severity).WithNotes(input.Notes)
	if err := s.repo.CreateCondition(c); err != nil {
		return nil, conditionOutput{}, toolError("add_condition", err)
	}

	return nil, conditionOutput{
		ID:       c.ID.String()[:8],
		Email:    c.Email,
		Name:     c.Name,
		Severity: string(c.Severity),
		Message:  fmt.Sprintf("Added condition %s for %s (ID: %s)", c.Name, c.Email, c.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListConditions(ctx context.Context, req *mcp.CallToolRequest, input listConditionsInput) (*mcp.CallToolResult, any, error) {
	severity, err := parseSeverity(input.Severity)
	if err != nil {
		return nil, nil, err
	}

	conditions, err := s.repo.ListConditions(&storage.ConditionFilter{
		Email:    input.Email,
		Query:    input.Query,
		Severity: severity,
	})
	if err != nil {
		return nil, nil, toolError("list_conditions", err)
	}
	return nil, listConditionsOutput{Conditions: conditions, Count: len(conditions)}, nil
}

func (s *Server) handleDeleteCondition(ctx context.Context, req *mcp.CallToolRequest, input conditionKeyInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteCondition(input.Email, input.Name); err != nil {
		return nil, simpleOutput{}, toolError("delete_condition", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted condition %s for %s", input.Name, models.NormalizeEmail(input.Email)),
	}, nil
}

func (s *Server) handleGetDashboard(ctx context.Context, req *mcp.CallToolRequest, input dashboardInput) (*mcp.CallToolResult, any, error) {
	d, err := report.Build(s.repo, s.reportOpts...)
	if err != nil {
		return nil, nil, toolError("get_dashboard", err)
	}
	return nil, d, nil
}

// parseGender accepts any casing of a known gender; empty means unspecified.
func parseGender(s string) (models.Gender, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	g, ok := models.ParseGender(s)
	if !ok {
		return "", fmt.Errorf("unknown gender %q (use Male, Female, Other, or Prefer not to say)", s)
	}
	return g, nil
}

// parseSeverity accepts any casing of a known severity; empty means unspecified.
func parseSeverity(s string) (models.Severity, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	sev, ok := models.ParseSeverity(s)
	if !ok {
		return "", fmt.Errorf("unknown severity %q (use Mild, Moderate, or Severe)", s)
	}
	return sev, nil
}

// toolError logs a failed repository call and returns it to the client.
func toolError(tool string, err error) error {
	logging.WithComponent("mcp").WithField("tool", tool).WithError(err).Warn("tool failed")
	return err
}
