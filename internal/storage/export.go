// ABOUTME: Export and import functionality for fitness centre records.
// ABOUTME: Supports JSON, YAML (grouped per member), and Markdown export formats.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/fitcentre/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for fitness centre data.
type ExportData struct {
	Version     string               `json:"version" yaml:"version"`
	ExportedAt  time.Time            `json:"exported_at" yaml:"exported_at"`
	Tool        string               `json:"tool" yaml:"tool"`
	Members     []*models.Member     `json:"members" yaml:"members"`
	Assessments []*models.Assessment `json:"assessments" yaml:"assessments"`
	Conditions  []*models.Condition  `json:"conditions" yaml:"conditions"`
}

// snapshot reads every record of r for export.
func snapshot(r Repository) (*ExportData, error) {
	members, err := r.ListMembers(nil)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	assessments, err := r.ListAssessments(nil)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	conditions, err := r.ListConditions(nil)
	if err != nil {
		return nil, fmt.Errorf("list conditions: %w", err)
	}

	return &ExportData{
		Version:     "1.0",
		ExportedAt:  time.Now(),
		Tool:        "fitcentre",
		Members:     members,
		Assessments: assessments,
		Conditions:  conditions,
	}, nil
}

// importData creates members before the records that reference them.
func importData(r Repository, data *ExportData) error {
	for _, m := range data.Members {
		if err := r.CreateMember(m); err != nil {
			return fmt.Errorf("import member: %w", err)
		}
	}
	for _, a := range data.Assessments {
		if err := r.CreateAssessment(a); err != nil {
			return fmt.Errorf("import assessment: %w", err)
		}
	}
	for _, c := range data.Conditions {
		if err := r.CreateCondition(c); err != nil {
			return fmt.Errorf("import condition: %w", err)
		}
	}
	return nil
}

// ExportJSON exports all records as indented JSON.
func ExportJSON(r Repository) ([]byte, error) {
	data, err := snapshot(r)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports records from JSON bytes produced by ExportJSON.
func ImportJSON(r Repository, raw []byte) (*ExportData, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if err := importData(r, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ExportYAML exports all records as YAML with assessments and conditions nested under their member.
func ExportYAML(r Repository) ([]byte, error) {
	data, err := snapshot(r)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string       `yaml:"version"`
		ExportedAt string       `yaml:"exported_at"`
		Tool       string       `yaml:"tool"`
		Members    []yamlMember `yaml:"members"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Members:    make([]yamlMember, 0, len(data.Members)),
	}

	byEmail := make(map[string]int, len(data.Members))
	for i, m := range data.Members {
		byEmail[m.Email] = i
		yamlData.Members = append(yamlData.Members, yamlMember{
			ID:        m.ID.String()[:8],
			Email:     m.Email,
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Gender:    string(m.Gender),
		})
	}

	for _, a := range data.Assessments {
		i, ok := byEmail[a.Email]
		if !ok {
			continue
		}
		yamlData.Members[i].Assessments = append(yamlData.Members[i].Assessments, yamlAssessment{
			Date:          a.DateString(),
			Height:        a.Height,
			BMI:           a.BMI,
			BloodPressure: a.BloodPressure,
			HeartRate:     a.HeartRate,
			Weight:        a.Weight,
		})
	}

	for _, c := range data.Conditions {
		i, ok := byEmail[c.Email]
		if !ok {
			continue
		}
		yamlData.Members[i].Conditions = append(yamlData.Members[i].Conditions, yamlCondition{
			Name:     c.Name,
			Severity: string(c.Severity),
			Notes:    c.Notes,
		})
	}

	return yaml.Marshal(yamlData)
}

type yamlMember struct {
	ID          string           `yaml:"id"`
	Email       string           `yaml:"email"`
	FirstName   string           `yaml:"first_name,omitempty"`
	LastName    string           `yaml:"last_name,omitempty"`
	Gender      string           `yaml:"gender,omitempty"`
	Assessments []yamlAssessment `yaml:"assessments,omitempty"`
	Conditions  []yamlCondition  `yaml:"conditions,omitempty"`
}

type yamlAssessment struct {
	Date          string   `yaml:"date"`
	Height        *float64 `yaml:"height,omitempty"`
	BMI           *float64 `yaml:"bmi,omitempty"`
	BloodPressure *float64 `yaml:"blood_pressure,omitempty"`
	HeartRate     *float64 `yaml:"heart_rate,omitempty"`
	Weight        *float64 `yaml:"weight,omitempty"`
}

type yamlCondition struct {
	Name     string `yaml:"name"`
	Severity string `yaml:"severity,omitempty"`
	Notes    string `yaml:"notes,omitempty"`
}

// ExportMarkdown exports records as Markdown tables, one per collection.
// When since is set, assessments before that date and conditions recorded before it are left out.
func ExportMarkdown(r Repository, since *time.Time) (string, error) {
	data, err := snapshot(r)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Fitness Centre Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	sb.WriteString("## Members\n\n")
	sb.WriteString("| Email | Name | Gender |\n")
	sb.WriteString("|-------|------|--------|\n")
	for _, m := range data.Members {
		gender := string(m.Gender)
		if gender == "" {
			gender = models.GenderUnknown
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", m.Email, m.FullName(), gender))
	}
	sb.WriteString("\n")

	sb.WriteString("## Assessments\n\n")
	sb.WriteString("| Date | Email | Height | BMI | Blood Pressure | Heart Rate | Weight |\n")
	sb.WriteString("|------|-------|--------|-----|----------------|------------|--------|\n")
	for _, a := range data.Assessments {
		if since != nil && a.Date.Before(models.DateOnly(*since)) {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
			a.DateString(), a.Email,
			formatMeasurement(a.Height), formatMeasurement(a.BMI),
			formatMeasurement(a.BloodPressure), formatMeasurement(a.HeartRate),
			formatMeasurement(a.Weight)))
	}
	sb.WriteString("\n")

	sb.WriteString("## Conditions\n\n")
	sb.WriteString("| Email | Condition | Severity | Notes |\n")
	sb.WriteString("|-------|-----------|----------|-------|\n")
	for _, c := range data.Conditions {
		if since != nil && c.CreatedAt.Before(*since) {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", c.Email, c.Name, c.Severity, c.Notes))
	}

	return sb.String(), nil
}

func formatMeasurement(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}
