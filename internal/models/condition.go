// ABOUTME: Condition model and Severity enum for member health conditions.
// ABOUTME: Conditions are keyed by member email and condition name.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity grades a health condition.
type Severity string

const (
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
)

// AllSeverities lists the valid severities from least to most severe.
var AllSeverities = []Severity{SeverityMild, SeverityModerate, SeveritySevere}

// ParseSeverity maps user input onto the canonical Severity value.
func ParseSeverity(s string) (Severity, bool) {
	s = strings.TrimSpace(s)
	for _, sev := range AllSeverities {
		if strings.EqualFold(string(sev), s) {
			return sev, true
		}
	}
	return "", false
}

// IsValidSeverity checks if a string is one of the canonical severity values.
func IsValidSeverity(s string) bool {
	for _, sev := range AllSeverities {
		if string(sev) == s {
			return true
		}
	}
	return false
}

// Condition represents a health condition recorded against a member.
type Condition struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"condition_name"`
	Severity  Severity  `json:"severity,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCondition creates a new Condition with generated UUID and current timestamp.
func NewCondition(email, name string, severity Severity) *Condition {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &Condition{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		Name:      strings.TrimSpace(name),
		Severity:  severity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithNotes sets notes on the condition.
func (c *Condition) WithNotes(notes string) *Condition {
	c.Notes = notes
	return c
}

// Validate checks required fields and the severity value.
func (c *Condition) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("condition name is required")
	}
	if c.Severity != "" && !IsValidSeverity(string(c.Severity)) {
		return fmt.Errorf("unknown severity %q", c.Severity)
	}
	return nil
}
