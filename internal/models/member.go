// ABOUTME: Member model and Gender enum for the fitness centre registry.
// ABOUTME: Members are keyed by email; assessments and conditions hang off that key.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gender is stored as plain text. An empty value means "not recorded".
type Gender string

const (
	GenderMale           Gender = "Male"
	GenderFemale         Gender = "Female"
	GenderOther          Gender = "Other"
	GenderPreferNotToSay Gender = "Prefer not to say"
)

// GenderUnknown is the reporting bucket for members without a recorded gender.
const GenderUnknown = "Unknown"

// AllGenders lists the valid genders in display order.
var AllGenders = []Gender{GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay}

// IsValidGender checks if a string is one of the canonical gender values.
func IsValidGender(s string) bool {
	for _, g := range AllGenders {
		if string(g) == s {
			return true
		}
	}
	return false
}

// ParseGender maps user input onto the canonical Gender value, ignoring case.
func ParseGender(s string) (Gender, bool) {
	s = strings.TrimSpace(s)
	for _, g := range AllGenders {
		if strings.EqualFold(string(g), s) {
			return g, true
		}
	}
	return "", false
}

// Member represents a registered member of the centre.
type Member struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Gender    Gender    `json:"gender,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMember creates a new Member with generated UUID and current timestamp.
func NewMember(email, firstName, lastName string, gender Gender) *Member {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &Member{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Gender:    gender,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FullName joins first and last name, skipping empty parts.
func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// Validate checks required fields and enumerated values.
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Email) == "" {
		return errors.New("email is required")
	}
	if m.Gender != "" && !IsValidGender(string(m.Gender)) {
		return fmt.Errorf("unknown gender %q", m.Gender)
	}
	return nil
}

// NormalizeEmail trims whitespace and lowercases an email so it can serve as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
