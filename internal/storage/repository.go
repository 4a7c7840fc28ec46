// ABOUTME: Repository interface for fitness centre record storage.
// ABOUTME: Defines the schema, member, assessment, and condition contract all backends share.
package storage

import (
	"time"

	"github.com/harperreed/fitcentre/internal/models"
)

// Collection names understood by EnsureSchema and Exists.
const (
	CollectionMembers     = "members"
	CollectionAssessments = "assessments"
	CollectionConditions  = "conditions"
)

// AllCollections lists the collections in creation order.
var AllCollections = []string{CollectionMembers, CollectionAssessments, CollectionConditions}

// Repository defines the storage interface for fitness centre data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Schema operations
	EnsureSchema() error
	Exists(collection string) (bool, error)

	// Member operations
	CreateMember(m *models.Member) error
	GetMember(email string) (*models.Member, error)
	ListMembers(filter *MemberFilter) ([]*models.Member, error)
	UpdateMember(m *models.Member) error
	DeleteMember(email string) error

	// Assessment operations
	CreateAssessment(a *models.Assessment) error
	GetAssessment(email string, date time.Time) (*models.Assessment, error)
	ListAssessments(filter *AssessmentFilter) ([]*models.Assessment, error)
	UpdateAssessment(a *models.Assessment) error
	DeleteAssessment(email string, date time.Time) error

	// Condition operations
	CreateCondition(c *models.Condition) error
	GetCondition(email, name string) (*models.Condition, error)
	ListConditions(filter *ConditionFilter) ([]*models.Condition, error)
	UpdateCondition(c *models.Condition) error
	DeleteCondition(email, name string) error

	// Lifecycle
	Close() error
}

// MemberFilter narrows ListMembers. Zero fields match everything.
type MemberFilter struct {
	// Query is a case-insensitive substring of email, first name, or last name.
	Query  string
	Gender models.Gender
}

// AssessmentFilter narrows ListAssessments. From and To are inclusive.
type AssessmentFilter struct {
	// Email is a case-insensitive substring of the member email.
	Email string
	From  *time.Time
	To    *time.Time
	Limit int
}

// ConditionFilter narrows ListConditions.
type ConditionFilter struct {
	// Email is a case-insensitive substring of the member email.
	Email string
	// Query is a case-insensitive substring of the condition name or notes.
	Query    string
	Severity models.Severity
}
