// ABOUTME: Member, assessment, and condition operations for the KV backend.
// ABOUTME: Filters and sorts client-side to match the SQL backends' ordering.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/fitcentre/internal/logging"
	"github.com/harperreed/fitcentre/internal/models"
	"github.com/sirupsen/logrus"
)

// CreateMember stores a new member. The email must not already be registered.
func (s *KVStore) CreateMember(m *models.Member) error {
	m.Email = models.NormalizeEmail(m.Email)
	if err := m.Validate(); err != nil {
		return fmt.Errorf("create member: %w: %v", ErrValidation, err)
	}

	err := s.update("create member", func(txn *badger.Txn) error {
		key := memberKey(m.Email)
		exists, err := keyExists(txn, key)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrConstraint, m.Email)
		}
		return setJSON(txn, key, m)
	})
	return wrapKV("create member", err)
}

// GetMember retrieves a member by email.
func (s *KVStore) GetMember(email string) (*models.Member, error) {
	email = models.NormalizeEmail(email)
	var m models.Member
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, memberKey(email), &m)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("get member: %w: %s", ErrNotFound, email)
	}
	if err != nil {
		return nil, wrapKV("get member", err)
	}
	return &m, nil
}

// ListMembers retrieves members ordered by last name, first name, then email.
func (s *KVStore) ListMembers(filter *MemberFilter) ([]*models.Member, error) {
	members := []*models.Member{}
	err := s.db.View(func(txn *badger.Txn) error {
		return eachValue(txn, []byte(memberPrefix), func(val []byte) error {
			var m models.Member
			if err := json.Unmarshal(val, &m); err != nil {
				return err
			}
			if filter != nil {
				if !containsFold(filter.Query, m.Email, m.FirstName, m.LastName) {
					return nil
				}
				if filter.Gender != "" && m.Gender != filter.Gender {
					return nil
				}
			}
			members = append(members, &m)
			return nil
		})
	})
	if err != nil {
		return nil, wrapKV("list members", err)
	}

	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.Email < b.Email
	})
	return members, nil
}

// UpdateMember replaces the mutable fields of an existing member.
func (s *KVStore) UpdateMember(m *models.Member) error {
	m.Email = models.NormalizeEmail(m.Email)
	if err := m.Validate(); err != nil {
		return fmt.Errorf("update member: %w: %v", ErrValidation, err)
	}

	err := s.update("update member", func(txn *badger.Txn) error {
		var existing models.Member
		if err := getJSON(txn, memberKey(m.Email), &existing); err != nil {
			return err
		}
		existing.FirstName = m.FirstName
		existing.LastName = m.LastName
		existing.Gender = m.Gender
		existing.UpdatedAt = now()
		if err := setJSON(txn, memberKey(m.Email), &existing); err != nil {
			return err
		}
		*m = existing
		return nil
	})
	return wrapKVKey("update member", m.Email, err)
}

// DeleteMember removes a member together with its assessments and conditions
// in a single transaction.
func (s *KVStore) DeleteMember(email string) error {
	email = models.NormalizeEmail(email)
	var assessments, conditions int

	err := s.update("delete member", func(txn *badger.Txn) error {
		exists, err := keyExists(txn, memberKey(email))
		if err != nil {
			return err
		}
		if !exists {
			return badger.ErrKeyNotFound
		}
		if assessments, err = deletePrefix(txn, []byte(assessmentPrefix+email+keySep)); err != nil {
			return err
		}
		if conditions, err = deletePrefix(txn, []byte(conditionPrefix+email+keySep)); err != nil {
			return err
		}
		return txn.Delete(memberKey(email))
	})
	if err != nil {
		return wrapKVKey("delete member", email, err)
	}

	logging.WithComponent("storage").WithFields(logrus.Fields{
		"email":       email,
		"assessments": assessments,
		"conditions":  conditions,
	}).Info("deleted member")
	return nil
}

// CreateAssessment stores a new assessment for an existing member.
func (s *KVStore) CreateAssessment(a *models.Assessment) error {
	a.Email = models.NormalizeEmail(a.Email)
	a.Date = models.DateOnly(a.Date)
	if err := a.Validate(); err != nil {
		return fmt.Errorf("create assessment: %w: %v", ErrValidation, err)
	}

	err := s.update("create assessment", func(txn *badger.Txn) error {
		if err := requireMember(txn, a.Email); err != nil {
			return err
		}
		key := assessmentKey(a.Email, a.DateString())
		exists, err := keyExists(txn, key)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s on %s", ErrConstraint, a.Email, a.DateString())
		}
		return setJSON(txn, key, a)
	})
	return wrapKV("create assessment", err)
}

// GetAssessment retrieves the assessment for a member on a date.
func (s *KVStore) GetAssessment(email string, date time.Time) (*models.Assessment, error) {
	email = models.NormalizeEmail(email)
	day := date.Format(models.DateLayout)
	var a models.Assessment
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, assessmentKey(email, day), &a)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("get assessment: %w: %s on %s", ErrNotFound, email, day)
	}
	if err != nil {
		return nil, wrapKV("get assessment", err)
	}
	return &a, nil
}

// ListAssessments retrieves assessments, most recent date first.
func (s *KVStore) ListAssessments(filter *AssessmentFilter) ([]*models.Assessment, error) {
	var from, to string
	if filter != nil {
		if filter.From != nil {
			from = models.DateOnly(*filter.From).Format(models.DateLayout)
		}
		if filter.To != nil {
			to = models.DateOnly(*filter.To).Format(models.DateLayout)
		}
	}

	assessments := []*models.Assessment{}
	err := s.db.View(func(txn *badger.Txn) error {
		return eachValue(txn, []byte(assessmentPrefix), func(val []byte) error {
			var a models.Assessment
			if err := json.Unmarshal(val, &a); err != nil {
				return err
			}
			day := a.DateString()
			if filter != nil && !containsFold(filter.Email, a.Email) {
				return nil
			}
			if from != "" && day < from {
				return nil
			}
			if to != "" && day > to {
				return nil
			}
			assessments = append(assessments, &a)
			return nil
		})
	})
	if err != nil {
		return nil, wrapKV("list assessments", err)
	}

	sort.Slice(assessments, func(i, j int) bool {
		a, b := assessments[i], assessments[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Email < b.Email
	})
	if filter != nil && filter.Limit > 0 && len(assessments) > filter.Limit {
		assessments = assessments[:filter.Limit]
	}
	return assessments, nil
}

// UpdateAssessment replaces every measurement of an existing assessment.
func (s *KVStore) UpdateAssessment(a *models.Assessment) error {
	a.Email = models.NormalizeEmail(a.Email)
	a.Date = models.DateOnly(a.Date)
	if err := a.Validate(); err != nil {
		return fmt.Errorf("update assessment: %w: %v", ErrValidation, err)
	}

	key := assessmentKey(a.Email, a.DateString())
	err := s.update("update assessment", func(txn *badger.Txn) error {
		var existing models.Assessment
		if err := getJSON(txn, key, &existing); err != nil {
			return err
		}
		existing.Height = a.Height
		existing.BMI = a.BMI
		existing.BloodPressure = a.BloodPressure
		existing.HeartRate = a.HeartRate
		existing.Weight = a.Weight
		existing.UpdatedAt = now()
		if err := setJSON(txn, key, &existing); err != nil {
			return err
		}
		*a = existing
		return nil
	})
	return wrapKVKey("update assessment", a.Email+" on "+a.DateString(), err)
}

// DeleteAssessment removes the assessment for a member on a date.
func (s *KVStore) DeleteAssessment(email string, date time.Time) error {
	email = models.NormalizeEmail(email)
	day := date.Format(models.DateLayout)
	err := s.update("delete assessment", func(txn *badger.Txn) error {
		return deleteExisting(txn, assessmentKey(email, day))
	})
	return wrapKVKey("delete assessment", email+" on "+day, err)
}

// CreateCondition stores a new condition for an existing member.
func (s *KVStore) CreateCondition(c *models.Condition) error {
	c.Email = models.NormalizeEmail(c.Email)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("create condition: %w: %v", ErrValidation, err)
	}

	err := s.update("create condition", func(txn *badger.Txn) error {
		if err := requireMember(txn, c.Email); err != nil {
			return err
		}
		key := conditionKey(c.Email, c.Name)
		exists, err := keyExists(txn, key)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s for %s", ErrConstraint, c.Name, c.Email)
		}
		return setJSON(txn, key, c)
	})
	return wrapKV("create condition", err)
}

// GetCondition retrieves a member's condition by name.
func (s *KVStore) GetCondition(email, name string) (*models.Condition, error) {
	email = models.NormalizeEmail(email)
	var c models.Condition
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, conditionKey(email, name), &c)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("get condition: %w: %s for %s", ErrNotFound, name, email)
	}
	if err != nil {
		return nil, wrapKV("get condition", err)
	}
	return &c, nil
}

// ListConditions retrieves conditions in the order they were recorded.
func (s *KVStore) ListConditions(filter *ConditionFilter) ([]*models.Condition, error) {
	conditions := []*models.Condition{}
	err := s.db.View(func(txn *badger.Txn) error {
		return eachValue(txn, []byte(conditionPrefix), func(val []byte) error {
			var c models.Condition
			if err := json.Unmarshal(val, &c); err != nil {
				return err
			}
			if filter != nil {
				if !containsFold(filter.Email, c.Email) {
					return nil
				}
				if !containsFold(filter.Query, c.Name, c.Notes) {
					return nil
				}
				if filter.Severity != "" && c.Severity != filter.Severity {
					return nil
				}
			}
			conditions = append(conditions, &c)
			return nil
		})
	})
	if err != nil {
		return nil, wrapKV("list conditions", err)
	}

	sort.Slice(conditions, func(i, j int) bool {
		a, b := conditions[i], conditions[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.Email != b.Email {
			return a.Email < b.Email
		}
		return a.Name < b.Name
	})
	return conditions, nil
}

// UpdateCondition replaces severity and notes of an existing condition.
func (s *KVStore) UpdateCondition(c *models.Condition) error {
	c.Email = models.NormalizeEmail(c.Email)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("update condition: %w: %v", ErrValidation, err)
	}

	key := conditionKey(c.Email, c.Name)
	err := s.update("update condition", func(txn *badger.Txn) error {
		var existing models.Condition
		if err := getJSON(txn, key, &existing); err != nil {
			return err
		}
		existing.Severity = c.Severity
		existing.Notes = c.Notes
		existing.UpdatedAt = now()
		if err := setJSON(txn, key, &existing); err != nil {
			return err
		}
		*c = existing
		return nil
	})
	return wrapKVKey("update condition", c.Name+" for "+c.Email, err)
}

// DeleteCondition removes a member's condition by name.
func (s *KVStore) DeleteCondition(email, name string) error {
	email = models.NormalizeEmail(email)
	err := s.update("delete condition", func(txn *badger.Txn) error {
		return deleteExisting(txn, conditionKey(email, name))
	})
	return wrapKVKey("delete condition", name+" for "+email, err)
}

// requireMember enforces the referential precondition inside txn.
func requireMember(txn *badger.Txn, email string) error {
	exists, err := keyExists(txn, memberKey(email))
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("member %w: %s", ErrNotFound, email)
	}
	return nil
}

func deleteExisting(txn *badger.Txn, key []byte) error {
	exists, err := keyExists(txn, key)
	if err != nil {
		return err
	}
	if !exists {
		return badger.ErrKeyNotFound
	}
	return txn.Delete(key)
}

// wrapKV prefixes err with op. Read-only failures already carry it.
func wrapKV(op string, err error) error {
	if err == nil || errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// wrapKVKey is wrapKV with badger.ErrKeyNotFound mapped to ErrNotFound.
func wrapKVKey(op, key string, err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%s: %w: %s", op, ErrNotFound, key)
	}
	return wrapKV(op, err)
}
