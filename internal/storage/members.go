// ABOUTME: Member CRUD operations for SQL storage.
// ABOUTME: Implements Repository member methods including the atomic cascade delete.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/fitcentre/internal/logging"
	"github.com/harperreed/fitcentre/internal/models"
	"github.com/sirupsen/logrus"
)

const memberColumns = `id, email, first_name, last_name, gender, created_at, updated_at`

// CreateMember stores a new member. The email must not already be registered.
func (d *DB) CreateMember(m *models.Member) error {
	m.Email = models.NormalizeEmail(m.Email)
	if err := m.Validate(); err != nil {
		return fmt.Errorf("create member: %w: %v", ErrValidation, err)
	}

	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.exec(d.db, query,
		m.ID.String(),
		m.Email,
		m.FirstName,
		m.LastName,
		string(m.Gender),
		formatTimestamp(m.CreatedAt),
		formatTimestamp(m.UpdatedAt),
	)
	if err != nil {
		if d.dialect.isUniqueViolation(err) {
			return fmt.Errorf("create member: %w: %s", ErrConstraint, m.Email)
		}
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

// GetMember retrieves a member by email.
func (d *DB) GetMember(email string) (*models.Member, error) {
	email = models.NormalizeEmail(email)
	query := `SELECT ` + memberColumns + ` FROM members WHERE email = ?`

	m, err := scanMember(d.queryRow(d.db, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get member: %w: %s", ErrNotFound, email)
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// ListMembers retrieves members ordered by last name, first name, then email.
func (d *DB) ListMembers(filter *MemberFilter) ([]*models.Member, error) {
	var where whereClause
	if filter != nil {
		if filter.Query != "" {
			where.contains(d.dialect, filter.Query, "email", "first_name", "last_name")
		}
		if filter.Gender != "" {
			where.add(`gender = ?`, string(filter.Gender))
		}
	}

	query := `SELECT ` + memberColumns + ` FROM members` + where.String() +
		` ORDER BY last_name, first_name, email`

	rows, err := d.query(d.db, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []*models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpdateMember replaces the mutable fields of an existing member.
func (d *DB) UpdateMember(m *models.Member) error {
	m.Email = models.NormalizeEmail(m.Email)
	if err := m.Validate(); err != nil {
		return fmt.Errorf("update member: %w: %v", ErrValidation, err)
	}
	m.UpdatedAt = now()

	query := `
		UPDATE members SET first_name = ?, last_name = ?, gender = ?, updated_at = ?
		WHERE email = ?
	`
	result, err := d.exec(d.db, query,
		m.FirstName, m.LastName, string(m.Gender), formatTimestamp(m.UpdatedAt), m.Email)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	return requireAffected(result, "update member", m.Email)
}

// DeleteMember removes a member together with its assessments and conditions.
// The three deletes share one transaction, so a failure leaves nothing half-removed.
func (d *DB) DeleteMember(email string) error {
	email = models.NormalizeEmail(email)
	var assessments, conditions int64

	err := d.inTx(func(tx *sql.Tx) error {
		res, err := d.exec(tx, `DELETE FROM assessments WHERE email = ?`, email)
		if err != nil {
			return fmt.Errorf("delete member assessments: %w", err)
		}
		assessments, _ = res.RowsAffected()

		res, err = d.exec(tx, `DELETE FROM conditions WHERE email = ?`, email)
		if err != nil {
			return fmt.Errorf("delete member conditions: %w", err)
		}
		conditions, _ = res.RowsAffected()

		res, err = d.exec(tx, `DELETE FROM members WHERE email = ?`, email)
		if err != nil {
			return fmt.Errorf("delete member: %w", err)
		}
		return requireAffected(res, "delete member", email)
	})
	if err != nil {
		return err
	}

	logging.WithComponent("storage").WithFields(logrus.Fields{
		"email":       email,
		"assessments": assessments,
		"conditions":  conditions,
	}).Info("deleted member")
	return nil
}

// memberExists checks the referential precondition for assessments and conditions.
func (d *DB) memberExists(q querier, email string) (bool, error) {
	var count int
	if err := d.queryRow(q, `SELECT COUNT(*) FROM members WHERE email = ?`, email).Scan(&count); err != nil {
		return false, fmt.Errorf("check member: %w", err)
	}
	return count > 0, nil
}

// requireAffected turns a zero-row write into ErrNotFound.
func requireAffected(result sql.Result, op, key string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w: %s", op, ErrNotFound, key)
	}
	return nil
}

// scanMember scans a single row into a Member struct.
func scanMember(row rowScanner) (*models.Member, error) {
	var m models.Member
	var idStr, gender, createdAt, updatedAt string

	err := row.Scan(&idStr, &m.Email, &m.FirstName, &m.LastName, &gender, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	m.ID, _ = uuid.Parse(idStr)
	m.Gender = models.Gender(gender)
	m.CreatedAt = parseTimestamp(createdAt)
	m.UpdatedAt = parseTimestamp(updatedAt)
	return &m, nil
}
