// ABOUTME: Condition CRUD operations for SQL storage.
// ABOUTME: Enforces one row per member and condition name; lists in creation order.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/fitcentre/internal/models"
)

const conditionColumns = `id, email, condition_name, severity, notes, created_at, updated_at`

// CreateCondition stores a new condition for an existing member.
func (d *DB) CreateCondition(c *models.Condition) error {
	c.Email = models.NormalizeEmail(c.Email)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("create condition: %w: %v", ErrValidation, err)
	}

	return d.inTx(func(tx *sql.Tx) error {
		ok, err := d.memberExists(tx, c.Email)
		if err != nil {
			return fmt.Errorf("create condition: %w", err)
		}
		if !ok {
			return fmt.Errorf("create condition: member %w: %s", ErrNotFound, c.Email)
		}

		query := `
			INSERT INTO conditions (` + conditionColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		_, err = d.exec(tx, query,
			c.ID.String(),
			c.Email,
			c.Name,
			string(c.Severity),
			c.Notes,
			formatTimestamp(c.CreatedAt),
			formatTimestamp(c.UpdatedAt),
		)
		if err != nil {
			if d.dialect.isUniqueViolation(err) {
				return fmt.Errorf("create condition: %w: %s for %s", ErrConstraint, c.Name, c.Email)
			}
			return fmt.Errorf("create condition: %w", err)
		}
		return nil
	})
}

// GetCondition retrieves a member's condition by name.
func (d *DB) GetCondition(email, name string) (*models.Condition, error) {
	email = models.NormalizeEmail(email)
	query := `SELECT ` + conditionColumns + ` FROM conditions WHERE email = ? AND condition_name = ?`

	c, err := scanCondition(d.queryRow(d.db, query, email, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get condition: %w: %s for %s", ErrNotFound, name, email)
		}
		return nil, fmt.Errorf("get condition: %w", err)
	}
	return c, nil
}

// ListConditions retrieves conditions in the order they were recorded.
func (d *DB) ListConditions(filter *ConditionFilter) ([]*models.Condition, error) {
	var where whereClause
	if filter != nil {
		if filter.Email != "" {
			where.contains(d.dialect, filter.Email, "email")
		}
		if filter.Query != "" {
			where.contains(d.dialect, filter.Query, "condition_name", "notes")
		}
		if filter.Severity != "" {
			where.add(`severity = ?`, string(filter.Severity))
		}
	}

	query := `SELECT ` + conditionColumns + ` FROM conditions` + where.String() +
		` ORDER BY created_at, email, condition_name`

	rows, err := d.query(d.db, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("list conditions: %w", err)
	}
	defer rows.Close()

	conditions := []*models.Condition{}
	for rows.Next() {
		c, err := scanCondition(rows)
		if err != nil {
			return nil, fmt.Errorf("list conditions: %w", err)
		}
		conditions = append(conditions, c)
	}
	return conditions, rows.Err()
}

// UpdateCondition replaces severity and notes of an existing condition.
func (d *DB) UpdateCondition(c *models.Condition) error {
	c.Email = models.NormalizeEmail(c.Email)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("update condition: %w: %v", ErrValidation, err)
	}
	c.UpdatedAt = now()

	query := `
		UPDATE conditions SET severity = ?, notes = ?, updated_at = ?
		WHERE email = ? AND condition_name = ?
	`
	result, err := d.exec(d.db, query,
		string(c.Severity), c.Notes, formatTimestamp(c.UpdatedAt), c.Email, c.Name)
	if err != nil {
		return fmt.Errorf("update condition: %w", err)
	}
	return requireAffected(result, "update condition", c.Name+" for "+c.Email)
}

// DeleteCondition removes a member's condition by name.
func (d *DB) DeleteCondition(email, name string) error {
	email = models.NormalizeEmail(email)

	result, err := d.exec(d.db, `DELETE FROM conditions WHERE email = ? AND condition_name = ?`, email, name)
	if err != nil {
		return fmt.Errorf("delete condition: %w", err)
	}
	return requireAffected(result, "delete condition", name+" for "+email)
}

// scanCondition scans a single row into a Condition struct.
func scanCondition(row rowScanner) (*models.Condition, error) {
	var c models.Condition
	var idStr, severity, createdAt, updatedAt string

	err := row.Scan(&idStr, &c.Email, &c.Name, &severity, &c.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.ID, _ = uuid.Parse(idStr)
	c.Severity = models.Severity(severity)
	c.CreatedAt = parseTimestamp(createdAt)
	c.UpdatedAt = parseTimestamp(updatedAt)
	return &c, nil
}
