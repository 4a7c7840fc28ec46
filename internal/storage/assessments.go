// ABOUTME: Assessment CRUD operations for SQL storage.
// ABOUTME: Supports inclusive date-range filtering and enforces one assessment per member per date.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/fitcentre/internal/models"
)

const assessmentColumns = `id, email, assessment_date, height, bmi, blood_pressure, heart_rate, weight, created_at, updated_at`

// CreateAssessment stores a new assessment for an existing member.
func (d *DB) CreateAssessment(a *models.Assessment) error {
	a.Email = models.NormalizeEmail(a.Email)
	a.Date = models.DateOnly(a.Date)
	if err := a.Validate(); err != nil {
		return fmt.Errorf("create assessment: %w: %v", ErrValidation, err)
	}

	return d.inTx(func(tx *sql.Tx) error {
		ok, err := d.memberExists(tx, a.Email)
		if err != nil {
			return fmt.Errorf("create assessment: %w", err)
		}
		if !ok {
			return fmt.Errorf("create assessment: member %w: %s", ErrNotFound, a.Email)
		}

		query := `
			INSERT INTO assessments (` + assessmentColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = d.exec(tx, query,
			a.ID.String(),
			a.Email,
			a.DateString(),
			a.Height,
			a.BMI,
			a.BloodPressure,
			a.HeartRate,
			a.Weight,
			formatTimestamp(a.CreatedAt),
			formatTimestamp(a.UpdatedAt),
		)
		if err != nil {
			if d.dialect.isUniqueViolation(err) {
				return fmt.Errorf("create assessment: %w: %s on %s", ErrConstraint, a.Email, a.DateString())
			}
			return fmt.Errorf("create assessment: %w", err)
		}
		return nil
	})
}

// GetAssessment retrieves the assessment for a member on a date.
func (d *DB) GetAssessment(email string, date time.Time) (*models.Assessment, error) {
	email = models.NormalizeEmail(email)
	day := date.Format(models.DateLayout)
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE email = ? AND assessment_date = ?`

	a, err := scanAssessment(d.queryRow(d.db, query, email, day))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get assessment: %w: %s on %s", ErrNotFound, email, day)
		}
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return a, nil
}

// ListAssessments retrieves assessments, most recent date first.
func (d *DB) ListAssessments(filter *AssessmentFilter) ([]*models.Assessment, error) {
	var where whereClause
	limit := 0
	if filter != nil {
		if filter.Email != "" {
			where.contains(d.dialect, filter.Email, "email")
		}
		if filter.From != nil {
			where.add(`assessment_date >= ?`, models.DateOnly(*filter.From).Format(models.DateLayout))
		}
		if filter.To != nil {
			where.add(`assessment_date <= ?`, models.DateOnly(*filter.To).Format(models.DateLayout))
		}
		limit = filter.Limit
	}

	query := `SELECT ` + assessmentColumns + ` FROM assessments` + where.String() +
		` ORDER BY assessment_date DESC, email`
	args := where.args
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.query(d.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	assessments := []*models.Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("list assessments: %w", err)
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}

// UpdateAssessment replaces every measurement of an existing assessment.
// Measurements left nil are cleared.
func (d *DB) UpdateAssessment(a *models.Assessment) error {
	a.Email = models.NormalizeEmail(a.Email)
	a.Date = models.DateOnly(a.Date)
	if err := a.Validate(); err != nil {
		return fmt.Errorf("update assessment: %w: %v", ErrValidation, err)
	}
	a.UpdatedAt = now()

	query := `
		UPDATE assessments
		SET height = ?, bmi = ?, blood_pressure = ?, heart_rate = ?, weight = ?, updated_at = ?
		WHERE email = ? AND assessment_date = ?
	`
	result, err := d.exec(d.db, query,
		a.Height, a.BMI, a.BloodPressure, a.HeartRate, a.Weight,
		formatTimestamp(a.UpdatedAt), a.Email, a.DateString())
	if err != nil {
		return fmt.Errorf("update assessment: %w", err)
	}
	return requireAffected(result, "update assessment", a.Email+" on "+a.DateString())
}

// DeleteAssessment removes the assessment for a member on a date.
func (d *DB) DeleteAssessment(email string, date time.Time) error {
	email = models.NormalizeEmail(email)
	day := date.Format(models.DateLayout)

	result, err := d.exec(d.db, `DELETE FROM assessments WHERE email = ? AND assessment_date = ?`, email, day)
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	return requireAffected(result, "delete assessment", email+" on "+day)
}

// scanAssessment scans a single row into an Assessment struct.
func scanAssessment(row rowScanner) (*models.Assessment, error) {
	var a models.Assessment
	var idStr, date, createdAt, updatedAt string
	var height, bmi, bp, hr, weight sql.NullFloat64

	err := row.Scan(&idStr, &a.Email, &date, &height, &bmi, &bp, &hr, &weight, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	a.ID, _ = uuid.Parse(idStr)
	a.Date, err = models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("scan assessment: %w", err)
	}
	a.Height = nullFloat(height)
	a.BMI = nullFloat(bmi)
	a.BloodPressure = nullFloat(bp)
	a.HeartRate = nullFloat(hr)
	a.Weight = nullFloat(weight)
	a.CreatedAt = parseTimestamp(createdAt)
	a.UpdatedAt = parseTimestamp(updatedAt)
	return &a, nil
}
