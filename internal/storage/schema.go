// ABOUTME: SQL schema definition and idempotent initialization.
// ABOUTME: Defines members, assessments, and conditions tables keyed by natural keys.
package storage

import (
	"fmt"
	"strings"
)

// schemaStatements returns the DDL for the active dialect, one statement each.
// No foreign keys: the member cascade runs in application transactions.
func (d *DB) schemaStatements() []string {
	realType := d.dialect.realType
	return []string{
		`CREATE TABLE IF NOT EXISTS members (
			email TEXT PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			gender TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS assessments (
			email TEXT NOT NULL,
			assessment_date TEXT NOT NULL,
			id TEXT NOT NULL UNIQUE,
			height %[1]s,
			bmi %[1]s,
			blood_pressure %[1]s,
			heart_rate %[1]s,
			weight %[1]s,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (email, assessment_date)
		)`, realType),
		`CREATE TABLE IF NOT EXISTS conditions (
			email TEXT NOT NULL,
			condition_name TEXT NOT NULL,
			id TEXT NOT NULL UNIQUE,
			severity TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (email, condition_name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_members_name ON members(last_name, first_name)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_date ON assessments(assessment_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_conditions_created ON conditions(created_at)`,
	}
}

// EnsureSchema creates the three collections if they are absent.
// Running it against an initialized database is a no-op.
func (d *DB) EnsureSchema() error {
	for _, stmt := range d.schemaStatements() {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: apply schema: %v", ErrStorageUnavailable, err)
		}
	}
	return nil
}

// Exists reports whether the named collection has a table.
func (d *DB) Exists(collection string) (bool, error) {
	if !isCollection(collection) {
		return false, nil
	}
	var count int
	if err := d.queryRow(d.db, d.dialect.tableExists, collection).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: check table %s: %v", ErrStorageUnavailable, collection, err)
	}
	return count > 0, nil
}

func isCollection(name string) bool {
	for _, c := range AllCollections {
		if c == name {
			return true
		}
	}
	return false
}

// whereClause accumulates AND-joined conditions and their arguments.
type whereClause struct {
	parts []string
	args  []any
}

func (w *whereClause) add(cond string, args ...any) {
	w.parts = append(w.parts, cond)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	if len(w.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.parts, " AND ")
}

// contains adds a case-insensitive substring match of needle against any of cols.
func (w *whereClause) contains(d dialect, needle string, cols ...string) {
	cond, args := d.contains(needle, cols...)
	w.add(cond, args...)
}
