// ABOUTME: Data migration between fitcentre storage backends.
// ABOUTME: Copies members, then assessments and conditions, from source to destination.

package storage

import (
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated records.
type MigrateSummary struct {
	Members     int
	Assessments int
	Conditions  int
}

// MigrateData copies all records from src to dst storage.
// Members go first so the referential checks in dst pass. The destination
// should be empty before calling this function.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	members, err := src.ListMembers(nil)
	if err != nil {
		return nil, fmt.Errorf("list source members: %w", err)
	}
	for _, m := range members {
		if err := dst.CreateMember(m); err != nil {
			return nil, fmt.Errorf("create member %s: %w", m.Email, err)
		}
		summary.Members++
	}

	assessments, err := src.ListAssessments(nil)
	if err != nil {
		return nil, fmt.Errorf("list source assessments: %w", err)
	}
	for _, a := range assessments {
		if err := dst.CreateAssessment(a); err != nil {
			return nil, fmt.Errorf("create assessment %s on %s: %w", a.Email, a.DateString(), err)
		}
		summary.Assessments++
	}

	conditions, err := src.ListConditions(nil)
	if err != nil {
		return nil, fmt.Errorf("list source conditions: %w", err)
	}
	for _, c := range conditions {
		if err := dst.CreateCondition(c); err != nil {
			return nil, fmt.Errorf("create condition %s for %s: %w", c.Name, c.Email, err)
		}
		summary.Conditions++
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
