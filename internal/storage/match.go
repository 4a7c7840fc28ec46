// ABOUTME: Unicode-aware case folding for substring filters.
// ABOUTME: The same fold backs the SQLite fitcentre_fold function used by SQL filters.
package storage

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// fold returns s in NFC form with Unicode case folding applied.
// cases.Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// containsFold reports whether needle occurs in any of the haystacks,
// ignoring case. An empty needle matches everything.
func containsFold(needle string, haystacks ...string) bool {
	if needle == "" {
		return true
	}
	n := fold(needle)
	for _, h := range haystacks {
		if strings.Contains(fold(h), n) {
			return true
		}
	}
	return false
}
