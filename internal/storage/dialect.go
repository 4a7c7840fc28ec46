// ABOUTME: SQL dialect differences between SQLite and PostgreSQL.
// ABOUTME: Covers placeholder style, column types, table lookup, and unique violations.
package storage

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type dialect struct {
	name string
	// realType is the column type for optional measurements.
	realType string
	// tableExists counts tables with the given name.
	tableExists string
	// dollarParams rewrites ? placeholders to $1, $2, ...
	dollarParams bool
	// foldFunc is the SQL function applied to a column before a contains match.
	foldFunc string
	// foldArg prepares the search text the same way foldFunc prepares the column.
	foldArg func(string) string
}

// sqliteFoldFunc is registered on the modernc driver so SQLite filters fold
// case the same way the KV backends do. Built-in LOWER only folds ASCII.
const sqliteFoldFunc = "fitcentre_fold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteFoldFunc, 1, foldValue)
}

func foldValue(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return fold(v), nil
	case []byte:
		return fold(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", sqliteFoldFunc, v)
	}
}

var sqliteDialect = dialect{
	name:        "sqlite",
	realType:    "REAL",
	tableExists: "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
	foldFunc:    sqliteFoldFunc,
	foldArg:     fold,
}

var postgresDialect = dialect{
	name:         "postgres",
	realType:     "DOUBLE PRECISION",
	tableExists:  "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?",
	dollarParams: true,
	foldFunc:     "LOWER",
	foldArg:      strings.ToLower,
}

// rebind rewrites ? placeholders for dialects that number their parameters.
// Queries in this package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.dollarParams || !strings.Contains(query, "?") {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// contains builds a case-insensitive substring match of needle against any of
// the columns, with one LIKE argument per column.
func (d dialect) contains(needle string, cols ...string) (string, []any) {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	pattern := "%" + r.Replace(d.foldArg(needle)) + "%"
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		parts[i] = d.foldFunc + "(" + col + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	if len(parts) == 1 {
		return parts[0], args
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// isUniqueViolation reports whether err came from a primary key or unique index.
func (d dialect) isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
