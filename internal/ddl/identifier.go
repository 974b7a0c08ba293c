// Package ddl builds SQLite DDL/DML statements for runtime-declared tables.
// All table and column name interpolation in the codebase goes through the
// quoting helpers here.
package ddl

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierRe allows alphanumeric + underscores, starting with a letter or underscore.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// maxIdentifierLen is the maximum length allowed for a SQL identifier.
const maxIdentifierLen = 255

// columnTypes are the declared types accepted for runtime-declared columns.
// They map directly onto SQLite storage classes.
var columnTypes = map[string]bool{
	"TEXT":    true,
	"INTEGER": true,
	"REAL":    true,
	"BLOB":    true,
}

// ValidateIdentifier checks that name is a safe SQL identifier:
//   - Non-empty
//   - At most 255 characters
//   - Matches [a-zA-Z_][a-zA-Z0-9_]*
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("name must be at most %d characters", maxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("name must match [a-zA-Z_][a-zA-Z0-9_]*")
	}
	return nil
}

// ValidateColumnType checks that typeName is one of the declared column
// types (TEXT, INTEGER, REAL, BLOB). Case-insensitive.
func ValidateColumnType(typeName string) error {
	if typeName == "" {
		return fmt.Errorf("column type is required")
	}
	if !columnTypes[strings.ToUpper(typeName)] {
		return fmt.Errorf("column type %q is not a recognized type", typeName)
	}
	return nil
}

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double-quote characters by doubling them (standard SQL).
// Quoting is unconditional; callers validate separately.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral wraps a string value in single quotes, escaping any
// embedded single-quote characters by doubling them (standard SQL).
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

var (
	spacesRe  = regexp.MustCompile(`[-\s]+`)
	invalidRe = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// SanitizeName converts an arbitrary user-supplied name into a safe
// lowercase identifier fragment for use inside generated table names.
func SanitizeName(name string) string {
	s := spacesRe.ReplaceAllString(name, "_")
	s = invalidRe.ReplaceAllString(s, "")
	if s != "" && s[0] != '_' && (s[0] < 'a' || s[0] > 'z') && (s[0] < 'A' || s[0] > 'Z') {
		s = "_" + s
	}
	return strings.ToLower(s)
}
