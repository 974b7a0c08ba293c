package ddl

import (
	"fmt"
	"strings"

	"wrangler/internal/domain"
)

// CreateDataTable returns the CREATE TABLE statement for a physical data
// table: the generated row_uid primary key followed by the declared columns.
func CreateDataTable(table string, schema domain.ColumnSchema) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if len(schema) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}

	colDefs := []string{QuoteIdentifier(domain.RowUIDColumn) + " TEXT PRIMARY KEY"}
	for _, c := range schema {
		if c.Name == domain.RowUIDColumn {
			// The row identifier is always generated, never declared.
			continue
		}
		if err := ValidateIdentifier(c.Name); err != nil {
			return "", fmt.Errorf("invalid column name %q: %w", c.Name, err)
		}
		if err := ValidateColumnType(c.Type); err != nil {
			return "", fmt.Errorf("invalid column type for %q: %w", c.Name, err)
		}
		colDefs = append(colDefs, fmt.Sprintf("%s %s", QuoteIdentifier(c.Name), strings.ToUpper(c.Type)))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdentifier(table), strings.Join(colDefs, ", ")), nil
}

// DropTable returns a DROP TABLE IF EXISTS statement.
func DropTable(table string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return "DROP TABLE IF EXISTS " + QuoteIdentifier(table), nil
}

// AddColumn returns an ALTER TABLE ... ADD COLUMN statement. defaultLiteral,
// when non-empty, is attached as a DEFAULT clause (quoted as a SQL string
// literal).
func AddColumn(table, column, columnType, defaultLiteral string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if err := ValidateIdentifier(column); err != nil {
		return "", fmt.Errorf("invalid column name: %w", err)
	}
	if err := ValidateColumnType(columnType); err != nil {
		return "", fmt.Errorf("invalid column type for %q: %w", column, err)
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		QuoteIdentifier(table), QuoteIdentifier(column), strings.ToUpper(columnType))
	if defaultLiteral != "" {
		stmt += " DEFAULT " + QuoteLiteral(defaultLiteral)
	}
	return stmt, nil
}

// RenameColumn returns an ALTER TABLE ... RENAME COLUMN statement.
// Requires SQLite 3.25+.
func RenameColumn(table, from, to string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if err := ValidateIdentifier(from); err != nil {
		return "", fmt.Errorf("invalid column name: %w", err)
	}
	if err := ValidateIdentifier(to); err != nil {
		return "", fmt.Errorf("invalid column name: %w", err)
	}
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		QuoteIdentifier(table), QuoteIdentifier(from), QuoteIdentifier(to)), nil
}

// IndexName derives the deterministic index name for an index on
// table(column), suffixed _not_null for filtered indexes.
func IndexName(table, column string, notNullOnly bool) string {
	name := "idx_" + SanitizeName(table) + "_" + SanitizeName(column)
	if notNullOnly {
		name += "_not_null"
	}
	return name
}

// CreateIndex returns a CREATE INDEX IF NOT EXISTS statement on
// table(column). With notNullOnly it becomes a partial index restricted to
// non-NULL values.
func CreateIndex(table, column string, notNullOnly bool) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if err := ValidateIdentifier(column); err != nil {
		return "", fmt.Errorf("invalid column name: %w", err)
	}
	stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		QuoteIdentifier(IndexName(table, column, notNullOnly)),
		QuoteIdentifier(table), QuoteIdentifier(column))
	if notNullOnly {
		stmt += fmt.Sprintf(" WHERE %s IS NOT NULL", QuoteIdentifier(column))
	}
	return stmt, nil
}

// CreateUniqueIndex returns a CREATE UNIQUE INDEX IF NOT EXISTS statement.
func CreateUniqueIndex(table, column string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if err := ValidateIdentifier(column); err != nil {
		return "", fmt.Errorf("invalid column name: %w", err)
	}
	return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
		QuoteIdentifier("uidx_"+SanitizeName(table)+"_"+SanitizeName(column)),
		QuoteIdentifier(table), QuoteIdentifier(column)), nil
}

// InsertInto returns a parameterized INSERT statement for the given columns:
// INSERT INTO "t" ("a", "b") VALUES (?, ?).
func InsertInto(table string, columns []string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		if err := ValidateIdentifier(c); err != nil {
			return "", fmt.Errorf("invalid column name %q: %w", c, err)
		}
		quoted[i] = QuoteIdentifier(c)
		params[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(params, ", ")), nil
}

// CountRows returns a SELECT COUNT(*) statement for the table.
func CountRows(table string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return "SELECT COUNT(*) FROM " + QuoteIdentifier(table), nil
}
