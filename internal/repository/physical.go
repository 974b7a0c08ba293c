package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"wrangler/internal/ddl"
	"wrangler/internal/domain"
)

// metadataTables are the catalog's own tables. They are excluded from
// physical table reflection so that dataset_config and knowledge_table are
// never mistaken for family-prefixed data tables.
var metadataTables = map[string]bool{
	"dataset_config":   true,
	"upload_log":       true,
	"user_profile":     true,
	"enriched_dataset": true,
	"knowledge_table":  true,
	"goose_db_version": true,
}

// Insert batching bounds. maxInsertParams keeps multi-row INSERT statements
// under SQLite's bound-parameter limit regardless of column count.
const (
	insertChunkRows = 1000
	maxInsertParams = 800
)

// PhysicalRepo implements domain.PhysicalTables: DDL and reflection over the
// physical data tables sharing the catalog's SQLite file.
type PhysicalRepo struct {
	db *sql.DB
}

// NewPhysicalRepo creates a PhysicalRepo backed by the given connection.
func NewPhysicalRepo(db *sql.DB) *PhysicalRepo {
	return &PhysicalRepo{db: db}
}

// CreateTable creates a physical data table: the generated row_uid primary
// key followed by the declared columns.
func (r *PhysicalRepo) CreateTable(ctx context.Context, name string, schema domain.ColumnSchema) error {
	stmt, err := ddl.CreateDataTable(name, schema)
	if err != nil {
		return domain.ErrValidation("create table %q: %v", name, err)
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table %q: %w", name, err)
	}
	return nil
}

// DropTable drops the table if it exists.
func (r *PhysicalRepo) DropTable(ctx context.Context, name string) error {
	stmt, err := ddl.DropTable(name)
	if err != nil {
		return domain.ErrValidation("drop table %q: %v", name, err)
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("drop table %q: %w", name, err)
	}
	return nil
}

// AddColumn adds a nullable column to an existing table.
func (r *PhysicalRepo) AddColumn(ctx context.Context, table, column, columnType string) error {
	stmt, err := ddl.AddColumn(table, column, columnType, "")
	if err != nil {
		return domain.ErrValidation("add column %q.%q: %v", table, column, err)
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("add column %q.%q: %w", table, column, err)
	}
	return nil
}

// CreateIndex creates an index on table(column), filtered to non-NULL values
// when notNullOnly is set. Idempotent via IF NOT EXISTS.
func (r *PhysicalRepo) CreateIndex(ctx context.Context, table, column string, notNullOnly bool) error {
	stmt, err := ddl.CreateIndex(table, column, notNullOnly)
	if err != nil {
		return domain.ErrValidation("index %q(%q): %v", table, column, err)
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("index %q(%q): %w", table, column, err)
	}
	return nil
}

// CreateUniqueIndex creates a unique index on table(column).
func (r *PhysicalRepo) CreateUniqueIndex(ctx context.Context, table, column string) error {
	stmt, err := ddl.CreateUniqueIndex(table, column)
	if err != nil {
		return domain.ErrValidation("unique index %q(%q): %v", table, column, err)
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("unique index %q(%q): %w", table, column, err)
	}
	return nil
}

// TableNames returns all physical data table names, excluding catalog
// metadata tables and SQLite internals.
func (r *PhysicalRepo) TableNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("reflect table names: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if metadataTables[name] {
			continue
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ColumnNames returns the table's column names in declaration order.
func (r *PhysicalRepo) ColumnNames(ctx context.Context, table string) ([]string, error) {
	if err := ddl.ValidateIdentifier(table); err != nil {
		return nil, domain.ErrValidation("reflect columns of %q: %v", table, err)
	}
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("PRAGMA table_info(%s)", ddl.QuoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("reflect columns of %q: %w", table, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// TableExists reports whether a table with the given name exists.
func (r *PhysicalRepo) TableExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RowCount returns the number of rows in the table.
func (r *PhysicalRepo) RowCount(ctx context.Context, table string) (int64, error) {
	stmt, err := ddl.CountRows(table)
	if err != nil {
		return 0, domain.ErrValidation("count rows of %q: %v", table, err)
	}
	var count int64
	if err := r.db.QueryRowContext(ctx, stmt).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows of %q: %w", table, err)
	}
	return count, nil
}

// InsertChunked inserts rows into table within the caller's transaction,
// batching into multi-row INSERT statements so a single statement never
// exceeds the chunk-row or bound-parameter limits.
func (r *PhysicalRepo) InsertChunked(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	single, err := ddl.InsertInto(table, columns)
	if err != nil {
		return domain.ErrValidation("insert into %q: %v", table, err)
	}
	// Split "INSERT INTO t (...) VALUES (?, ...)" to reuse the prefix for
	// multi-row statements.
	idx := strings.LastIndex(single, "VALUES")
	prefix := single[:idx+len("VALUES")]
	tuple := strings.TrimSpace(single[idx+len("VALUES"):])

	chunk := insertChunkRows
	if perRow := len(columns); perRow > 0 && maxInsertParams/perRow < chunk {
		chunk = maxInsertParams / perRow
		if chunk < 1 {
			chunk = 1
		}
	}

	for start := 0; start < len(rows); start += chunk {
		end := start + chunk
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		tuples := make([]string, len(batch))
		args := make([]interface{}, 0, len(batch)*len(columns))
		for i, row := range batch {
			if len(row) != len(columns) {
				return domain.ErrValidation("insert into %q: row has %d values, want %d", table, len(row), len(columns))
			}
			tuples[i] = tuple
			args = append(args, row...)
		}

		stmt := prefix + " " + strings.Join(tuples, ", ")
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert into %q: %w", table, err)
		}
	}
	return nil
}
