package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"wrangler/internal/domain"
)

// FileLoader implements domain.FileLoader: it persists one validated file
// into a dataset in a single transaction, so a later file's failure never
// rolls back an earlier file.
type FileLoader struct {
	db       *sql.DB
	physical *PhysicalRepo
}

// NewFileLoader creates a FileLoader backed by the given connection.
func NewFileLoader(db *sql.DB, physical *PhysicalRepo) *FileLoader {
	return &FileLoader{db: db, physical: physical}
}

// LoadFile inserts the parsed rows in chunks, appends the upload record, and
// bumps the descriptor's updated_at, committing all of it together. Each row
// is assigned a fresh UUID row identifier.
func (l *FileLoader) LoadFile(ctx context.Context, ds *domain.DatasetDescriptor, filename string, kind domain.FileKind, tbl *domain.Table) (int64, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin load transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	columns := append([]string{domain.RowUIDColumn}, tbl.Columns...)
	rows := make([][]interface{}, len(tbl.Rows))
	for i, row := range tbl.Rows {
		values := make([]interface{}, 0, len(columns))
		values = append(values, uuid.NewString())
		for _, cell := range row {
			values = append(values, cell)
		}
		rows[i] = values
	}

	if err := l.physical.InsertChunked(ctx, tx, ds.TableName, columns, rows); err != nil {
		return 0, err
	}

	rowCount := int64(len(tbl.Rows))
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO upload_log (dataset_id, filename, file_kind, row_count) VALUES (?, ?, ?, ?)`,
		ds.ID, filename, string(kind), rowCount); err != nil {
		return 0, fmt.Errorf("append upload record for %q: %w", filename, err)
	}

	// Inline rather than DatasetStore.Touch so the bump shares this
	// file's transaction.
	if _, err := tx.ExecContext(ctx,
		`UPDATE dataset_config SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, ds.ID); err != nil {
		return 0, fmt.Errorf("touch dataset %d: %w", ds.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit load of %q: %w", filename, err)
	}
	return rowCount, nil
}
