package repository

import (
	"context"
	"database/sql"

	"wrangler/internal/domain"
)

// DatasetRepo implements domain.DatasetStore over the dataset_config table.
type DatasetRepo struct {
	db *sql.DB
}

// NewDatasetRepo creates a DatasetRepo backed by the given connection.
func NewDatasetRepo(db *sql.DB) *DatasetRepo {
	return &DatasetRepo{db: db}
}

const datasetColumns = `id, name, slot_number, table_name, columns_config, blob_columns, created_at, updated_at`

// Create inserts a new dataset descriptor and returns it with its assigned id.
func (r *DatasetRepo) Create(ctx context.Context, d *domain.DatasetDescriptor) (*domain.DatasetDescriptor, error) {
	columnsJSON, err := marshalJSON(d.Columns)
	if err != nil {
		return nil, err
	}
	blobJSON, err := marshalJSON(d.BlobColumns)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO dataset_config (name, slot_number, table_name, columns_config, blob_columns)
		 VALUES (?, ?, ?, ?, ?)`,
		d.Name, d.Slot, d.TableName, columnsJSON, blobJSON)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Get returns the dataset descriptor with the given id.
func (r *DatasetRepo) Get(ctx context.Context, id int64) (*domain.DatasetDescriptor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+datasetColumns+` FROM dataset_config WHERE id = ?`, id)
	d, err := scanDataset(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("dataset %d not found", id)
	}
	return d, err
}

// List returns all dataset descriptors ordered by slot.
func (r *DatasetRepo) List(ctx context.Context) ([]domain.DatasetDescriptor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+datasetColumns+` FROM dataset_config ORDER BY slot_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DatasetDescriptor
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Touch bumps the descriptor's updated_at timestamp.
func (r *DatasetRepo) Touch(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE dataset_config SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("dataset %d not found", id)
	}
	return nil
}

// Delete removes the descriptor row. Upload records and enriched descriptors
// referencing it are removed by foreign-key cascade.
func (r *DatasetRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dataset_config WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("dataset %d not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDataset(row rowScanner) (*domain.DatasetDescriptor, error) {
	var d domain.DatasetDescriptor
	var columnsJSON, blobJSON string
	if err := row.Scan(&d.ID, &d.Name, &d.Slot, &d.TableName, &columnsJSON, &blobJSON, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(columnsJSON, &d.Columns); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(blobJSON, &d.BlobColumns); err != nil {
		return nil, err
	}
	return &d, nil
}
