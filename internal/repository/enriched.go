package repository

import (
	"context"
	"database/sql"

	"wrangler/internal/domain"
)

// EnrichedRepo implements domain.EnrichedStore over the enriched_dataset table.
type EnrichedRepo struct {
	db *sql.DB
}

// NewEnrichedRepo creates an EnrichedRepo backed by the given connection.
func NewEnrichedRepo(db *sql.DB) *EnrichedRepo {
	return &EnrichedRepo{db: db}
}

const enrichedColumns = `id, name, source_dataset_id, enriched_table_name, source_table_name,
	enrichment_config, columns_added, last_sync_at, created_at, updated_at`

// Create inserts a new enriched descriptor and returns it with its assigned id.
func (r *EnrichedRepo) Create(ctx context.Context, d *domain.EnrichedDescriptor) (*domain.EnrichedDescriptor, error) {
	configJSON, err := marshalJSON(d.EnrichmentConfig)
	if err != nil {
		return nil, err
	}
	addedJSON, err := marshalJSON(d.ColumnsAdded)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO enriched_dataset
		   (name, source_dataset_id, enriched_table_name, source_table_name, enrichment_config, columns_added)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.Name, d.SourceDatasetID, d.TableName, d.SourceTableName, configJSON, addedJSON)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Get returns the enriched descriptor with the given id.
func (r *EnrichedRepo) Get(ctx context.Context, id int64) (*domain.EnrichedDescriptor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+enrichedColumns+` FROM enriched_dataset WHERE id = ?`, id)
	d, err := scanEnriched(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("enriched dataset %d not found", id)
	}
	return d, err
}

// List returns all enriched descriptors.
func (r *EnrichedRepo) List(ctx context.Context) ([]domain.EnrichedDescriptor, error) {
	return r.list(ctx, `SELECT `+enrichedColumns+` FROM enriched_dataset ORDER BY id`)
}

// ListForSource returns the enriched descriptors derived from one dataset.
func (r *EnrichedRepo) ListForSource(ctx context.Context, sourceDatasetID int64) ([]domain.EnrichedDescriptor, error) {
	return r.list(ctx,
		`SELECT `+enrichedColumns+` FROM enriched_dataset WHERE source_dataset_id = ? ORDER BY id`,
		sourceDatasetID)
}

// Delete removes the enriched descriptor row.
func (r *EnrichedRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enriched_dataset WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("enriched dataset %d not found", id)
	}
	return nil
}

func (r *EnrichedRepo) list(ctx context.Context, query string, args ...interface{}) ([]domain.EnrichedDescriptor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EnrichedDescriptor
	for rows.Next() {
		d, err := scanEnriched(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanEnriched(row rowScanner) (*domain.EnrichedDescriptor, error) {
	var d domain.EnrichedDescriptor
	var configJSON, addedJSON string
	var lastSync sql.NullTime
	if err := row.Scan(&d.ID, &d.Name, &d.SourceDatasetID, &d.TableName, &d.SourceTableName,
		&configJSON, &addedJSON, &lastSync, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if lastSync.Valid {
		d.LastSyncAt = &lastSync.Time
	}
	if err := unmarshalJSON(configJSON, &d.EnrichmentConfig); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(addedJSON, &d.ColumnsAdded); err != nil {
		return nil, err
	}
	return &d, nil
}
