package repository

import (
	"context"
	"database/sql"

	"wrangler/internal/domain"
)

// UploadLogRepo implements domain.UploadLog over the upload_log table.
type UploadLogRepo struct {
	db *sql.DB
}

// NewUploadLogRepo creates an UploadLogRepo backed by the given connection.
func NewUploadLogRepo(db *sql.DB) *UploadLogRepo {
	return &UploadLogRepo{db: db}
}

// Exists reports whether filename was already recorded for the dataset.
func (r *UploadLogRepo) Exists(ctx context.Context, datasetID int64, filename string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM upload_log WHERE dataset_id = ? AND filename = ? LIMIT 1`,
		datasetID, filename).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListForDataset returns the dataset's upload records in upload order.
func (r *UploadLogRepo) ListForDataset(ctx context.Context, datasetID int64) ([]domain.UploadRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, dataset_id, filename, file_kind, row_count, uploaded_at
		 FROM upload_log WHERE dataset_id = ? ORDER BY uploaded_at, id`,
		datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UploadRecord
	for rows.Next() {
		var rec domain.UploadRecord
		if err := rows.Scan(&rec.ID, &rec.DatasetID, &rec.Filename, &rec.Kind, &rec.RowCount, &rec.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
