package repository

import (
	"context"
	"database/sql"

	"wrangler/internal/domain"
)

// KnowledgeRepo implements domain.KnowledgeStore over the knowledge_table table.
type KnowledgeRepo struct {
	db *sql.DB
}

// NewKnowledgeRepo creates a KnowledgeRepo backed by the given connection.
func NewKnowledgeRepo(db *sql.DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

const knowledgeColumns = `id, name, data_type, table_name, primary_key_column, key_id_column,
	columns_config, created_at, updated_at`

// Create inserts a new knowledge-table descriptor and returns it with its
// assigned id.
func (r *KnowledgeRepo) Create(ctx context.Context, d *domain.KnowledgeDescriptor) (*domain.KnowledgeDescriptor, error) {
	columnsJSON, err := marshalJSON(d.Columns)
	if err != nil {
		return nil, err
	}
	keyCol := d.KeyIDColumn
	if keyCol == "" {
		keyCol = domain.KnowledgeKeyColumn
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO knowledge_table (name, data_type, table_name, primary_key_column, key_id_column, columns_config)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.Name, d.DataType, d.TableName, d.PrimaryKeyColumn, keyCol, columnsJSON)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Get returns the knowledge-table descriptor with the given id.
func (r *KnowledgeRepo) Get(ctx context.Context, id int64) (*domain.KnowledgeDescriptor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+knowledgeColumns+` FROM knowledge_table WHERE id = ?`, id)
	d, err := scanKnowledge(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("knowledge table %d not found", id)
	}
	return d, err
}

// List returns all knowledge-table descriptors.
func (r *KnowledgeRepo) List(ctx context.Context) ([]domain.KnowledgeDescriptor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+knowledgeColumns+` FROM knowledge_table ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.KnowledgeDescriptor
	for rows.Next() {
		d, err := scanKnowledge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Delete removes the knowledge-table descriptor row.
func (r *KnowledgeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM knowledge_table WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("knowledge table %d not found", id)
	}
	return nil
}

func scanKnowledge(row rowScanner) (*domain.KnowledgeDescriptor, error) {
	var d domain.KnowledgeDescriptor
	var columnsJSON string
	if err := row.Scan(&d.ID, &d.Name, &d.DataType, &d.TableName, &d.PrimaryKeyColumn,
		&d.KeyIDColumn, &columnsJSON, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(columnsJSON, &d.Columns); err != nil {
		return nil, err
	}
	return &d, nil
}
