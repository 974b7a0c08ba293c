package domain

import "context"

// DatasetStore is the catalog CRUD surface for dataset descriptors.
type DatasetStore interface {
	Create(ctx context.Context, d *DatasetDescriptor) (*DatasetDescriptor, error)
	Get(ctx context.Context, id int64) (*DatasetDescriptor, error)
	List(ctx context.Context) ([]DatasetDescriptor, error)
	// Touch bumps the descriptor's updated_at timestamp. The file loader
	// performs the same update inline instead, so the bump commits or
	// rolls back with the rest of its per-file transaction.
	Touch(ctx context.Context, id int64) error
	// Delete removes the descriptor row, cascading to upload records and
	// enriched descriptors that reference it. It does not touch physical
	// tables.
	Delete(ctx context.Context, id int64) error
}

// EnrichedStore is the catalog CRUD surface for enriched-dataset descriptors.
type EnrichedStore interface {
	Create(ctx context.Context, d *EnrichedDescriptor) (*EnrichedDescriptor, error)
	Get(ctx context.Context, id int64) (*EnrichedDescriptor, error)
	List(ctx context.Context) ([]EnrichedDescriptor, error)
	ListForSource(ctx context.Context, sourceDatasetID int64) ([]EnrichedDescriptor, error)
	Delete(ctx context.Context, id int64) error
}

// KnowledgeStore is the catalog CRUD surface for knowledge-table descriptors.
type KnowledgeStore interface {
	Create(ctx context.Context, d *KnowledgeDescriptor) (*KnowledgeDescriptor, error)
	Get(ctx context.Context, id int64) (*KnowledgeDescriptor, error)
	List(ctx context.Context) ([]KnowledgeDescriptor, error)
	Delete(ctx context.Context, id int64) error
}

// UploadLog is the append-only upload history for datasets.
type UploadLog interface {
	Exists(ctx context.Context, datasetID int64, filename string) (bool, error)
	ListForDataset(ctx context.Context, datasetID int64) ([]UploadRecord, error)
}

// PhysicalTables is the DDL/reflection surface over the physical schema.
type PhysicalTables interface {
	// CreateTable creates a physical data table with the generated row_uid
	// primary key followed by the declared columns.
	CreateTable(ctx context.Context, name string, schema ColumnSchema) error
	DropTable(ctx context.Context, name string) error
	AddColumn(ctx context.Context, table, column, columnType string) error
	// CreateIndex creates an index on table(column), filtered to non-NULL
	// values when notNullOnly is set. Idempotent.
	CreateIndex(ctx context.Context, table, column string, notNullOnly bool) error
	CreateUniqueIndex(ctx context.Context, table, column string) error
	TableNames(ctx context.Context) ([]string, error)
	ColumnNames(ctx context.Context, table string) ([]string, error)
	TableExists(ctx context.Context, name string) (bool, error)
	RowCount(ctx context.Context, table string) (int64, error)
}

// FileLoader persists one validated file into a dataset: chunked row insert,
// upload-log append, and descriptor timestamp bump, all in one transaction
// scoped to that file. Returns the number of rows inserted.
type FileLoader interface {
	LoadFile(ctx context.Context, ds *DatasetDescriptor, filename string, kind FileKind, tbl *Table) (int64, error)
}

// Parser deserializes an uploaded blob into a Table, detecting its kind.
type Parser interface {
	Parse(blob []byte) (*Table, FileKind, error)
}
