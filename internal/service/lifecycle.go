// Package service implements the table lifecycle operations: creating,
// listing, and deleting the descriptor-backed tables of every family.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"wrangler/internal/ddl"
	"wrangler/internal/domain"
)

// Lifecycle coordinates catalog records and physical tables. Catalog
// records are created before their physical tables, so a crash between the
// two leaves an orphan descriptor the reconciler can see and repair.
type Lifecycle struct {
	datasets  domain.DatasetStore
	enriched  domain.EnrichedStore
	knowledge domain.KnowledgeStore
	uploads   domain.UploadLog
	physical  domain.PhysicalTables
	logger    *slog.Logger
}

// NewLifecycle creates a Lifecycle service.
func NewLifecycle(
	datasets domain.DatasetStore,
	enriched domain.EnrichedStore,
	knowledge domain.KnowledgeStore,
	uploads domain.UploadLog,
	physical domain.PhysicalTables,
	logger *slog.Logger,
) *Lifecycle {
	return &Lifecycle{
		datasets:  datasets,
		enriched:  enriched,
		knowledge: knowledge,
		uploads:   uploads,
		physical:  physical,
		logger:    logger.With("component", "lifecycle"),
	}
}

// CreateDatasetParams are the inputs to CreateDataset.
type CreateDatasetParams struct {
	Name        string
	Slot        int
	Columns     domain.ColumnSchema
	BlobColumns []string
}

// CreateDataset registers a dataset descriptor and creates its physical
// table. The table is named dataset_<slot>_<sanitized name>, with a numeric
// suffix when that name is already taken.
func (s *Lifecycle) CreateDataset(ctx context.Context, p CreateDatasetParams) (*domain.DatasetDescriptor, error) {
	if p.Slot < 1 || p.Slot > domain.MaxDatasetSlots {
		return nil, domain.ErrValidation("slot must be between 1 and %d, got %d", domain.MaxDatasetSlots, p.Slot)
	}
	if err := validateName(p.Name); err != nil {
		return nil, err
	}
	if err := validateColumns(p.Columns); err != nil {
		return nil, err
	}

	base := fmt.Sprintf("%s%d_%s", domain.FamilyDataset.Prefix(), p.Slot, ddl.SanitizeName(p.Name))
	tableName, err := s.freeTableName(ctx, base)
	if err != nil {
		return nil, err
	}

	d := &domain.DatasetDescriptor{
		Name:        strings.TrimSpace(p.Name),
		Slot:        p.Slot,
		TableName:   tableName,
		Columns:     p.Columns,
		BlobColumns: p.BlobColumns,
	}
	created, err := s.datasets.Create(ctx, d)
	if err != nil {
		return nil, err
	}

	if err := s.physical.CreateTable(ctx, tableName, p.Columns); err != nil {
		s.compensateDescriptor(ctx, domain.FamilyDataset, created.ID, tableName)
		return nil, fmt.Errorf("creating table %s: %w", tableName, err)
	}

	s.logger.Info("dataset created", "name", created.Name, "slot", created.Slot, "table", tableName)
	return created, nil
}

// GetDataset returns one dataset descriptor.
func (s *Lifecycle) GetDataset(ctx context.Context, id int64) (*domain.DatasetDescriptor, error) {
	return s.datasets.Get(ctx, id)
}

// ListDatasets returns all dataset descriptors ordered by slot.
func (s *Lifecycle) ListDatasets(ctx context.Context) ([]domain.DatasetDescriptor, error) {
	return s.datasets.List(ctx)
}

// DeleteDataset removes a dataset: enriched tables derived from it first,
// then its own table, then the catalog record. Upload history and enriched
// descriptors go with the record via foreign key cascade.
func (s *Lifecycle) DeleteDataset(ctx context.Context, id int64) error {
	d, err := s.datasets.Get(ctx, id)
	if err != nil {
		return err
	}

	derived, err := s.enriched.ListForSource(ctx, id)
	if err != nil {
		return fmt.Errorf("listing enriched datasets for %s: %w", d.Name, err)
	}
	for _, e := range derived {
		if err := s.physical.DropTable(ctx, e.TableName); err != nil {
			return fmt.Errorf("dropping enriched table %s: %w", e.TableName, err)
		}
	}

	if err := s.physical.DropTable(ctx, d.TableName); err != nil {
		return fmt.Errorf("dropping table %s: %w", d.TableName, err)
	}
	if err := s.datasets.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("dataset deleted", "name", d.Name, "table", d.TableName, "enriched_dropped", len(derived))
	return nil
}

// DatasetStatistics summarizes a dataset's stored rows and upload history.
type DatasetStatistics struct {
	Descriptor    *domain.DatasetDescriptor
	RowCount      int64
	UploadCount   int
	FirstUploadAt *time.Time
	LastUploadAt  *time.Time
	EnrichedCount int
}

// Statistics returns current row and upload counts for a dataset.
func (s *Lifecycle) Statistics(ctx context.Context, id int64) (*DatasetStatistics, error) {
	d, err := s.datasets.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.physical.RowCount(ctx, d.TableName)
	if err != nil {
		return nil, fmt.Errorf("counting rows in %s: %w", d.TableName, err)
	}
	uploads, err := s.uploads.ListForDataset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing uploads for %s: %w", d.Name, err)
	}
	derived, err := s.enriched.ListForSource(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing enriched datasets for %s: %w", d.Name, err)
	}

	stats := &DatasetStatistics{
		Descriptor:    d,
		RowCount:      rows,
		UploadCount:   len(uploads),
		EnrichedCount: len(derived),
	}
	if len(uploads) > 0 {
		first := uploads[0].UploadedAt
		last := uploads[len(uploads)-1].UploadedAt
		stats.FirstUploadAt = &first
		stats.LastUploadAt = &last
	}
	return stats, nil
}

// CreateKnowledgeParams are the inputs to CreateKnowledgeTable.
type CreateKnowledgeParams struct {
	Name             string
	DataType         string
	PrimaryKeyColumn string
	Columns          domain.ColumnSchema
}

var knowledgeDataTypes = map[string]bool{
	domain.KnowledgePhoneNumbers: true,
	domain.KnowledgeEmails:       true,
	domain.KnowledgeWebDomains:   true,
}

// CreateKnowledgeTable registers a knowledge descriptor and creates its
// physical table. Tables are named knowledge_<type>_<sanitized>_vN with N
// incremented until free. The key_id column gets a unique index and the
// primary key column a lookup index.
func (s *Lifecycle) CreateKnowledgeTable(ctx context.Context, p CreateKnowledgeParams) (*domain.KnowledgeDescriptor, error) {
	if !knowledgeDataTypes[p.DataType] {
		return nil, domain.ErrValidation("unknown knowledge data type %q", p.DataType)
	}
	if err := validateName(p.Name); err != nil {
		return nil, err
	}
	if err := validateColumns(p.Columns); err != nil {
		return nil, err
	}
	if !p.Columns.Has(p.PrimaryKeyColumn) {
		return nil, domain.ErrValidation("primary key column %q is not among the declared columns", p.PrimaryKeyColumn)
	}

	tableName, err := s.versionedTableName(ctx, fmt.Sprintf("%s%s_%s",
		domain.FamilyKnowledge.Prefix(), p.DataType, ddl.SanitizeName(p.Name)))
	if err != nil {
		return nil, err
	}

	d := &domain.KnowledgeDescriptor{
		Name:             strings.TrimSpace(p.Name),
		DataType:         p.DataType,
		TableName:        tableName,
		PrimaryKeyColumn: p.PrimaryKeyColumn,
		KeyIDColumn:      domain.KnowledgeKeyColumn,
		Columns:          p.Columns,
	}
	created, err := s.knowledge.Create(ctx, d)
	if err != nil {
		return nil, err
	}

	schema := append(domain.ColumnSchema{
		{Name: domain.KnowledgeKeyColumn, Type: domain.TypeText},
	}, p.Columns...)
	if err := s.physical.CreateTable(ctx, tableName, schema); err != nil {
		s.compensateDescriptor(ctx, domain.FamilyKnowledge, created.ID, tableName)
		return nil, fmt.Errorf("creating table %s: %w", tableName, err)
	}
	if err := s.physical.CreateUniqueIndex(ctx, tableName, domain.KnowledgeKeyColumn); err != nil {
		return nil, fmt.Errorf("indexing %s.%s: %w", tableName, domain.KnowledgeKeyColumn, err)
	}
	if err := s.physical.CreateIndex(ctx, tableName, p.PrimaryKeyColumn, false); err != nil {
		return nil, fmt.Errorf("indexing %s.%s: %w", tableName, p.PrimaryKeyColumn, err)
	}

	s.logger.Info("knowledge table created", "name", created.Name, "type", p.DataType, "table", tableName)
	return created, nil
}

// ListKnowledgeTables returns all knowledge descriptors.
func (s *Lifecycle) ListKnowledgeTables(ctx context.Context) ([]domain.KnowledgeDescriptor, error) {
	return s.knowledge.List(ctx)
}

// DeleteKnowledgeTable drops a knowledge table and its descriptor.
func (s *Lifecycle) DeleteKnowledgeTable(ctx context.Context, id int64) error {
	d, err := s.knowledge.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.physical.DropTable(ctx, d.TableName); err != nil {
		return fmt.Errorf("dropping table %s: %w", d.TableName, err)
	}
	if err := s.knowledge.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("knowledge table deleted", "name", d.Name, "table", d.TableName)
	return nil
}

// CreateEnrichedParams are the inputs to CreateEnrichedDataset.
type CreateEnrichedParams struct {
	Name             string
	SourceDatasetID  int64
	EnrichmentConfig map[string]string
	ColumnsAdded     []string
}

// CreateEnrichedDataset registers an enriched descriptor and creates its
// physical table: the source dataset's columns plus the added TEXT columns.
func (s *Lifecycle) CreateEnrichedDataset(ctx context.Context, p CreateEnrichedParams) (*domain.EnrichedDescriptor, error) {
	if err := validateName(p.Name); err != nil {
		return nil, err
	}
	src, err := s.datasets.Get(ctx, p.SourceDatasetID)
	if err != nil {
		return nil, err
	}
	for _, column := range p.ColumnsAdded {
		if err := ddl.ValidateIdentifier(column); err != nil {
			return nil, domain.ErrValidation("added column %q: %v", column, err)
		}
		if src.Columns.Has(column) {
			return nil, domain.ErrValidation("added column %q already exists on source dataset %s", column, src.Name)
		}
	}

	tableName, err := s.freeTableName(ctx, domain.FamilyEnriched.Prefix()+ddl.SanitizeName(p.Name))
	if err != nil {
		return nil, err
	}

	d := &domain.EnrichedDescriptor{
		Name:             strings.TrimSpace(p.Name),
		SourceDatasetID:  src.ID,
		TableName:        tableName,
		SourceTableName:  src.TableName,
		EnrichmentConfig: p.EnrichmentConfig,
		ColumnsAdded:     p.ColumnsAdded,
	}
	created, err := s.enriched.Create(ctx, d)
	if err != nil {
		return nil, err
	}

	schema := append(domain.ColumnSchema{}, src.Columns...)
	for _, column := range p.ColumnsAdded {
		schema = append(schema, domain.ColumnSpec{Name: column, Type: domain.TypeText})
	}
	if err := s.physical.CreateTable(ctx, tableName, schema); err != nil {
		s.compensateDescriptor(ctx, domain.FamilyEnriched, created.ID, tableName)
		return nil, fmt.Errorf("creating table %s: %w", tableName, err)
	}

	s.logger.Info("enriched dataset created", "name", created.Name, "source", src.Name, "table", tableName)
	return created, nil
}

// ListEnrichedDatasets returns all enriched descriptors.
func (s *Lifecycle) ListEnrichedDatasets(ctx context.Context) ([]domain.EnrichedDescriptor, error) {
	return s.enriched.List(ctx)
}

// DeleteEnrichedDataset drops an enriched table and its descriptor.
func (s *Lifecycle) DeleteEnrichedDataset(ctx context.Context, id int64) error {
	d, err := s.enriched.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.physical.DropTable(ctx, d.TableName); err != nil {
		return fmt.Errorf("dropping table %s: %w", d.TableName, err)
	}
	if err := s.enriched.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("enriched dataset deleted", "name", d.Name, "table", d.TableName)
	return nil
}

// freeTableName appends _2, _3, ... to base until the name is unused.
func (s *Lifecycle) freeTableName(ctx context.Context, base string) (string, error) {
	name := base
	for i := 2; ; i++ {
		exists, err := s.physical.TableExists(ctx, name)
		if err != nil {
			return "", fmt.Errorf("checking table name %s: %w", name, err)
		}
		if !exists {
			return name, nil
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
}

// versionedTableName appends _v1, _v2, ... to base until the name is unused.
func (s *Lifecycle) versionedTableName(ctx context.Context, base string) (string, error) {
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_v%d", base, i)
		exists, err := s.physical.TableExists(ctx, name)
		if err != nil {
			return "", fmt.Errorf("checking table name %s: %w", name, err)
		}
		if !exists {
			return name, nil
		}
	}
}

// compensateDescriptor removes a descriptor whose physical table could not
// be created. Failure here leaves an orphan descriptor; the reconciler
// picks it up.
func (s *Lifecycle) compensateDescriptor(ctx context.Context, family domain.Family, id int64, table string) {
	var err error
	switch family {
	case domain.FamilyDataset:
		err = s.datasets.Delete(ctx, id)
	case domain.FamilyEnriched:
		err = s.enriched.Delete(ctx, id)
	case domain.FamilyKnowledge:
		err = s.knowledge.Delete(ctx, id)
	}
	if err != nil {
		s.logger.Warn("descriptor left orphaned after failed table creation",
			"family", family, "id", id, "table", table, "error", err)
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrValidation("name must not be empty")
	}
	return nil
}

func validateColumns(schema domain.ColumnSchema) error {
	if len(schema) == 0 {
		return domain.ErrValidation("at least one column is required")
	}
	seen := make(map[string]bool, len(schema))
	for _, c := range schema {
		if err := ddl.ValidateIdentifier(c.Name); err != nil {
			return domain.ErrValidation("column %q: %v", c.Name, err)
		}
		if err := ddl.ValidateColumnType(c.Type); err != nil {
			return domain.ErrValidation("column %q: %v", c.Name, err)
		}
		if c.Name == domain.RowUIDColumn || c.Name == domain.LegacyRowUIDColumn {
			return domain.ErrValidation("column name %q is reserved", c.Name)
		}
		if seen[c.Name] {
			return domain.ErrValidation("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}
