package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrangler/internal/db"
	"wrangler/internal/domain"
)

func TestEnrichedRepo_CreateGetAndListForSource(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	datasets := NewDatasetRepo(writeDB)
	repo := NewEnrichedRepo(writeDB)
	ctx := context.Background()

	src := createTestDataset(t, datasets, "sales", 1)
	other := createTestDataset(t, datasets, "leads", 2)

	created, err := repo.Create(ctx, &domain.EnrichedDescriptor{
		Name:             "sales sentiment",
		SourceDatasetID:  src.ID,
		TableName:        "enriched_sales_sentiment",
		SourceTableName:  src.TableName,
		EnrichmentConfig: map[string]string{"model": "keyword"},
		ColumnsAdded:     []string{"sentiment", "confidence"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Nil(t, created.LastSyncAt)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"sentiment", "confidence"}, got.ColumnsAdded)
	assert.Equal(t, map[string]string{"model": "keyword"}, got.EnrichmentConfig)
	assert.Equal(t, src.TableName, got.SourceTableName)

	forSrc, err := repo.ListForSource(ctx, src.ID)
	require.NoError(t, err)
	assert.Len(t, forSrc, 1)

	forOther, err := repo.ListForSource(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, forOther)
}

func TestEnrichedRepo_CreateRejectsUnknownSource(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewEnrichedRepo(writeDB)

	_, err := repo.Create(context.Background(), &domain.EnrichedDescriptor{
		Name:            "orphan",
		SourceDatasetID: 999,
		TableName:       "enriched_orphan",
		SourceTableName: "dataset_gone",
	})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestEnrichedRepo_DeletedWithSourceDataset(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	datasets := NewDatasetRepo(writeDB)
	repo := NewEnrichedRepo(writeDB)
	ctx := context.Background()

	src := createTestDataset(t, datasets, "sales", 1)
	created, err := repo.Create(ctx, &domain.EnrichedDescriptor{
		Name:            "derived",
		SourceDatasetID: src.ID,
		TableName:       "enriched_derived",
		SourceTableName: src.TableName,
	})
	require.NoError(t, err)

	require.NoError(t, datasets.Delete(ctx, src.ID))

	_, err = repo.Get(ctx, created.ID)
	assertNotFound(t, err)
}

func TestKnowledgeRepo_CreateDefaultsKeyColumn(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewKnowledgeRepo(writeDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.KnowledgeDescriptor{
		Name:             "contacts",
		DataType:         domain.KnowledgeEmails,
		TableName:        "knowledge_emails_contacts_v1",
		PrimaryKeyColumn: "email",
		Columns: domain.ColumnSchema{
			{Name: "email", Type: domain.TypeText},
			{Name: "owner", Type: domain.TypeText},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KnowledgeKeyColumn, created.KeyIDColumn)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.KnowledgeEmails, got.DataType)
	assert.Equal(t, "email", got.PrimaryKeyColumn)
	require.Len(t, got.Columns, 2)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assertNotFound(t, repo.Delete(ctx, created.ID))
}

func TestKnowledgeRepo_DuplicateName(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewKnowledgeRepo(writeDB)
	ctx := context.Background()

	d := &domain.KnowledgeDescriptor{
		Name:             "contacts",
		DataType:         domain.KnowledgeEmails,
		TableName:        "knowledge_emails_contacts_v1",
		PrimaryKeyColumn: "email",
		Columns:          domain.ColumnSchema{{Name: "email", Type: domain.TypeText}},
	}
	_, err := repo.Create(ctx, d)
	require.NoError(t, err)

	dup := *d
	dup.TableName = "knowledge_emails_contacts_v2"
	_, err = repo.Create(ctx, &dup)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
}
