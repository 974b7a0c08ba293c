package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrangler/internal/db"
	"wrangler/internal/domain"
)

func salesColumns() domain.ColumnSchema {
	return domain.ColumnSchema{
		{Name: "company", Type: domain.TypeText},
		{Name: "employees", Type: domain.TypeInteger},
	}
}

func createTestDataset(t *testing.T, repo *DatasetRepo, name string, slot int) *domain.DatasetDescriptor {
	t.Helper()
	d, err := repo.Create(context.Background(), &domain.DatasetDescriptor{
		Name:      name,
		Slot:      slot,
		TableName: "dataset_" + name,
		Columns:   salesColumns(),
	})
	require.NoError(t, err)
	return d
}

func TestDatasetRepo_CreateAndGet(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewDatasetRepo(writeDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.DatasetDescriptor{
		Name:        "sales",
		Slot:        1,
		TableName:   "dataset_1_sales",
		Columns:     salesColumns(),
		BlobColumns: []string{"company"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "sales", got.Name)
	assert.Equal(t, 1, got.Slot)
	assert.Equal(t, "dataset_1_sales", got.TableName)
	assert.Equal(t, salesColumns(), got.Columns)
	assert.Equal(t, []string{"company"}, got.BlobColumns)
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDatasetRepo_GetNotFound(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewDatasetRepo(writeDB)

	_, err := repo.Get(context.Background(), 999)
	assertNotFound(t, err)
}

func TestDatasetRepo_UniqueConstraints(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewDatasetRepo(writeDB)
	ctx := context.Background()

	createTestDataset(t, repo, "sales", 1)

	tests := []struct {
		name string
		d    domain.DatasetDescriptor
	}{
		{name: "duplicate_name", d: domain.DatasetDescriptor{
			Name: "sales", Slot: 2, TableName: "dataset_other", Columns: salesColumns()}},
		{name: "duplicate_slot", d: domain.DatasetDescriptor{
			Name: "other", Slot: 1, TableName: "dataset_other", Columns: salesColumns()}},
		{name: "duplicate_table", d: domain.DatasetDescriptor{
			Name: "other", Slot: 2, TableName: "dataset_sales", Columns: salesColumns()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(ctx, &tt.d)
			var conflict *domain.ConflictError
			require.ErrorAs(t, err, &conflict)
		})
	}
}

func TestDatasetRepo_ListOrderedBySlot(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewDatasetRepo(writeDB)

	createTestDataset(t, repo, "third", 3)
	createTestDataset(t, repo, "first", 1)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Name)
	assert.Equal(t, "third", list[1].Name)
}

func TestDatasetRepo_TouchAndDelete(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewDatasetRepo(writeDB)
	ctx := context.Background()

	d := createTestDataset(t, repo, "sales", 1)

	require.NoError(t, repo.Touch(ctx, d.ID))
	assertNotFound(t, repo.Touch(ctx, 999))

	require.NoError(t, repo.Delete(ctx, d.ID))
	_, err := repo.Get(ctx, d.ID)
	assertNotFound(t, err)
	assertNotFound(t, repo.Delete(ctx, d.ID))
}

func TestDatasetRepo_DeleteCascadesUploadLog(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewDatasetRepo(writeDB)
	uploads := NewUploadLogRepo(writeDB)
	ctx := context.Background()

	d := createTestDataset(t, repo, "sales", 1)
	_, err := writeDB.ExecContext(ctx,
		`INSERT INTO upload_log (dataset_id, filename, file_kind, row_count) VALUES (?, ?, ?, ?)`,
		d.ID, "a.csv", "CSV", 3)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, d.ID))

	exists, err := uploads.Exists(ctx, d.ID, "a.csv")
	require.NoError(t, err)
	assert.False(t, exists)
}
