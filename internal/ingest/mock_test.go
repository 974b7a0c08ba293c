package ingest

import (
	"context"

	"wrangler/internal/domain"
)

// Function-field mocks for the pipeline's collaborators. Only the methods a
// test sets are expected to be called.

type mockDatasetStore struct {
	getFn func(ctx context.Context, id int64) (*domain.DatasetDescriptor, error)
}

func (m *mockDatasetStore) Create(context.Context, *domain.DatasetDescriptor) (*domain.DatasetDescriptor, error) {
	panic("unexpected Create")
}

func (m *mockDatasetStore) Get(ctx context.Context, id int64) (*domain.DatasetDescriptor, error) {
	return m.getFn(ctx, id)
}

func (m *mockDatasetStore) List(context.Context) ([]domain.DatasetDescriptor, error) {
	panic("unexpected List")
}

func (m *mockDatasetStore) Touch(context.Context, int64) error {
	panic("unexpected Touch")
}

func (m *mockDatasetStore) Delete(context.Context, int64) error {
	panic("unexpected Delete")
}

type mockUploadLog struct {
	existsFn func(ctx context.Context, datasetID int64, filename string) (bool, error)
}

func (m *mockUploadLog) Exists(ctx context.Context, datasetID int64, filename string) (bool, error) {
	if m.existsFn == nil {
		return false, nil
	}
	return m.existsFn(ctx, datasetID, filename)
}

func (m *mockUploadLog) ListForDataset(context.Context, int64) ([]domain.UploadRecord, error) {
	panic("unexpected ListForDataset")
}

type mockLoader struct {
	loadFn func(ctx context.Context, ds *domain.DatasetDescriptor, filename string, kind domain.FileKind, tbl *domain.Table) (int64, error)
}

func (m *mockLoader) LoadFile(ctx context.Context, ds *domain.DatasetDescriptor, filename string, kind domain.FileKind, tbl *domain.Table) (int64, error) {
	if m.loadFn == nil {
		return int64(len(tbl.Rows)), nil
	}
	return m.loadFn(ctx, ds, filename, kind, tbl)
}
