package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"wrangler/internal/domain"
)

// Pipeline processes batches of uploaded files against a target dataset.
// Per-item failures are recorded in the batch result, never raised; only
// an unusable target dataset or a failing duplicate lookup aborts the
// batch as a whole.
type Pipeline struct {
	datasets domain.DatasetStore
	uploads  domain.UploadLog
	loader   domain.FileLoader
	parser   domain.Parser
	logger   *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(
	datasets domain.DatasetStore,
	uploads domain.UploadLog,
	loader domain.FileLoader,
	parser domain.Parser,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		datasets: datasets,
		uploads:  uploads,
		loader:   loader,
		parser:   parser,
		logger:   logger.With("component", "ingest"),
	}
}

// Process validates and loads every item in the batch, in input order.
// Each input file yields exactly one entry in the result: either a
// successful load or a skip with a reason. The first occurrence of a
// filename wins; later repeats are skipped without further validation.
func (p *Pipeline) Process(
	ctx context.Context,
	datasetID int64,
	items []domain.BatchItem,
	opts domain.BatchOptions,
) (*domain.BatchResult, error) {
	ds, err := p.datasets.Get(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("resolving target dataset: %w", err)
	}

	result := &domain.BatchResult{
		DatasetID:   ds.ID,
		DatasetName: ds.Name,
		TotalFiles:  len(items),
	}
	expected := ds.Columns.Names()
	seen := make(map[string]bool, len(items))

	for _, item := range items {
		if seen[item.Filename] {
			p.skip(result, item.Filename, domain.SkipDuplicateInBatch,
				"filename appears earlier in this batch")
			continue
		}
		seen[item.Filename] = true

		tbl, kind, err := p.parser.Parse(item.Blob)
		if err != nil {
			p.skip(result, item.Filename, domain.SkipParseError, err.Error())
			continue
		}

		if !opts.OverrideDuplicates {
			loaded, err := p.uploads.Exists(ctx, ds.ID, item.Filename)
			if err != nil {
				return nil, fmt.Errorf("checking upload history for %q: %w", item.Filename, err)
			}
			if loaded {
				p.skip(result, item.Filename, domain.SkipDuplicateInStore,
					"filename was already loaded into this dataset")
				continue
			}
		}

		if err := ValidateColumns(expected, tbl.Columns); err != nil {
			p.skip(result, item.Filename, domain.SkipSchemaMismatch, err.Error())
			continue
		}

		rows, err := p.loader.LoadFile(ctx, ds, item.Filename, kind, tbl)
		if err != nil {
			p.logger.Error("file load failed",
				"dataset", ds.Name, "filename", item.Filename, "error", err)
			p.skip(result, item.Filename, domain.SkipLoadError, err.Error())
			continue
		}

		result.Successful = append(result.Successful, domain.ItemResult{
			Filename: item.Filename,
			RowCount: rows,
		})
		result.TotalRowsAdded += rows
	}

	p.logger.Info("batch processed",
		"dataset", ds.Name,
		"files", result.TotalFiles,
		"loaded", len(result.Successful),
		"skipped", len(result.Skipped),
		"rows_added", result.TotalRowsAdded)
	return result, nil
}

func (p *Pipeline) skip(result *domain.BatchResult, filename string, kind domain.SkipKind, reason string) {
	result.Skipped = append(result.Skipped, domain.ItemResult{
		Filename: filename,
		Skip:     kind,
		Reason:   reason,
	})
}
