package domain

import "time"

// FileKind identifies the detected format of an uploaded tabular file.
type FileKind string

// Detected file kinds.
const (
	KindCSV FileKind = "CSV"
	KindTSV FileKind = "TSV"
)

// Table is a parsed tabular file: a header and string-valued rows, format
// agnostic. Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// UploadRecord is one append-only entry in the upload log, recorded per
// successfully ingested file.
type UploadRecord struct {
	ID         int64
	DatasetID  int64
	Filename   string
	Kind       FileKind
	RowCount   int64
	UploadedAt time.Time
}

// SkipKind tags why a batch item was skipped. Stable values: callers key
// aggregate reporting off them.
type SkipKind string

// Skip kinds, in validation order.
const (
	SkipParseError       SkipKind = "ParseError"
	SkipDuplicateInBatch SkipKind = "DuplicateInBatch"
	SkipDuplicateInStore SkipKind = "DuplicateInStore"
	SkipSchemaMismatch   SkipKind = "SchemaMismatch"
	SkipLoadError        SkipKind = "LoadError"
)

// BatchItem is one (blob, filename) input to the ingestion pipeline.
type BatchItem struct {
	Filename string
	Blob     []byte
}

// ItemResult is the per-item outcome of a batch. For a successful item
// RowCount is set and Skip is empty; for a skipped item Skip and Reason are
// set.
type ItemResult struct {
	Filename string
	RowCount int64
	Skip     SkipKind
	Reason   string
}

// BatchResult partitions a batch into successful and skipped items.
// len(Successful)+len(Skipped) always equals the number of input items.
type BatchResult struct {
	DatasetID      int64
	DatasetName    string
	TotalFiles     int
	Successful     []ItemResult
	Skipped        []ItemResult
	TotalRowsAdded int64
}

// BatchOptions controls per-batch validation behavior.
type BatchOptions struct {
	// OverrideDuplicates bypasses the persisted duplicate-filename check.
	// In-batch duplicate detection still applies.
	OverrideDuplicates bool
}
