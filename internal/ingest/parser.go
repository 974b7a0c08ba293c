// Package ingest implements tabular file parsing and the batch ingestion
// pipeline.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"wrangler/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser implements domain.Parser for delimiter-separated files. It
// detects comma vs tab delimiting, strips a UTF-8 BOM, and falls back to
// Windows-1252 and Latin-1 decoding when the blob is not valid UTF-8.
type CSVParser struct{}

// NewCSVParser creates a CSVParser.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse deserializes blob into a Table. All cells are kept as strings;
// declared types are applied by SQLite affinity at insert time.
func (p *CSVParser) Parse(blob []byte) (*domain.Table, domain.FileKind, error) {
	if len(blob) == 0 {
		return nil, "", domain.ErrValidation("file is empty")
	}

	blob = bytes.TrimPrefix(blob, utf8BOM)
	text, err := decode(blob)
	if err != nil {
		return nil, "", err
	}

	kind, comma := sniffDelimiter(text)

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = comma
	// FieldsPerRecord defaults to the header width: ragged rows are
	// rejected, matching the strict schema contract downstream.

	records, err := reader.ReadAll()
	if err != nil {
		return nil, "", domain.ErrValidation("malformed %s: %v", kind, err)
	}
	if len(records) == 0 {
		return nil, "", domain.ErrValidation("file contains no header row")
	}
	if len(records) == 1 {
		return nil, "", domain.ErrValidation("file contains no data rows")
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
		if header[i] == "" {
			return nil, "", domain.ErrValidation("column %d has an empty name", i+1)
		}
	}

	return &domain.Table{Columns: header, Rows: records[1:]}, kind, nil
}

// decode returns blob as a string, trying UTF-8 first and falling back to
// the legacy single-byte encodings spreadsheets commonly export.
func decode(blob []byte) (string, error) {
	if utf8.Valid(blob) {
		return string(blob), nil
	}
	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		decoded, err := io.ReadAll(cm.NewDecoder().Reader(bytes.NewReader(blob)))
		if err == nil {
			return string(decoded), nil
		}
	}
	return "", domain.ErrValidation("file is not valid UTF-8, Windows-1252, or Latin-1 text")
}

// sniffDelimiter inspects the header line: tabs without commas mean TSV,
// anything else is treated as CSV.
func sniffDelimiter(text string) (domain.FileKind, rune) {
	header := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		header = text[:i]
	}
	if strings.Contains(header, "\t") && !strings.Contains(header, ",") {
		return domain.KindTSV, '\t'
	}
	return domain.KindCSV, ','
}

// column mismatch detail limits, to keep reasons readable for wide files
const maxMismatchDetail = 10

// ValidateColumns checks that actual column names equal expected in both
// membership and order, returning a ValidationError naming the specific
// missing, extra, or reordered columns.
func ValidateColumns(expected, actual []string) error {
	expectedSet := make(map[string]bool, len(expected))
	for _, c := range expected {
		expectedSet[c] = true
	}
	actualSet := make(map[string]bool, len(actual))
	for _, c := range actual {
		actualSet[c] = true
	}

	var missing, extra []string
	for _, c := range expected {
		if !actualSet[c] {
			missing = append(missing, c)
		}
	}
	for _, c := range actual {
		if !expectedSet[c] {
			extra = append(extra, c)
		}
	}

	if len(missing) > 0 || len(extra) > 0 {
		var parts []string
		if len(missing) > 0 {
			parts = append(parts, "missing columns: "+joinLimited(missing))
		}
		if len(extra) > 0 {
			parts = append(parts, "extra columns: "+joinLimited(extra))
		}
		return domain.ErrValidation("column mismatch: %s", strings.Join(parts, "; "))
	}

	// Same name sets can still differ in length when a name repeats.
	if len(actual) != len(expected) {
		return domain.ErrValidation(
			"column count mismatch: got %d columns, want %d", len(actual), len(expected))
	}

	for i := range expected {
		if expected[i] != actual[i] {
			return domain.ErrValidation(
				"column order mismatch: position %d has %q, want %q", i+1, actual[i], expected[i])
		}
	}
	return nil
}

func joinLimited(names []string) string {
	if len(names) > maxMismatchDetail {
		return fmt.Sprintf("%s, and %d more",
			strings.Join(names[:maxMismatchDetail], ", "), len(names)-maxMismatchDetail)
	}
	return strings.Join(names, ", ")
}
