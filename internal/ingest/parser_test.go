package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrangler/internal/domain"
)

func TestCSVParser_Parse(t *testing.T) {
	parser := NewCSVParser()

	tests := []struct {
		name     string
		blob     []byte
		wantKind domain.FileKind
		wantCols []string
		wantRows int
		wantErr  string
	}{
		{
			name:     "plain_csv",
			blob:     []byte("company,employees\nacme,12\nglobex,240\n"),
			wantKind: domain.KindCSV,
			wantCols: []string{"company", "employees"},
			wantRows: 2,
		},
		{
			name:     "tsv_sniffed_from_header",
			blob:     []byte("company\temployees\nacme\t12\n"),
			wantKind: domain.KindTSV,
			wantCols: []string{"company", "employees"},
			wantRows: 1,
		},
		{
			name:     "bom_stripped",
			blob:     []byte("\xEF\xBB\xBFcompany,employees\nacme,12\n"),
			wantKind: domain.KindCSV,
			wantCols: []string{"company", "employees"},
			wantRows: 1,
		},
		{
			name:     "quoted_fields",
			blob:     []byte("company,motto\nacme,\"we, dig\"\n"),
			wantKind: domain.KindCSV,
			wantCols: []string{"company", "motto"},
			wantRows: 1,
		},
		{
			name:     "header_whitespace_trimmed",
			blob:     []byte(" company , employees \nacme,12\n"),
			wantKind: domain.KindCSV,
			wantCols: []string{"company", "employees"},
			wantRows: 1,
		},
		{
			name:    "empty_file",
			blob:    nil,
			wantErr: "empty",
		},
		{
			name:    "header_only",
			blob:    []byte("company,employees\n"),
			wantErr: "no data rows",
		},
		{
			name:    "ragged_row",
			blob:    []byte("company,employees\nacme,12,extra\n"),
			wantErr: "malformed",
		},
		{
			name:    "empty_column_name",
			blob:    []byte("company,,employees\nacme,1,12\n"),
			wantErr: "empty name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, kind, err := parser.Parse(tt.blob)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantCols, tbl.Columns)
			assert.Len(t, tbl.Rows, tt.wantRows)
		})
	}
}

func TestCSVParser_Windows1252Fallback(t *testing.T) {
	parser := NewCSVParser()

	// 0xE9 is é in Windows-1252 and invalid as standalone UTF-8.
	blob := []byte("company,city\nacme,Montr\xE9al\n")
	tbl, kind, err := parser.Parse(blob)
	require.NoError(t, err)
	assert.Equal(t, domain.KindCSV, kind)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Montréal", tbl.Rows[0][1])
}

func TestValidateColumns(t *testing.T) {
	expected := []string{"company", "employees", "city"}

	tests := []struct {
		name    string
		actual  []string
		wantErr string
	}{
		{name: "exact_match", actual: []string{"company", "employees", "city"}},
		{name: "missing", actual: []string{"company", "city"}, wantErr: "missing columns: employees"},
		{name: "extra", actual: []string{"company", "employees", "city", "zip"}, wantErr: "extra columns: zip"},
		{name: "reordered", actual: []string{"employees", "company", "city"}, wantErr: "order mismatch"},
		{name: "repeated_name", actual: []string{"company", "employees", "city", "city"}, wantErr: "count mismatch"},
		{name: "repeated_name_short", actual: []string{"company", "employees"}, wantErr: "missing columns: city"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColumns(expected, tt.actual)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
