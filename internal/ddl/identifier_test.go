package ddl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "company"},
		{name: "underscore_prefix", input: "_internal"},
		{name: "digits", input: "col2"},
		{name: "empty", input: "", wantErr: true},
		{name: "leading_digit", input: "2col", wantErr: true},
		{name: "space", input: "a b", wantErr: true},
		{name: "hyphen", input: "a-b", wantErr: true},
		{name: "quote_injection", input: `a"b`, wantErr: true},
		{name: "too_long", input: strings.Repeat("a", 256), wantErr: true},
		{name: "max_length", input: strings.Repeat("a", 255)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateColumnType(t *testing.T) {
	for _, valid := range []string{"TEXT", "INTEGER", "REAL", "BLOB", "text", "Integer"} {
		assert.NoError(t, ValidateColumnType(valid), valid)
	}
	for _, invalid := range []string{"", "VARCHAR(20)", "JSON", "TEXT; DROP"} {
		assert.Error(t, ValidateColumnType(invalid), invalid)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"company"`, QuoteIdentifier("company"))
	assert.Equal(t, `"a""b"`, QuoteIdentifier(`a"b`))
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, `'dark'`, QuoteLiteral("dark"))
	assert.Equal(t, `'it''s'`, QuoteLiteral("it's"))
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Sales Data", "sales_data"},
		{"sales-data", "sales_data"},
		{"Q3 (final)", "q3_final"},
		{"2024 results", "_2024_results"},
		{"émission", "mission"},
		{"already_fine", "already_fine"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.input), tt.input)
	}
}
