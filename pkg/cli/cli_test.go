package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrangler/internal/domain"
)

func TestParseColumns(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.ColumnSchema
		wantErr bool
	}{
		{
			name:  "typed_columns",
			input: "company:TEXT,employees:INTEGER",
			want: domain.ColumnSchema{
				{Name: "company", Type: "TEXT"},
				{Name: "employees", Type: "INTEGER"},
			},
		},
		{
			name:  "type_defaults_to_text",
			input: "company",
			want:  domain.ColumnSchema{{Name: "company", Type: "TEXT"}},
		},
		{
			name:  "whitespace_and_case_normalized",
			input: " company : text , employees : integer ",
			want: domain.ColumnSchema{
				{Name: "company", Type: "TEXT"},
				{Name: "employees", Type: "INTEGER"},
			},
		},
		{
			name:    "empty",
			input:   "  ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseColumns(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("forty-two")
	require.Error(t, err)
}

func TestUserConfig_ActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {DBPath: "default.sqlite"},
			"staging": {DBPath: "staging.sqlite", LogLevel: "debug"},
		},
	}

	assert.Equal(t, "default.sqlite", cfg.ActiveProfile("").DBPath)
	assert.Equal(t, "staging.sqlite", cfg.ActiveProfile("staging").DBPath)
	assert.Equal(t, Profile{}, cfg.ActiveProfile("missing"))
}

func TestRootCmd_HasExpectedCommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"migrate", "dataset", "knowledge", "upload", "integrity", "version"} {
		assert.Contains(t, names, want)
	}
}
