package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrangler/internal/domain"
)

func TestCreateDataTable(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		schema  domain.ColumnSchema
		want    string
		wantErr string
	}{
		{
			name:  "valid",
			table: "dataset_1_sales",
			schema: domain.ColumnSchema{
				{Name: "company", Type: "TEXT"},
				{Name: "employees", Type: "INTEGER"},
			},
			want: `CREATE TABLE "dataset_1_sales" ("row_uid" TEXT PRIMARY KEY, "company" TEXT, "employees" INTEGER)`,
		},
		{
			name:  "lowercase_type_normalized",
			table: "dataset_1_sales",
			schema: domain.ColumnSchema{
				{Name: "score", Type: "real"},
			},
			want: `CREATE TABLE "dataset_1_sales" ("row_uid" TEXT PRIMARY KEY, "score" REAL)`,
		},
		{
			name:  "declared_row_uid_skipped",
			table: "dataset_1_sales",
			schema: domain.ColumnSchema{
				{Name: "row_uid", Type: "TEXT"},
				{Name: "company", Type: "TEXT"},
			},
			want: `CREATE TABLE "dataset_1_sales" ("row_uid" TEXT PRIMARY KEY, "company" TEXT)`,
		},
		{
			name:    "empty_schema",
			table:   "dataset_1_sales",
			wantErr: "at least one column",
		},
		{
			name:    "invalid_table_name",
			table:   "dataset 1; drop",
			schema:  domain.ColumnSchema{{Name: "a", Type: "TEXT"}},
			wantErr: "invalid table name",
		},
		{
			name:    "invalid_column_name",
			table:   "dataset_1_sales",
			schema:  domain.ColumnSchema{{Name: "a b", Type: "TEXT"}},
			wantErr: "invalid column name",
		},
		{
			name:    "unknown_type",
			table:   "dataset_1_sales",
			schema:  domain.ColumnSchema{{Name: "a", Type: "JSONB"}},
			wantErr: "invalid column type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CreateDataTable(tt.table, tt.schema)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddColumn(t *testing.T) {
	tests := []struct {
		name           string
		table          string
		column         string
		columnType     string
		defaultLiteral string
		want           string
		wantErr        string
	}{
		{
			name:       "no_default",
			table:      "user_profile",
			column:     "logo_path",
			columnType: "TEXT",
			want:       `ALTER TABLE "user_profile" ADD COLUMN "logo_path" TEXT`,
		},
		{
			name:           "with_default",
			table:          "user_profile",
			column:         "theme_mode",
			columnType:     "TEXT",
			defaultLiteral: "dark",
			want:           `ALTER TABLE "user_profile" ADD COLUMN "theme_mode" TEXT DEFAULT 'dark'`,
		},
		{
			name:           "default_with_quote",
			table:          "user_profile",
			column:         "motto",
			columnType:     "TEXT",
			defaultLiteral: "it's fine",
			want:           `ALTER TABLE "user_profile" ADD COLUMN "motto" TEXT DEFAULT 'it''s fine'`,
		},
		{
			name:       "invalid_column",
			table:      "user_profile",
			column:     "theme-mode",
			columnType: "TEXT",
			wantErr:    "invalid column name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddColumn(tt.table, tt.column, tt.columnType, tt.defaultLiteral)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenameColumn(t *testing.T) {
	got, err := RenameColumn("dataset_1_sales", "unique_id", "row_uid")
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "dataset_1_sales" RENAME COLUMN "unique_id" TO "row_uid"`, got)

	_, err = RenameColumn("dataset_1_sales", "unique id", "row_uid")
	require.Error(t, err)
}

func TestCreateIndex(t *testing.T) {
	tests := []struct {
		name        string
		table       string
		column      string
		notNullOnly bool
		want        string
	}{
		{
			name:   "plain",
			table:  "upload_log",
			column: "dataset_id",
			want:   `CREATE INDEX IF NOT EXISTS "idx_upload_log_dataset_id" ON "upload_log" ("dataset_id")`,
		},
		{
			name:        "partial",
			table:       "enriched_sales",
			column:      "sentiment",
			notNullOnly: true,
			want:        `CREATE INDEX IF NOT EXISTS "idx_enriched_sales_sentiment_not_null" ON "enriched_sales" ("sentiment") WHERE "sentiment" IS NOT NULL`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CreateIndex(tt.table, tt.column, tt.notNullOnly)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateUniqueIndex(t *testing.T) {
	got, err := CreateUniqueIndex("knowledge_emails_contacts_v1", "key_id")
	require.NoError(t, err)
	assert.Equal(t,
		`CREATE UNIQUE INDEX IF NOT EXISTS "uidx_knowledge_emails_contacts_v1_key_id" ON "knowledge_emails_contacts_v1" ("key_id")`,
		got)
}

func TestInsertInto(t *testing.T) {
	got, err := InsertInto("dataset_1_sales", []string{"row_uid", "company"})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "dataset_1_sales" ("row_uid", "company") VALUES (?, ?)`, got)

	_, err = InsertInto("dataset_1_sales", nil)
	require.Error(t, err)

	_, err = InsertInto("dataset_1_sales", []string{"bad name"})
	require.Error(t, err)
}

func TestDropTable(t *testing.T) {
	got, err := DropTable("dataset_1_sales")
	require.NoError(t, err)
	assert.Equal(t, `DROP TABLE IF EXISTS "dataset_1_sales"`, got)
}
