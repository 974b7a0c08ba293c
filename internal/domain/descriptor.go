package domain

import "time"

// Family identifies which descriptor family a physical table belongs to.
// The family name doubles as the physical table name prefix.
type Family string

// Descriptor families.
const (
	FamilyDataset   Family = "dataset"
	FamilyEnriched  Family = "enriched"
	FamilyKnowledge Family = "knowledge"
)

// Families lists all descriptor families in a stable order.
var Families = []Family{FamilyDataset, FamilyEnriched, FamilyKnowledge}

// Prefix returns the physical table name prefix for the family,
// e.g. "dataset_" for FamilyDataset.
func (f Family) Prefix() string { return string(f) + "_" }

// RowUIDColumn is the generated unique row-identifier column present on
// every physical data table. Values are UUID strings assigned at ingest.
const RowUIDColumn = "row_uid"

// LegacyRowUIDColumn is the pre-rename name of RowUIDColumn. Databases
// created before the rename still carry it; the migration engine converges
// them.
const LegacyRowUIDColumn = "unique_id"

// MaxDatasetSlots bounds the dataset slot number (slots are 1-based).
const MaxDatasetSlots = 5

// Declared column types. Maps onto SQLite storage classes.
const (
	TypeText    = "TEXT"
	TypeInteger = "INTEGER"
	TypeReal    = "REAL"
	TypeBlob    = "BLOB"
)

// ColumnSpec declares one column of a runtime-declared table.
type ColumnSpec struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	IsBlob bool   `json:"is_blob,omitempty"`
}

// ColumnSchema is the ordered column declaration of a descriptor. Order is
// significant: ingestion requires uploaded files to match it exactly.
type ColumnSchema []ColumnSpec

// Names returns the declared column names in order.
func (s ColumnSchema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the schema declares a column with the given name.
func (s ColumnSchema) Has(name string) bool {
	for _, c := range s {
		if c.Name == name {
			return true
		}
	}
	return false
}

// DatasetDescriptor declares a user dataset occupying one of the fixed
// dataset slots.
type DatasetDescriptor struct {
	ID          int64
	Name        string
	Slot        int
	TableName   string
	Columns     ColumnSchema
	BlobColumns []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EnrichedDescriptor declares a derived table produced by enriching a source
// dataset with additional computed columns.
type EnrichedDescriptor struct {
	ID               int64
	Name             string
	SourceDatasetID  int64
	TableName        string
	SourceTableName  string
	EnrichmentConfig map[string]string
	ColumnsAdded     []string
	LastSyncAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Knowledge table data types.
const (
	KnowledgePhoneNumbers = "phone_numbers"
	KnowledgeEmails       = "emails"
	KnowledgeWebDomains   = "web_domains"
)

// KnowledgeKeyColumn is the standardized key column every knowledge table
// carries for value-based linking.
const KnowledgeKeyColumn = "key_id"

// KnowledgeDescriptor declares a reference table of standardized key values
// used for linking enriched data.
type KnowledgeDescriptor struct {
	ID               int64
	Name             string
	DataType         string
	TableName        string
	PrimaryKeyColumn string
	KeyIDColumn      string
	Columns          ColumnSchema
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
