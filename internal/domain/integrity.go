package domain

import "time"

// OrphanDescriptor is a descriptor whose physical table no longer exists.
type OrphanDescriptor struct {
	Family    Family
	ID        int64
	Name      string
	TableName string
}

// DanglingReference is an enriched descriptor whose source dataset id no
// longer resolves.
type DanglingReference struct {
	EnrichedID      int64
	Name            string
	SourceDatasetID int64
}

// IntegrityReport is the ephemeral result of one consistency check between
// descriptors and physical tables.
type IntegrityReport struct {
	// OrphanTables maps each family to physical tables matching the family
	// prefix that no descriptor references.
	OrphanTables map[Family][]string

	OrphanDescriptors []OrphanDescriptor
	DanglingRefs      []DanglingReference
	CheckedAt         time.Time
}

// TotalIssues returns the number of divergences in the report.
func (r *IntegrityReport) TotalIssues() int {
	n := len(r.OrphanDescriptors) + len(r.DanglingRefs)
	for _, tables := range r.OrphanTables {
		n += len(tables)
	}
	return n
}

// RepairActionKind identifies what a repair action does.
type RepairActionKind string

// Repair action kinds.
const (
	RepairDropTable        RepairActionKind = "drop_table"
	RepairDeleteDescriptor RepairActionKind = "delete_descriptor"
)

// RepairAction is one planned or executed repair step.
type RepairAction struct {
	Kind         RepairActionKind
	Family       Family
	TableName    string // set for drop_table
	DescriptorID int64  // set for delete_descriptor
	Name         string // descriptor name, for delete_descriptor
}

// RepairFailure records an action that was attempted and failed. The
// surrounding repair continues past it.
type RepairFailure struct {
	Action RepairAction
	Err    string
}

// RepairReport describes the outcome of a repair pass. Under DryRun the
// Actions list is the plan and nothing was executed.
type RepairReport struct {
	DryRun   bool
	Actions  []RepairAction
	Failures []RepairFailure
}
