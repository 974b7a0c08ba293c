// Package integrity reconciles the descriptor catalog against the physical
// schema: tables without descriptors, descriptors without tables, and
// enriched descriptors pointing at deleted source datasets.
package integrity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"wrangler/internal/domain"
)

// Reconciler detects and repairs drift between the catalog and the
// physical schema.
type Reconciler struct {
	datasets  domain.DatasetStore
	enriched  domain.EnrichedStore
	knowledge domain.KnowledgeStore
	physical  domain.PhysicalTables
	logger    *slog.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(
	datasets domain.DatasetStore,
	enriched domain.EnrichedStore,
	knowledge domain.KnowledgeStore,
	physical domain.PhysicalTables,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		datasets:  datasets,
		enriched:  enriched,
		knowledge: knowledge,
		physical:  physical,
		logger:    logger.With("component", "integrity"),
	}
}

// catalog is one consistent read of every descriptor family.
type catalog struct {
	datasets  []domain.DatasetDescriptor
	enriched  []domain.EnrichedDescriptor
	knowledge []domain.KnowledgeDescriptor
}

func (r *Reconciler) load(ctx context.Context) (*catalog, error) {
	var c catalog
	var err error
	if c.datasets, err = r.datasets.List(ctx); err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	if c.enriched, err = r.enriched.List(ctx); err != nil {
		return nil, fmt.Errorf("listing enriched datasets: %w", err)
	}
	if c.knowledge, err = r.knowledge.List(ctx); err != nil {
		return nil, fmt.Errorf("listing knowledge tables: %w", err)
	}
	return &c, nil
}

// descriptors flattens the catalog into per-family descriptor views.
func (c *catalog) descriptors(family domain.Family) []domain.OrphanDescriptor {
	var out []domain.OrphanDescriptor
	switch family {
	case domain.FamilyDataset:
		for _, d := range c.datasets {
			out = append(out, domain.OrphanDescriptor{
				Family: family, ID: d.ID, Name: d.Name, TableName: d.TableName,
			})
		}
	case domain.FamilyEnriched:
		for _, d := range c.enriched {
			out = append(out, domain.OrphanDescriptor{
				Family: family, ID: d.ID, Name: d.Name, TableName: d.TableName,
			})
		}
	case domain.FamilyKnowledge:
		for _, d := range c.knowledge {
			out = append(out, domain.OrphanDescriptor{
				Family: family, ID: d.ID, Name: d.Name, TableName: d.TableName,
			})
		}
	}
	return out
}

// Check reflects the physical schema once and diffs it against the catalog.
// It never mutates anything.
func (r *Reconciler) Check(ctx context.Context) (*domain.IntegrityReport, error) {
	c, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	tables, err := r.physical.TableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing physical tables: %w", err)
	}
	physicalSet := make(map[string]bool, len(tables))
	for _, t := range tables {
		physicalSet[t] = true
	}

	report := &domain.IntegrityReport{
		OrphanTables: make(map[domain.Family][]string),
		CheckedAt:    time.Now().UTC(),
	}

	for _, family := range domain.Families {
		described := make(map[string]bool)
		for _, d := range c.descriptors(family) {
			described[d.TableName] = true
			if !physicalSet[d.TableName] {
				report.OrphanDescriptors = append(report.OrphanDescriptors, d)
			}
		}
		for _, t := range tables {
			if strings.HasPrefix(t, family.Prefix()) && !described[t] {
				report.OrphanTables[family] = append(report.OrphanTables[family], t)
			}
		}
	}

	datasetIDs := make(map[int64]bool, len(c.datasets))
	for _, d := range c.datasets {
		datasetIDs[d.ID] = true
	}
	for _, e := range c.enriched {
		if !datasetIDs[e.SourceDatasetID] {
			report.DanglingRefs = append(report.DanglingRefs, domain.DanglingReference{
				EnrichedID:      e.ID,
				Name:            e.Name,
				SourceDatasetID: e.SourceDatasetID,
			})
		}
	}

	return report, nil
}

// Repair plans the actions that would resolve every issue Check found and,
// unless dryRun is set, executes them. Each action runs independently; a
// failing action is recorded and the rest still run. Re-running Repair
// after a partial failure retries only what is still broken.
func (r *Reconciler) Repair(ctx context.Context, dryRun bool) (*domain.RepairReport, error) {
	report, err := r.Check(ctx)
	if err != nil {
		return nil, err
	}

	plan := r.plan(ctx, report)
	result := &domain.RepairReport{DryRun: dryRun, Actions: plan}
	if dryRun {
		return result, nil
	}

	for _, action := range plan {
		if err := r.execute(ctx, action); err != nil {
			r.logger.Error("repair action failed",
				"kind", action.Kind, "family", action.Family,
				"table", action.TableName, "error", err)
			result.Failures = append(result.Failures, domain.RepairFailure{
				Action: action,
				Err:    err.Error(),
			})
		}
	}
	return result, nil
}

func (r *Reconciler) plan(ctx context.Context, report *domain.IntegrityReport) []domain.RepairAction {
	var actions []domain.RepairAction

	// Membership in a family is inferred from the table name prefix alone,
	// so dropping an orphan table is irreversible and worth flagging loudly.
	for _, family := range domain.Families {
		for _, table := range report.OrphanTables[family] {
			r.logger.Warn("orphan table scheduled for drop",
				"family", family, "table", table)
			actions = append(actions, domain.RepairAction{
				Kind:      domain.RepairDropTable,
				Family:    family,
				TableName: table,
			})
		}
	}

	// A dangling enriched descriptor can also be orphaned; plan its
	// deletion once.
	planned := make(map[int64]bool)

	for _, d := range report.OrphanDescriptors {
		if d.Family == domain.FamilyEnriched {
			planned[d.ID] = true
		}
		actions = append(actions, domain.RepairAction{
			Kind:         domain.RepairDeleteDescriptor,
			Family:       d.Family,
			TableName:    d.TableName,
			DescriptorID: d.ID,
			Name:         d.Name,
		})
	}

	for _, ref := range report.DanglingRefs {
		if planned[ref.EnrichedID] {
			continue
		}
		table := r.enrichedTableName(ctx, ref.EnrichedID)
		actions = append(actions, domain.RepairAction{
			Kind:         domain.RepairDeleteDescriptor,
			Family:       domain.FamilyEnriched,
			TableName:    table,
			DescriptorID: ref.EnrichedID,
			Name:         ref.Name,
		})
		if table != "" {
			actions = append(actions, domain.RepairAction{
				Kind:      domain.RepairDropTable,
				Family:    domain.FamilyEnriched,
				TableName: table,
			})
		}
	}

	return actions
}

// enrichedTableName resolves the physical table behind a dangling enriched
// descriptor, returning "" when the descriptor or table is already gone.
func (r *Reconciler) enrichedTableName(ctx context.Context, id int64) string {
	d, err := r.enriched.Get(ctx, id)
	if err != nil {
		return ""
	}
	exists, err := r.physical.TableExists(ctx, d.TableName)
	if err != nil || !exists {
		return ""
	}
	return d.TableName
}

func (r *Reconciler) execute(ctx context.Context, action domain.RepairAction) error {
	switch action.Kind {
	case domain.RepairDropTable:
		return r.physical.DropTable(ctx, action.TableName)
	case domain.RepairDeleteDescriptor:
		switch action.Family {
		case domain.FamilyDataset:
			return r.datasets.Delete(ctx, action.DescriptorID)
		case domain.FamilyEnriched:
			return r.enriched.Delete(ctx, action.DescriptorID)
		case domain.FamilyKnowledge:
			return r.knowledge.Delete(ctx, action.DescriptorID)
		}
		return fmt.Errorf("unknown family %q", action.Family)
	}
	return fmt.Errorf("unknown repair action %q", action.Kind)
}
