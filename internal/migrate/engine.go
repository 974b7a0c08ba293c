// Package migrate implements the dynamic schema migration engine. It runs
// after the embedded baseline migrations and converges schema elements that
// static SQL cannot express: columns on legacy profile tables, renamed row
// identifier columns across every physical data table, and indexes derived
// from the descriptor catalog.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"wrangler/internal/ddl"
	"wrangler/internal/domain"
)

// Step names, in execution order. They appear in Result and in
// MigrationError values.
const (
	StepProfileColumns  = "add_profile_theme_column"
	StepRenameRowUID    = "rename_legacy_row_uid"
	StepKnowledgeTable  = "create_knowledge_table"
	StepEnrichedIndexes = "index_enriched_columns"
	StepMetadataIndexes = "index_metadata_tables"
)

// Result summarizes one engine run.
type Result struct {
	// Applied lists steps that changed the schema, with a short note.
	Applied []string
	// Skipped lists steps whose target state already held.
	Skipped []string
	// IndexFailures counts index creations that failed. Index steps are
	// non-fatal: a failure is logged and counted, and the run continues.
	IndexFailures int
}

// Engine converges a live database onto the current schema. Every step is
// idempotent; running the engine twice in a row applies nothing the second
// time.
type Engine struct {
	db       *sql.DB
	enriched domain.EnrichedStore
	physical domain.PhysicalTables
	logger   *slog.Logger
}

// NewEngine creates an Engine. db must be the write pool.
func NewEngine(db *sql.DB, enriched domain.EnrichedStore, physical domain.PhysicalTables, logger *slog.Logger) *Engine {
	return &Engine{
		db:       db,
		enriched: enriched,
		physical: physical,
		logger:   logger.With("component", "migrate"),
	}
}

// Run executes all steps in order. Steps 1-3 are critical: a failure rolls
// back that step's transaction and aborts the run with a MigrationError.
// The index steps (4-5) never abort; their failures are reported through
// Result.IndexFailures.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	if err := e.addProfileColumns(ctx, res); err != nil {
		return nil, domain.ErrMigration(StepProfileColumns, "%v", err)
	}
	if err := e.renameLegacyRowUID(ctx, res); err != nil {
		return nil, domain.ErrMigration(StepRenameRowUID, "%v", err)
	}
	if err := e.createKnowledgeTable(ctx, res); err != nil {
		return nil, domain.ErrMigration(StepKnowledgeTable, "%v", err)
	}
	e.indexEnrichedColumns(ctx, res)
	e.indexMetadataTables(ctx, res)

	e.logger.Info("migration run complete",
		"applied", len(res.Applied),
		"skipped", len(res.Skipped),
		"index_failures", res.IndexFailures)
	return res, nil
}

// addProfileColumns ensures user_profile carries theme_mode (defaulting to
// dark) and logo_path.
func (e *Engine) addProfileColumns(ctx context.Context, res *Result) error {
	exists, err := e.physical.TableExists(ctx, "user_profile")
	if err != nil {
		return fmt.Errorf("checking for user_profile: %w", err)
	}
	if !exists {
		res.Skipped = append(res.Skipped, StepProfileColumns)
		return nil
	}

	cols, err := e.physical.ColumnNames(ctx, "user_profile")
	if err != nil {
		return fmt.Errorf("inspecting user_profile: %w", err)
	}
	have := toSet(cols)

	type addition struct {
		column, columnType, defaultLiteral string
	}
	var additions []addition
	if !have["theme_mode"] {
		additions = append(additions, addition{"theme_mode", "TEXT", "dark"})
	}
	if !have["logo_path"] {
		additions = append(additions, addition{"logo_path", "TEXT", ""})
	}
	if len(additions) == 0 {
		res.Skipped = append(res.Skipped, StepProfileColumns)
		return nil
	}

	err = e.inTx(ctx, func(tx *sql.Tx) error {
		for _, a := range additions {
			stmt, err := ddl.AddColumn("user_profile", a.column, a.columnType, a.defaultLiteral)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("adding user_profile.%s: %w", a.column, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	res.Applied = append(res.Applied, fmt.Sprintf("%s (%d columns)", StepProfileColumns, len(additions)))
	return nil
}

// renameLegacyRowUID renames the legacy unique_id column to row_uid on
// every dataset and enriched physical table that still carries it.
func (e *Engine) renameLegacyRowUID(ctx context.Context, res *Result) error {
	tables, err := e.physical.TableNames(ctx)
	if err != nil {
		return fmt.Errorf("listing tables: %w", err)
	}

	var pending []string
	for _, table := range tables {
		if !strings.HasPrefix(table, domain.FamilyDataset.Prefix()) &&
			!strings.HasPrefix(table, domain.FamilyEnriched.Prefix()) {
			continue
		}
		cols, err := e.physical.ColumnNames(ctx, table)
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", table, err)
		}
		have := toSet(cols)
		if have[domain.LegacyRowUIDColumn] && !have[domain.RowUIDColumn] {
			pending = append(pending, table)
		}
	}
	if len(pending) == 0 {
		res.Skipped = append(res.Skipped, StepRenameRowUID)
		return nil
	}

	err = e.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range pending {
			stmt, err := ddl.RenameColumn(table, domain.LegacyRowUIDColumn, domain.RowUIDColumn)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("renaming %s.%s: %w", table, domain.LegacyRowUIDColumn, err)
			}
			e.logger.Info("renamed legacy row id column", "table", table)
		}
		return nil
	})
	if err != nil {
		return err
	}

	res.Applied = append(res.Applied, fmt.Sprintf("%s (%d tables)", StepRenameRowUID, len(pending)))
	return nil
}

// createKnowledgeTable creates the knowledge_table catalog table on
// databases that predate it.
func (e *Engine) createKnowledgeTable(ctx context.Context, res *Result) error {
	exists, err := e.physical.TableExists(ctx, "knowledge_table")
	if err != nil {
		return fmt.Errorf("checking knowledge_table: %w", err)
	}
	if exists {
		res.Skipped = append(res.Skipped, StepKnowledgeTable)
		return nil
	}

	const stmt = `CREATE TABLE knowledge_table (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    data_type TEXT NOT NULL,
    table_name TEXT NOT NULL UNIQUE,
    primary_key_column TEXT NOT NULL,
    key_id_column TEXT NOT NULL DEFAULT 'key_id',
    columns_config TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

	err = e.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, stmt)
		return err
	})
	if err != nil {
		return fmt.Errorf("creating knowledge_table: %w", err)
	}

	res.Applied = append(res.Applied, StepKnowledgeTable)
	return nil
}

// indexEnrichedColumns creates a partial index per enrichment-added column
// on every enriched table. Each column is attempted independently.
func (e *Engine) indexEnrichedColumns(ctx context.Context, res *Result) {
	descriptors, err := e.enriched.List(ctx)
	if err != nil {
		e.logger.Warn("listing enriched descriptors for indexing", "error", err)
		res.IndexFailures++
		return
	}

	created := 0
	for _, d := range descriptors {
		for _, column := range d.ColumnsAdded {
			if e.indexExists(ctx, ddl.IndexName(d.TableName, column, true)) {
				continue
			}
			if err := e.physical.CreateIndex(ctx, d.TableName, column, true); err != nil {
				e.logger.Warn("enriched column index failed",
					"table", d.TableName, "column", column, "error", err)
				res.IndexFailures++
				continue
			}
			created++
		}
	}
	if created > 0 {
		res.Applied = append(res.Applied, fmt.Sprintf("%s (%d indexes)", StepEnrichedIndexes, created))
	} else {
		res.Skipped = append(res.Skipped, StepEnrichedIndexes)
	}
}

// indexMetadataTables creates the lookup indexes the upload and knowledge
// paths depend on.
func (e *Engine) indexMetadataTables(ctx context.Context, res *Result) {
	targets := []struct {
		table, column string
	}{
		{"upload_log", "dataset_id"},
		{"upload_log", "filename"},
		{"knowledge_table", "data_type"},
		{"knowledge_table", "table_name"},
	}

	created := 0
	for _, t := range targets {
		if e.indexExists(ctx, ddl.IndexName(t.table, t.column, false)) {
			continue
		}
		if err := e.physical.CreateIndex(ctx, t.table, t.column, false); err != nil {
			e.logger.Warn("metadata index failed",
				"table", t.table, "column", t.column, "error", err)
			res.IndexFailures++
			continue
		}
		created++
	}
	if created > 0 {
		res.Applied = append(res.Applied, fmt.Sprintf("%s (%d indexes)", StepMetadataIndexes, created))
	} else {
		res.Skipped = append(res.Skipped, StepMetadataIndexes)
	}
}

// indexExists treats lookup failures as absence; CreateIndex surfaces any
// real problem on the attempt that follows.
func (e *Engine) indexExists(ctx context.Context, name string) bool {
	var found string
	err := e.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'index' AND name = ?`, name).Scan(&found)
	return err == nil
}

func (e *Engine) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
