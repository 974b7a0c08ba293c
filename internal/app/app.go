// Package app provides application-level wiring and dependency injection
// for the wrangler application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"wrangler/internal/config"
	"wrangler/internal/db"
	"wrangler/internal/ingest"
	"wrangler/internal/integrity"
	"wrangler/internal/migrate"
	"wrangler/internal/repository"
	"wrangler/internal/service"
)

// Deps holds the external dependencies that main() must provide: database
// handles, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Lifecycle  *service.Lifecycle
	Pipeline   *ingest.Pipeline
	Migrator   *migrate.Engine
	Reconciler *integrity.Reconciler

	// MigrationResult is the outcome of the startup migration run.
	MigrationResult *migrate.Result
}

// New runs the embedded baseline migrations, the dynamic migration engine,
// and wires all repositories and services from the provided deps.
func New(ctx context.Context, deps Deps) (*App, error) {
	if err := db.RunBaseline(deps.WriteDB); err != nil {
		return nil, fmt.Errorf("baseline migrations: %w", err)
	}

	// Repositories (write-pool)
	datasetRepo := repository.NewDatasetRepo(deps.WriteDB)
	enrichedRepo := repository.NewEnrichedRepo(deps.WriteDB)
	knowledgeRepo := repository.NewKnowledgeRepo(deps.WriteDB)
	physicalRepo := repository.NewPhysicalRepo(deps.WriteDB)
	loader := repository.NewFileLoader(deps.WriteDB, physicalRepo)

	// Repositories (read-pool)
	uploadRepo := repository.NewUploadLogRepo(deps.ReadDB)

	migrator := migrate.NewEngine(deps.WriteDB, enrichedRepo, physicalRepo, deps.Logger)
	result, err := migrator.Run(ctx)
	if err != nil {
		return nil, err
	}
	if result.IndexFailures > 0 {
		deps.Logger.Warn("migration completed with index failures", "count", result.IndexFailures)
	}

	lifecycle := service.NewLifecycle(
		datasetRepo, enrichedRepo, knowledgeRepo, uploadRepo, physicalRepo, deps.Logger)
	pipeline := ingest.NewPipeline(
		datasetRepo, uploadRepo, loader, ingest.NewCSVParser(), deps.Logger)
	reconciler := integrity.NewReconciler(
		datasetRepo, enrichedRepo, knowledgeRepo, physicalRepo, deps.Logger)

	return &App{
		Lifecycle:       lifecycle,
		Pipeline:        pipeline,
		Migrator:        migrator,
		Reconciler:      reconciler,
		MigrationResult: result,
	}, nil
}
