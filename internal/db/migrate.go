package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// EmbedMigrations contains the embedded baseline SQL migration files.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS

// RunBaseline executes all pending goose migrations against the catalog.
// The baseline creates the static metadata tables; runtime-declared tables
// and legacy column drift are handled afterwards by the migration engine,
// which inspects live state and cannot be expressed as static SQL.
func RunBaseline(sqlDB *sql.DB) error {
	goose.SetBaseFS(EmbedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}
