// Package db provides database connectivity helpers and migration support.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

// PoolMode selects write-safety and sizing for an opened pool.
type PoolMode string

const (
	// PoolWrite caps the pool at one connection and acquires the write
	// lock eagerly (_txlock=immediate). All schema and row mutation goes
	// through a pool in this mode.
	PoolWrite PoolMode = "write"
	// PoolRead allows concurrent connections and never takes the write
	// lock up front.
	PoolRead PoolMode = "read"
)

// SQLite DSN parameters. The catalog assumes a single concurrent writer.
const (
	busyTimeoutMillis   = "5000"
	synchronousMode     = "NORMAL"
	journalMode         = "WAL"
	defaultReadPoolSize = 4
	pingTimeout         = 5 * time.Second
)

// OpenSQLite opens a *sql.DB pool for the given SQLite file path. maxOpen
// sizes PoolRead pools (0 means the default of 4) and is ignored for
// PoolWrite. Every pool gets WAL journaling, a 5s busy timeout,
// synchronous=NORMAL, and foreign keys enforced.
func OpenSQLite(path string, mode PoolMode, maxOpen int) (*sql.DB, error) {
	if mode != PoolRead && mode != PoolWrite {
		return nil, fmt.Errorf("invalid SQLite pool mode %q", mode)
	}

	sqlDB, err := sql.Open("sqlite3", buildDSN(path, mode))
	if err != nil {
		return nil, fmt.Errorf("open sqlite (%s): %w", mode, err)
	}

	if mode == PoolWrite {
		maxOpen = 1
	} else if maxOpen <= 0 {
		maxOpen = defaultReadPoolSize
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite (%s): %w", mode, err)
	}

	return sqlDB, nil
}

// OpenSQLitePair opens a write pool and a read pool for the same SQLite
// file. Readers may be concurrent; mutation goes through the write pool.
// readMaxOpen sizes the read pool (0 defaults to 4).
func OpenSQLitePair(path string, readMaxOpen int) (writeDB, readDB *sql.DB, err error) {
	writeDB, err = OpenSQLite(path, PoolWrite, 0)
	if err != nil {
		return nil, nil, err
	}

	readDB, err = OpenSQLite(path, PoolRead, readMaxOpen)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, err
	}

	return writeDB, readDB, nil
}

func buildDSN(path string, mode PoolMode) string {
	params := url.Values{}
	params.Set("_journal_mode", journalMode)
	params.Set("_busy_timeout", busyTimeoutMillis)
	params.Set("_synchronous", synchronousMode)
	params.Set("_foreign_keys", "on")
	if mode == PoolWrite {
		params.Set("_txlock", "immediate")
	}
	return "file:" + path + "?" + params.Encode()
}
