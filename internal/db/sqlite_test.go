package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_InvalidMode(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "x.sqlite"), PoolMode("readwrite"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SQLite pool mode")
}

func TestOpenSQLitePair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.sqlite")

	writeDB, readDB, err := OpenSQLitePair(path, 2)
	require.NoError(t, err)
	defer func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	}()

	require.NoError(t, writeDB.Ping())
	require.NoError(t, readDB.Ping())

	var fk int
	require.NoError(t, writeDB.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestRunBaseline_Idempotent(t *testing.T) {
	writeDB, _ := OpenTestSQLite(t)

	// OpenTestSQLite already ran the baseline; a second run is a no-op.
	require.NoError(t, RunBaseline(writeDB))

	var name string
	require.NoError(t, writeDB.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'dataset_config'`).Scan(&name))
}

func TestBuildDSN(t *testing.T) {
	write := buildDSN("/tmp/x.sqlite", PoolWrite)
	assert.Contains(t, write, "_txlock=immediate")
	assert.Contains(t, write, "_journal_mode=WAL")

	read := buildDSN("/tmp/x.sqlite", PoolRead)
	assert.NotContains(t, read, "_txlock")
	assert.Contains(t, read, "_busy_timeout=5000")
}
