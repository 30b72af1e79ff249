package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_Memory(t *testing.T) {
	db, err := OpenSQLite(MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, MigrateSQLite(ctx, db))
	require.NoError(t, MigrateSQLite(ctx, db), "second run should be a no-op")

	var count int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('server_variables', 'player_variables', 'cycle_progress')").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestOpenSQLite_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vars.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, path)
}
