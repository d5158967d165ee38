package client

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDatabase_CreatesStoreTables(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "client.db")

	db, err := InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range []string{"secure_store", "local_store"} {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestInitDatabase_IsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "client.db")
	ctx := context.Background()

	db1, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db1.Close())

	// Re-opening an already-migrated database must not fail.
	db2, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db2.Close())
}
