package stores

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vitaltrack/vitaltrack/internal/client/repositories/kv"
	"github.com/vitaltrack/vitaltrack/internal/cryptox"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "stores.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE secure_store (key TEXT PRIMARY KEY, value BLOB NOT NULL);
CREATE TABLE local_store  (key TEXT PRIMARY KEY, value BLOB NOT NULL);
`)
	require.NoError(t, err)
	return db
}

func newSealer(t *testing.T) *cryptox.Sealer {
	t.Helper()
	s, err := cryptox.NewSealerFromKeyFile(filepath.Join(t.TempDir(), "install.key"))
	require.NoError(t, err)
	return s
}

func TestSecureBackend_RoundTrip(t *testing.T) {
	db := setupDB(t)
	b := NewSecureBackend(kv.NewSQLiteRepository(db, kv.TableSecure), newSealer(t))
	ctx := context.Background()

	_, found, err := b.Get(ctx)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, b.Put(ctx, "tok123"))

	token, found, err := b.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "tok123", token)

	require.NoError(t, b.Remove(ctx))
	_, found, err = b.Get(ctx)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSecureBackend_StoresCiphertextOnly(t *testing.T) {
	db := setupDB(t)
	b := NewSecureBackend(kv.NewSQLiteRepository(db, kv.TableSecure), newSealer(t))
	require.NoError(t, b.Put(context.Background(), "tok123"))

	var raw []byte
	err := db.QueryRow(`SELECT value FROM secure_store WHERE key='auth_token'`).Scan(&raw)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "tok123")
}

func TestSecureBackend_WrongKeyIsReadError(t *testing.T) {
	db := setupDB(t)
	repo := kv.NewSQLiteRepository(db, kv.TableSecure)

	require.NoError(t, NewSecureBackend(repo, newSealer(t)).Put(context.Background(), "tok123"))

	// A different sealer cannot open the sealed value; that must surface
	// as an error, not as token-absent.
	_, found, err := NewSecureBackend(repo, newSealer(t)).Get(context.Background())
	require.Error(t, err)
	require.False(t, found)
}

func TestPlainBackend_RoundTrip(t *testing.T) {
	db := setupDB(t)
	b := NewPlainBackend(kv.NewSQLiteRepository(db, kv.TableLocal))
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "tok123"))
	token, found, err := b.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "tok123", token)

	require.NoError(t, b.Remove(ctx))
	_, found, err = b.Get(ctx)
	require.NoError(t, err)
	require.False(t, found)
}
