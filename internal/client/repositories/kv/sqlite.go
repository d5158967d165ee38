package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Allowed tables; queries interpolate the table name, so it must come
// from this fixed set rather than from caller input.
const (
	TableSecure = "secure_store"
	TableLocal  = "local_store"
)

type SQLiteRepository struct {
	db    *sql.DB
	table string
}

func NewSQLiteRepository(db *sql.DB, table string) *SQLiteRepository {
	if table != TableSecure && table != TableLocal {
		panic(fmt.Sprintf("kv: unknown table %q", table))
	}
	return &SQLiteRepository{db: db, table: table}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	q := fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, r.table)
	err := r.db.QueryRowContext(ctx, q, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s[%s]: %w", r.table, key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	q := fmt.Sprintf(`
		INSERT INTO %s (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, r.table)
	if _, err := r.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("failed to set %s[%s]: %w", r.table, key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, r.table)
	if _, err := r.db.ExecContext(ctx, q, key); err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w", r.table, key, err)
	}
	return nil
}
