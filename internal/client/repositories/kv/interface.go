// Package kv provides the sqlite-backed key/value repository underlying
// the credential and profile stores. Each repository instance is bound to
// one table; the schema is owned by the embedded migrations.
package kv

import "context"

// Repository is a narrow key/value contract. Get returns (nil, nil) for a
// missing key; Delete of a missing key is a no-op.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
