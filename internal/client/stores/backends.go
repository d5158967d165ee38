package stores

import (
	"context"
	"fmt"

	"github.com/vitaltrack/vitaltrack/internal/client/repositories/kv"
	"github.com/vitaltrack/vitaltrack/internal/cryptox"
)

// SecureBackend keeps the token AES-GCM sealed in the secure_store table.
type SecureBackend struct {
	repo   kv.Repository
	sealer *cryptox.Sealer
}

func NewSecureBackend(repo kv.Repository, sealer *cryptox.Sealer) *SecureBackend {
	return &SecureBackend{repo: repo, sealer: sealer}
}

func (b *SecureBackend) Put(ctx context.Context, token string) error {
	sealed, err := b.sealer.Seal([]byte(token))
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	return b.repo.Set(ctx, keyToken, sealed)
}

func (b *SecureBackend) Get(ctx context.Context) (string, bool, error) {
	sealed, err := b.repo.Get(ctx, keyToken)
	if err != nil {
		return "", false, err
	}
	if sealed == nil {
		return "", false, nil
	}
	plain, err := b.sealer.Open(sealed)
	if err != nil {
		// Undecryptable data is a read failure, not a missing token.
		return "", false, fmt.Errorf("open sealed token: %w", err)
	}
	return string(plain), true, nil
}

func (b *SecureBackend) Remove(ctx context.Context) error {
	return b.repo.Delete(ctx, keyToken)
}

// PlainBackend stores the token unencrypted in the local_store table.
// It exists only as a fallback for secure-store outages.
type PlainBackend struct {
	repo kv.Repository
}

func NewPlainBackend(repo kv.Repository) *PlainBackend {
	return &PlainBackend{repo: repo}
}

func (b *PlainBackend) Put(ctx context.Context, token string) error {
	return b.repo.Set(ctx, keyToken, []byte(token))
}

func (b *PlainBackend) Get(ctx context.Context) (string, bool, error) {
	value, err := b.repo.Get(ctx, keyToken)
	if err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return string(value), true, nil
}

func (b *PlainBackend) Remove(ctx context.Context) error {
	return b.repo.Delete(ctx, keyToken)
}
