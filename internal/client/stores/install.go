package stores

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitaltrack/vitaltrack/internal/client/repositories/kv"
)

// EnsureInstallID returns the per-install client identifier, minting and
// persisting one on first use. The ID is not a secret; it stands in for
// the device identifier the mobile app attaches to API traffic.
func EnsureInstallID(ctx context.Context, repo kv.Repository) (string, error) {
	value, err := repo.Get(ctx, keyInstallID)
	if err != nil {
		return "", err
	}
	if value != nil {
		return string(value), nil
	}

	id := uuid.NewString()
	if err := repo.Set(ctx, keyInstallID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}
