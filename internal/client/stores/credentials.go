// Package stores implements the client's durable state: the session token
// (encrypted at rest, with a plain fallback backend) and the cached user
// profile. Callers only see the narrow store contracts; which backend
// served a request is an implementation detail.
//
// Token values are never logged by any code in this package.
package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitaltrack/vitaltrack/internal/logging"
)

// Storage keys. The token lives under the same key in both backends.
const (
	keyToken     = "auth_token"
	keyProfile   = "user_profile"
	keyInstallID = "install_id"
)

// CredentialStore holds the one secret the client owns: the bearer token.
// Token returns "" when no token is stored.
type CredentialStore interface {
	SetToken(ctx context.Context, token string) error
	Token(ctx context.Context) (string, error)
	RemoveToken(ctx context.Context) error
}

// TokenBackend is one physical storage location for the token. Get
// reports found=false for a missing token, which is not an error.
type TokenBackend interface {
	Put(ctx context.Context, token string) error
	Get(ctx context.Context) (token string, found bool, err error)
	Remove(ctx context.Context) error
}

// DualStore tries the encrypted backend first and degrades to the plain
// one, so a broken secure store never loses the token.
type DualStore struct {
	primary  TokenBackend
	fallback TokenBackend
	log      logging.Logger
}

func NewDualStore(primary, fallback TokenBackend, log logging.Logger) *DualStore {
	return &DualStore{primary: primary, fallback: fallback, log: log}
}

// SetToken writes to the encrypted backend; if that fails, the same value
// is written to the fallback instead. Failure of both is propagated.
func (s *DualStore) SetToken(ctx context.Context, token string) error {
	primaryErr := s.primary.Put(ctx, token)
	if primaryErr == nil {
		return nil
	}
	s.log.Warn(ctx, "secure token write failed, using fallback store", "error", primaryErr)

	if err := s.fallback.Put(ctx, token); err != nil {
		return fmt.Errorf("token write failed in both stores: %w", errors.Join(primaryErr, err))
	}
	return nil
}

// Token reads the encrypted backend first. A missing token is not a
// failure and does not consult the fallback; an actual read error does.
func (s *DualStore) Token(ctx context.Context) (string, error) {
	token, found, err := s.primary.Get(ctx)
	if err == nil {
		if !found {
			return "", nil
		}
		return token, nil
	}
	s.log.Warn(ctx, "secure token read failed, using fallback store", "error", err)

	token, found, fbErr := s.fallback.Get(ctx)
	if fbErr != nil {
		return "", fmt.Errorf("token read failed in both stores: %w", errors.Join(err, fbErr))
	}
	if !found {
		return "", nil
	}
	return token, nil
}

// RemoveToken deletes from the encrypted backend and, if that fails, from
// the fallback. Removing an absent token is a no-op.
func (s *DualStore) RemoveToken(ctx context.Context) error {
	primaryErr := s.primary.Remove(ctx)
	if primaryErr == nil {
		// Also clear the fallback: the token may have landed there during
		// an earlier secure-store outage.
		if err := s.fallback.Remove(ctx); err != nil {
			s.log.Warn(ctx, "fallback token delete failed", "error", err)
		}
		return nil
	}
	s.log.Warn(ctx, "secure token delete failed, deleting from fallback store", "error", primaryErr)

	if err := s.fallback.Remove(ctx); err != nil {
		return fmt.Errorf("token delete failed in both stores: %w", errors.Join(primaryErr, err))
	}
	return nil
}
