package stores

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vitaltrack/vitaltrack/internal/client/repositories/kv"
	"github.com/vitaltrack/vitaltrack/internal/models"
)

// ProfileStore caches the server-owned user profile as JSON text. The
// profile and the token are never stored together; this store must not
// be handed the secure table.
type ProfileStore interface {
	SetUser(ctx context.Context, user *models.UserProfile) error
	User(ctx context.Context) (*models.UserProfile, error)
	RemoveUser(ctx context.Context) error
}

type KVProfileStore struct {
	repo kv.Repository
}

func NewKVProfileStore(repo kv.Repository) *KVProfileStore {
	return &KVProfileStore{repo: repo}
}

func (s *KVProfileStore) SetUser(ctx context.Context, user *models.UserProfile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return s.repo.Set(ctx, keyProfile, data)
}

// User returns the cached profile. A record that no longer decodes (the
// schema may have evolved between app versions) reads as no profile.
func (s *KVProfileStore) User(ctx context.Context) (*models.UserProfile, error) {
	data, err := s.repo.Get(ctx, keyProfile)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var user models.UserProfile
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, nil
	}
	return &user, nil
}

func (s *KVProfileStore) RemoveUser(ctx context.Context) error {
	return s.repo.Delete(ctx, keyProfile)
}
