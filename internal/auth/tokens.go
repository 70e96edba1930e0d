package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/minimart-pos/minimart-pos/internal/rbac"
	"github.com/minimart-pos/minimart-pos/internal/shared"
)

const tokenKeyPrefix = "session:"

// TokenStore keeps opaque bearer tokens in redis. A token maps to the actor
// it was issued for and expires after the configured TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

type storedActor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Issue creates a fresh token for the actor.
func (s *TokenStore) Issue(ctx context.Context, actor rbac.Actor) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(storedActor{
		ID:       actor.ID,
		Username: actor.Username,
		FullName: actor.FullName,
		Email:    actor.Email,
		Role:     string(actor.Role),
	})
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, tokenKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the actor a token was issued for. An unknown or expired
// token maps to ErrUnauthorized.
func (s *TokenStore) Resolve(ctx context.Context, token string) (rbac.Actor, error) {
	raw, err := s.client.Get(ctx, tokenKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return rbac.Actor{}, shared.ErrUnauthorized
		}
		return rbac.Actor{}, err
	}
	var stored storedActor
	if err := json.Unmarshal(raw, &stored); err != nil {
		return rbac.Actor{}, shared.ErrUnauthorized
	}
	role, err := rbac.ParseRole(stored.Role)
	if err != nil {
		return rbac.Actor{}, shared.ErrUnauthorized
	}
	return rbac.Actor{
		ID:       stored.ID,
		Username: stored.Username,
		FullName: stored.FullName,
		Email:    stored.Email,
		Role:     role,
	}, nil
}

// Revoke invalidates a token on logout. Revoking an unknown token is a no-op.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, tokenKeyPrefix+token).Err()
}
