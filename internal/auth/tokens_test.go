package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/minimart-pos/minimart-pos/internal/rbac"
	"github.com/minimart-pos/minimart-pos/internal/shared"
)

func newTestStore(t *testing.T, ttl time.Duration) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenStore(client, ttl), mr
}

func TestIssueAndResolve(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	actor := rbac.Actor{ID: 5, Username: "casey", FullName: "Casey Cash", Email: "casey@example.com", Role: rbac.RoleCashier}
	token, err := store.Issue(context.Background(), actor)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := store.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, actor, resolved)
}

func TestResolveUnknownToken(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.Resolve(context.Background(), "not-a-token")
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestTokenExpires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)

	token, err := store.Issue(context.Background(), rbac.Actor{ID: 5, Role: rbac.RoleAdmin, Username: "root"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Resolve(context.Background(), token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestRevoke(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	token, err := store.Issue(context.Background(), rbac.Actor{ID: 5, Role: rbac.RoleStaff, Username: "sam"})
	require.NoError(t, err)

	require.NoError(t, store.Revoke(context.Background(), token))

	_, err = store.Resolve(context.Background(), token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)

	// Revoking again is harmless.
	require.NoError(t, store.Revoke(context.Background(), token))
}
