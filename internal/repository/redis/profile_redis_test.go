package redis

import (
	"context"
	"testing"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisProfileRepository(t *testing.T) {
	ctx := context.Background()
	identity := &models.Identity{UID: "uid-1", Email: "a@x.com", Provider: "password"}

	t.Run("EnsureAndFetch", func(t *testing.T) {
		mr, client := newTestRedisClient(t)
		defer mr.Close()
		repo := NewRedisProfileRepository(client)

		handle, err := repo.EnsureProfile(ctx, identity, map[string]any{"displayName": "Ann", "newsletter": true})
		require.NoError(t, err)
		assert.Equal(t, "uid-1", handle.ID())
		assert.True(t, mr.Exists(makeProfileKey("uid-1")))

		rec, err := handle.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "uid-1", rec.ID)
		assert.Equal(t, "Ann", rec.DisplayName)
		assert.Equal(t, "a@x.com", rec.Email)
		assert.Equal(t, true, rec.Extra["newsletter"])
		assert.False(t, rec.CreatedAt.IsZero())
	})

	t.Run("SecondEnsureKeepsFirstDocument", func(t *testing.T) {
		mr, client := newTestRedisClient(t)
		defer mr.Close()
		repo := NewRedisProfileRepository(client)

		_, err := repo.EnsureProfile(ctx, identity, map[string]any{"displayName": "Ann"})
		require.NoError(t, err)
		handle, err := repo.EnsureProfile(ctx, identity, nil)
		require.NoError(t, err)

		rec, err := handle.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Ann", rec.DisplayName)
	})

	t.Run("FetchMissing", func(t *testing.T) {
		mr, client := newTestRedisClient(t)
		defer mr.Close()

		handle := &redisProfileHandle{client: client, id: "ghost"}
		_, err := handle.Fetch(ctx)
		assert.ErrorIs(t, err, repository.ErrProfileNotFound)
	})

	t.Run("RedisError", func(t *testing.T) {
		mr, client := newTestRedisClient(t)
		repo := NewRedisProfileRepository(client)
		mr.Close()

		_, err := repo.EnsureProfile(ctx, identity, nil)
		assert.ErrorContains(t, err, "redis EXISTS failed")
	})
}
