package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository(t *testing.T) {
	repo := memory.NewMemorySessionRepository(time.Hour)
	defer repo.StopCleanup()
	ctx := context.Background()

	session := &models.Session{
		SessionID: "token-1",
		ClientID:  "client-1",
		UID:       "uid-1",
		Email:     "a@x.com",
		CreatedAt: time.Now().UTC(),
		Expiry:    time.Now().UTC().Add(time.Hour),
	}

	t.Run("StoreAndGet", func(t *testing.T) {
		require.NoError(t, repo.StoreSession(ctx, session))

		got, err := repo.GetSession(ctx, "client-1")
		require.NoError(t, err)
		assert.Equal(t, "token-1", got.SessionID)
		assert.Equal(t, "uid-1", got.Identity().UID)
	})

	t.Run("StoreReplacesClientSession", func(t *testing.T) {
		next := *session
		next.SessionID = "token-2"
		require.NoError(t, repo.StoreSession(ctx, &next))

		got, err := repo.GetSession(ctx, "client-1")
		require.NoError(t, err)
		assert.Equal(t, "token-2", got.SessionID)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteSession(ctx, "client-1"))
		_, err := repo.GetSession(ctx, "client-1")
		assert.ErrorIs(t, err, repository.ErrSessionNotFound)

		assert.NoError(t, repo.DeleteSession(ctx, "client-1"), "deleting twice is fine")
	})

	t.Run("Expired", func(t *testing.T) {
		expired := *session
		expired.ClientID = "client-expired"
		expired.Expiry = time.Now().UTC().Add(-time.Minute)
		require.NoError(t, repo.StoreSession(ctx, &expired))

		_, err := repo.GetSession(ctx, "client-expired")
		assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	})

	t.Run("InvalidSessionData", func(t *testing.T) {
		assert.Error(t, repo.StoreSession(ctx, nil))
		assert.Error(t, repo.StoreSession(ctx, &models.Session{SessionID: "t", ClientID: "c"}))
		assert.Error(t, repo.StoreSession(ctx, &models.Session{ClientID: "c", UID: "u"}))
	})
}
