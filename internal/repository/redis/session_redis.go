package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
	"github.com/redis/go-redis/v9"
)

// RedisSessionRepository implements SessionRepository using Redis.
type RedisSessionRepository struct {
	client *redis.Client
}

// Helper to construct session key
func makeSessionKey(clientID string) string {
	return fmt.Sprintf("session:%s", clientID)
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{
		client: client,
	}
}

var _ repository.SessionRepository = (*RedisSessionRepository)(nil)

// StoreSession saves the session under the client's key with a TTL matching its expiry.
func (r *RedisSessionRepository) StoreSession(ctx context.Context, session *models.Session) error {
	if session == nil || session.SessionID == "" || session.ClientID == "" || session.UID == "" {
		return errors.New("invalid session data: SessionID, ClientID and UID must be set")
	}

	ttl := max(time.Until(session.Expiry), 0)
	if ttl <= 0 {
		return r.DeleteSession(ctx, session.ClientID)
	}

	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, makeSessionKey(session.ClientID), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}

// GetSession retrieves the client's session from Redis.
// Expiry is enforced by the key TTL and re-checked on the decoded session.
func (r *RedisSessionRepository) GetSession(ctx context.Context, clientID string) (*models.Session, error) {
	sessionKey := makeSessionKey(clientID)

	jsonData, err := r.client.Get(ctx, sessionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(jsonData, &session); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if session.IsExpired() {
		_ = r.client.Del(ctx, sessionKey).Err()
		return nil, repository.ErrSessionNotFound
	}

	return &session, nil
}

func (r *RedisSessionRepository) DeleteSession(ctx context.Context, clientID string) error {
	if err := r.client.Del(ctx, makeSessionKey(clientID)).Err(); err != nil {
		return fmt.Errorf("redis DEL failed: %w", err)
	}
	return nil
}
