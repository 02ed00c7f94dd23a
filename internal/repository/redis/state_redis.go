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

// RedisStateRepository implements StateRepository using Redis.
type RedisStateRepository struct {
	client *redis.Client
}

func makeStateKey(state string) string {
	return fmt.Sprintf("oauth_state:%s", state)
}

func NewRedisStateRepository(client *redis.Client) *RedisStateRepository {
	return &RedisStateRepository{client: client}
}

var _ repository.StateRepository = (*RedisStateRepository)(nil)

func (r *RedisStateRepository) StoreAuthState(ctx context.Context, state *models.AuthState) error {
	if state == nil || state.State == "" {
		return errors.New("invalid auth state: state must be set")
	}
	ttl := time.Until(state.Expiry)
	if ttl <= 0 {
		return errors.New("invalid auth state: expiry must be in the future")
	}

	jsonData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal auth state: %w", err)
	}
	if err := r.client.Set(ctx, makeStateKey(state.State), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}

// ConsumeAuthState deletes the state in a WATCH transaction, only when it
// belongs to clientID. A concurrent consume makes the transaction fail.
func (r *RedisStateRepository) ConsumeAuthState(ctx context.Context, state, clientID string) (*models.AuthState, error) {
	key := makeStateKey(state)
	var st models.AuthState
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		jsonData, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return err
		}
		if err := json.Unmarshal(jsonData, &st); err != nil {
			return fmt.Errorf("json unmarshal failed: %w", err)
		}
		if st.ClientID != clientID {
			return repository.ErrStateNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)
	switch {
	case errors.Is(err, redis.Nil), errors.Is(err, redis.TxFailedErr), errors.Is(err, repository.ErrStateNotFound):
		return nil, repository.ErrStateNotFound
	case err != nil:
		return nil, fmt.Errorf("redis consume auth state failed: %w", err)
	}
	if st.IsExpired() {
		return nil, repository.ErrStateNotFound
	}
	return &st, nil
}
