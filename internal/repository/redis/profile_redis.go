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

// RedisProfileRepository stores each profile as a JSON document under profile:<uid>.
type RedisProfileRepository struct {
	client *redis.Client
	now    func() time.Time
}

func makeProfileKey(uid string) string {
	return fmt.Sprintf("profile:%s", uid)
}

func NewRedisProfileRepository(client *redis.Client) *RedisProfileRepository {
	return &RedisProfileRepository{client: client, now: time.Now}
}

var _ repository.ProfileRepository = (*RedisProfileRepository)(nil)

// EnsureProfile writes the initial document with SETNX, so concurrent or repeated
// calls never replace a document that already exists.
func (r *RedisProfileRepository) EnsureProfile(ctx context.Context, identity *models.Identity, additionalData map[string]any) (repository.ProfileHandle, error) {
	if identity == nil || identity.UID == "" {
		return nil, errors.New("identity with a UID is required")
	}
	key := makeProfileKey(identity.UID)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis EXISTS failed: %w", err)
	}
	if exists == 0 {
		doc, err := json.Marshal(models.NewProfileRecord(identity, additionalData, r.now()))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}
		if err := r.client.SetNX(ctx, key, doc, 0).Err(); err != nil {
			return nil, fmt.Errorf("redis SETNX failed: %w", err)
		}
	}
	return &redisProfileHandle{client: r.client, id: identity.UID}, nil
}

type redisProfileHandle struct {
	client *redis.Client
	id     string
}

func (h *redisProfileHandle) ID() string {
	return h.id
}

func (h *redisProfileHandle) Fetch(ctx context.Context) (*models.ProfileRecord, error) {
	jsonData, err := h.client.Get(ctx, makeProfileKey(h.id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}

	var rec models.ProfileRecord
	if err := json.Unmarshal(jsonData, &rec); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}
	return &rec, nil
}
