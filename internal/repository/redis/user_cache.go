package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/Discdoor/dd-auth/internal/core/domain"
	"github.com/Discdoor/dd-auth/internal/repository"
)

const defaultCacheViewPrefix = "dd:user_cache"

// UserCacheRepository stores public identity projections for sibling services.
type UserCacheRepository struct {
	client *red.Client
	prefix string
	ttl    time.Duration
}

// NewUserCacheRepository constructs a cache-view store helper.
func NewUserCacheRepository(client *red.Client, keyPrefix string, ttl time.Duration) *UserCacheRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultCacheViewPrefix
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &UserCacheRepository{client: client, prefix: prefix, ttl: ttl}
}

// Put stores the cache view keyed by user id.
func (r *UserCacheRepository) Put(ctx context.Context, view domain.CacheView) error {
	key := r.key(view.ID)
	if key == "" {
		return fmt.Errorf("user id is required")
	}

	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal cache view: %w", err)
	}

	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cache view: %w", err)
	}
	return nil
}

// Get fetches the cache view, returning ErrNotFound on cache miss.
func (r *UserCacheRepository) Get(ctx context.Context, userID string) (*domain.CacheView, error) {
	key := r.key(userID)
	if key == "" {
		return nil, fmt.Errorf("user id is required")
	}

	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get cache view: %w", err)
	}

	var view domain.CacheView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		return nil, fmt.Errorf("unmarshal cache view: %w", err)
	}

	return &view, nil
}

// Remove drops the cache view entry.
func (r *UserCacheRepository) Remove(ctx context.Context, userID string) error {
	key := r.key(userID)
	if key == "" {
		return fmt.Errorf("user id is required")
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete cache view: %w", err)
	}
	return nil
}

func (r *UserCacheRepository) key(userID string) string {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", r.prefix, trimmed)
}
