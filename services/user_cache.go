package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userCacheKeyPrefix        = "user:detail:"
	userCacheVersionKeyPrefix = "user:detail:version:"
)

var errStaleCacheEntry = errors.New("cache entry invalidated during read")

// UserCache keeps user details in Redis. A nil *UserCache is valid and
// caches nothing.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUserCache returns nil when client is nil.
func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	if client == nil {
		return nil
	}
	return &UserCache{client: client, ttl: ttl}
}

// Get returns the cached detail, or (nil, nil) on a miss.
func (c *UserCache) Get(ctx context.Context, userID string) (*UserDetail, error) {
	if c == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, userCacheKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var detail UserDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Version returns the invalidation counter of userID. Read it before loading
// the row that is later passed to Set.
func (c *UserCache) Version(ctx context.Context, userID string) (int64, error) {
	if c == nil {
		return 0, nil
	}
	version, err := c.client.Get(ctx, userCacheVersionKeyPrefix+userID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// Set stores detail unless the entry was invalidated after version was read,
// in which case detail may predate the invalidating write and is dropped.
func (c *UserCache) Set(ctx context.Context, detail *UserDetail, version int64) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(detail)
	if err != nil {
		return err
	}

	versionKey := userCacheVersionKeyPrefix + detail.ID
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleCacheEntry
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userCacheKeyPrefix+detail.ID, data, c.ttl)
			return nil
		})
		return err
	}, versionKey)
	if errors.Is(err, errStaleCacheEntry) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate bumps the version of userID and drops its cached detail.
func (c *UserCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil {
		return nil
	}
	versionKey := userCacheVersionKeyPrefix + userID
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, c.ttl)
		pipe.Del(ctx, userCacheKeyPrefix+userID)
		return nil
	})
	return err
}
