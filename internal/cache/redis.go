package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TechbyAbrar/match-making-app/internal/config"
)

// ErrMiss is returned when a key is absent. Callers treat it (and any other
// cache failure) as a miss and fall back to the storage engine.
var ErrMiss = errors.New("cache miss")

// incrIfExists bumps a counter only when the key is already present, so an
// absent counter is reported as a miss instead of being created without the
// caller's TTL policy.
var incrIfExists = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("INCRBY", KEYS[1], ARGV[1])
end
return false
`)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// Increment bumps an existing counter by amount. Returns ErrMiss when the
// counter is absent; the caller seeds it with Set and the right TTL.
func (c *RedisCache) Increment(ctx context.Context, key string, amount int64) (int64, error) {
	res, err := incrIfExists.Run(ctx, c.Client, []string{key}, amount).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, err
	}
	n, ok := res.(int64)
	if !ok {
		return 0, ErrMiss
	}
	return n, nil
}

// GetInt reads a counter. Absent key is a miss, not zero.
func (c *RedisCache) GetInt(ctx context.Context, key string) (int64, error) {
	val, err := c.Client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	return val, err
}

// SetMarkerNX atomically sets a marker key with a TTL if it does not exist.
// Returns true when the marker was created by this call.
func (c *RedisCache) SetMarkerNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.Client.SetNX(ctx, key, 1, ttl).Result()
}

// GetJSON unmarshals a cached JSON value into out. Absent key → ErrMiss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, out interface{}) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), out)
}

// SetJSON marshals value to JSON and stores it with the given TTL.
func (c *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}

// AddToSet adds a member to a set and refreshes the set's TTL.
// Returns true when the member was not already present.
func (c *RedisCache) AddToSet(ctx context.Context, key string, member interface{}, ttl time.Duration) (bool, error) {
	added, err := c.Client.SAdd(ctx, key, member).Result()
	if err != nil {
		return false, err
	}
	_ = c.Client.Expire(ctx, key, ttl).Err()
	return added > 0, nil
}

// SetMembers returns all members of a set. Absent key → empty slice.
func (c *RedisCache) SetMembers(ctx context.Context, key string) ([]string, error) {
	return c.Client.SMembers(ctx, key).Result()
}

// --- cache key builders ---
// Keys are deterministic strings derived from query parameters so identical
// requests within the TTL window share one entry.

func KeyForSearch(query string) string {
	return "user_search:" + query
}

func KeyForWhoLiked(userID uint64, page, pageSize int, radiusKM *float64) string {
	key := fmt.Sprintf("who_liked:%d:page:%d:size:%d", userID, page, pageSize)
	if radiusKM != nil {
		key = fmt.Sprintf("%s:r:%g", key, *radiusKM)
	}
	return key
}

func KeyForFilter(gender string, minAge, maxAge int, maxDistance float64) string {
	return fmt.Sprintf("user_filter:%s:%d:%d:%g", gender, minAge, maxAge, maxDistance)
}

func KeyForBlockList(userID uint64) string {
	return fmt.Sprintf("user_block_list:%d", userID)
}

func KeyForUnread(userID, threadID uint64) string {
	return fmt.Sprintf("chat:unread:%d:%d", userID, threadID)
}

func KeyForTouchMarker(userID uint64) string {
	return fmt.Sprintf("presence:touch:%d", userID)
}

func KeyForStoryViewers(storyID string) string {
	return fmt.Sprintf("story:%s:viewers", storyID)
}

func KeyForStoryViewCount(storyID string) string {
	return fmt.Sprintf("story:%s:view_count", storyID)
}

func KeyForUnreadNotifications(userID uint64) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}
