package cache

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisURLEnv names the environment variable that selects the Redis backend.
const RedisURLEnv = "STOREFRONT_CACHE_REDIS_URL"

const redisPrefix = "storefront-cli:"

// RedisStore is a Cache backed by a shared Redis server, so several
// machines running the CLI against the same shop share lookups.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ Cache = (*RedisStore)(nil)

// NewRedisClient parses a redis:// URL.
func NewRedisClient(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", RedisURLEnv, err)
	}
	return redis.NewClient(opts), nil
}

// NewRedisStore creates a RedisStore with the default TTL.
func NewRedisStore(client *redis.Client, key, baseURL string) *RedisStore {
	return NewRedisStoreWithTTL(client, key, baseURL, DefaultTTL)
}

// NewRedisStoreWithTTL creates a RedisStore with a custom TTL.
func NewRedisStoreWithTTL(client *redis.Client, key, baseURL string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		key:    redisPrefix + entryName(key, baseURL),
		ttl:    ttl,
	}
}

// Get loads cached items into dst.
func (s *RedisStore) Get(ctx context.Context, dst any) bool {
	if Disabled() {
		return false
	}
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		return false
	}
	return decodeEntry(data, s.ttl, dst)
}

// Put writes items with the store TTL as the key expiry.
func (s *RedisStore) Put(ctx context.Context, items any) {
	if Disabled() {
		return
	}
	data, err := encodeEntry(items)
	if err != nil {
		return
	}
	_ = s.client.Set(ctx, s.key, data, s.ttl).Err()
}

// Clear deletes this key.
func (s *RedisStore) Clear(ctx context.Context) {
	_ = s.client.Del(ctx, s.key).Err()
}

// ClearAllRedis deletes every key written by this CLI.
func ClearAllRedis(ctx context.Context, client *redis.Client) error {
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, redisPrefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Open returns the Cache for key: Redis when STOREFRONT_CACHE_REDIS_URL is
// set, otherwise a file store under dir.
func Open(dir, key, baseURL string) (Cache, error) {
	if raw := os.Getenv(RedisURLEnv); strings.TrimSpace(raw) != "" {
		client, err := NewRedisClient(raw)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, key, baseURL), nil
	}
	return NewStore(dir, key, baseURL), nil
}
