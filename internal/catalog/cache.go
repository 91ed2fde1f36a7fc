package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// KeyPrefix namespaces every catalog entry so Invalidate can drop them together.
const KeyPrefix = "catalog:"

// Cache stores JSON-encoded catalog reads for a limited time.
type Cache interface {
	// Get decodes the entry into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	// Invalidate drops every catalog entry.
	Invalidate(ctx context.Context) error
}

type memEntry struct {
	data    []byte
	expires time.Time
}

// MemoryCache is the in-process Cache used when no Redis is configured.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memEntry{}, now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[KeyPrefix+key]
	if ok && !m.now().Before(e.expires) {
		delete(m.entries, KeyPrefix+key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.data, dst)
}

func (m *MemoryCache) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[KeyPrefix+key] = memEntry{data: b, expires: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Invalidate(context.Context) error {
	m.mu.Lock()
	m.entries = map[string]memEntry{}
	m.mu.Unlock()
	return nil
}

// RedisCache keeps catalog entries in Redis so several storefront
// instances share them.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache { return &RedisCache{rdb: rdb} }

func (r *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := r.rdb.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (r *RedisCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, KeyPrefix+key, b, ttl).Err()
}

func (r *RedisCache) Invalidate(ctx context.Context) error {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}

// Key joins parts into a cache key, e.g. Key("product", "12").
func Key(parts ...string) string { return strings.Join(parts, ":") }
