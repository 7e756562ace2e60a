package options

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long derived options are reused for one generation.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "glreport:filters:"

// Cache stores Options keyed by store generation.
type Cache interface {
	Get(ctx context.Context, generation string) (Options, bool, error)
	Set(ctx context.Context, generation string, opts Options) error
	Delete(ctx context.Context, generation string) error
}

// Key returns the cache key for a generation.
func Key(generation string) string {
	return keyPrefix + generation
}

type memoryEntry struct {
	opts    Options
	expires time.Time
}

// MemoryCache is an in-process Cache with per-entry expiry.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryCache returns an in-process cache. A non-positive ttl selects DefaultTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, generation string) (Options, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[generation]
	if !ok {
		return Options{}, false, nil
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, generation)
		return Options{}, false, nil
	}
	return e.opts, true, nil
}

func (c *MemoryCache) Set(_ context.Context, generation string, opts Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[generation] = memoryEntry{opts: opts, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, generation string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, generation)
	return nil
}

// RedisCache stores JSON encoded Options in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps client. A non-positive ttl selects DefaultTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, generation string) (Options, bool, error) {
	payload, err := c.client.Get(ctx, Key(generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Options{}, false, nil
	}
	if err != nil {
		return Options{}, false, err
	}
	var opts Options
	if err := json.Unmarshal(payload, &opts); err != nil {
		return Options{}, false, err
	}
	return opts, true, nil
}

func (c *RedisCache) Set(ctx context.Context, generation string, opts Options) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(generation), raw, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, generation string) error {
	return c.client.Del(ctx, Key(generation)).Err()
}
