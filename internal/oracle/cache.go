package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores oracle responses keyed by prompt hash.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewRedisCache wraps client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// MemoryCache is an in-process Cache with per-entry expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expires = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// CachedOracle serves repeated prompts from a Cache. Cache failures are
// logged and fall through to the wrapped oracle.
type CachedOracle struct {
	next      Oracle
	cache     Cache
	ttl       time.Duration
	namespace string
	logger    *slog.Logger
}

// NewCachedOracle wraps next. namespace separates models sharing one cache.
func NewCachedOracle(next Oracle, cache Cache, ttl time.Duration, namespace string, logger *slog.Logger) *CachedOracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedOracle{
		next:      next,
		cache:     cache,
		ttl:       ttl,
		namespace: namespace,
		logger:    logger,
	}
}

// Generate returns a cached response when present, otherwise calls the
// wrapped oracle and stores non-empty text.
func (c *CachedOracle) Generate(ctx context.Context, prompt string) (string, error) {
	key := c.key(prompt)

	if text, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("oracle cache read failed", "error", err)
	} else if ok {
		c.logger.Debug("oracle cache hit", "operation", OperationFrom(ctx))
		return text, nil
	}

	text, err := c.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if text != "" {
		if err := c.cache.Set(ctx, key, text, c.ttl); err != nil {
			c.logger.Warn("oracle cache write failed", "error", err)
		}
	}
	return text, nil
}

func (c *CachedOracle) key(prompt string) string {
	sum := sha256.Sum256([]byte(c.namespace + "\x00" + prompt))
	return "fightintel:oracle:" + hex.EncodeToString(sum[:])
}
