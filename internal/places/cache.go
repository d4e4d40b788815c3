package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache stores resolved places by normalized location name.
type Cache interface {
	Get(ctx context.Context, key string) (*models.LocationDetails, bool, error)
	Set(ctx context.Context, key string, details *models.LocationDetails) error
}

// CacheKey normalizes a location name so that spacing and case variants share an entry.
func CacheKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// MemoryCache keeps places in process memory.
type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(ttl, time.Hour)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*models.LocationDetails, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	details, ok := v.(*models.LocationDetails)
	return details, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, details *models.LocationDetails) error {
	m.c.Set(key, details, gocache.DefaultExpiration)
	return nil
}

// RedisCache shares places between server instances.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, prefix: "places:"}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*models.LocationDetails, bool, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var details models.LocationDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, false, fmt.Errorf("decode cached place: %w", err)
	}
	return &details, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, details *models.LocationDetails) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode place: %w", err)
	}
	if err := r.rdb.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// CachedFinder consults cache before the wrapped Finder. Cache errors are
// logged and treated as misses. Empty results are not cached.
type CachedFinder struct {
	next  Finder
	cache Cache
}

func NewCachedFinder(next Finder, cache Cache) *CachedFinder {
	return &CachedFinder{next: next, cache: cache}
}

func (f *CachedFinder) Lookup(ctx context.Context, name string) (*models.LocationDetails, error) {
	key := CacheKey(name)

	details, ok, err := f.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("places cache read failed", "error", err, "action", "places_cache")
	} else if ok {
		return details, nil
	}

	details, err = f.next.Lookup(ctx, name)
	if err != nil || details == nil {
		return details, err
	}

	if err := f.cache.Set(ctx, key, details); err != nil {
		slog.Warn("places cache write failed", "error", err, "action", "places_cache")
	}
	return details, nil
}
