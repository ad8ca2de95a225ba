package kaspa

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// memoryOutpointCache is the single-process default.
type memoryOutpointCache struct {
	c *gocache.Cache
}

// NewMemoryOutpointCache builds an in-process outpoint cache.
func NewMemoryOutpointCache(expiration, cleanup time.Duration) OutpointCache {
	return &memoryOutpointCache{c: gocache.New(expiration, cleanup)}
}

func (m *memoryOutpointCache) Get(_ context.Context, key string) (uint64, bool) {
	if v, found := m.c.Get(key); found {
		if amount, ok := v.(uint64); ok {
			return amount, true
		}
	}
	return 0, false
}

func (m *memoryOutpointCache) Set(_ context.Context, key string, amount uint64) {
	m.c.Set(key, amount, gocache.DefaultExpiration)
}

// redisOutpointCache shares traced outpoints across processes. Lookups cost a
// network round trip per input, so a shared cache pays off quickly when
// several workers import overlapping wallets.
type redisOutpointCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOutpointCache builds a redis-backed outpoint cache.
func NewRedisOutpointCache(client *redis.Client, ttl time.Duration) OutpointCache {
	return &redisOutpointCache{client: client, ttl: ttl}
}

func (r *redisOutpointCache) Get(ctx context.Context, key string) (uint64, bool) {
	val, err := r.client.Get(ctx, "outpoint:"+key).Result()
	if err != nil {
		return 0, false
	}
	amount, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

func (r *redisOutpointCache) Set(ctx context.Context, key string, amount uint64) {
	r.client.Set(ctx, "outpoint:"+key, strconv.FormatUint(amount, 10), r.ttl)
}
