package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"virasat-setu/internal/logger"
	"virasat-setu/internal/metrics"
	"virasat-setu/internal/places"
)

const hotCitiesKey = "hot:cities"

// kvStore：热门城市缓存所需的最小 KV 能力；未命中返回 redis.Nil
type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// redisKV：go-redis 客户端适配
type redisKV struct{ rc *redis.Client }

func (r redisKV) Get(ctx context.Context, key string) (string, error) {
	return r.rc.Get(ctx, key).Result()
}

func (r redisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rc.Set(ctx, key, value, ttl).Err()
}

// hotCache：热门城市响应的读穿缓存；store 为 nil 时所有操作为空操作
// 约束：缓存故障只记录日志，不影响请求
type hotCache struct {
	store kvStore
	ttl   time.Duration
}

func newHotCache(rc *redis.Client, ttl time.Duration) *hotCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &hotCache{ttl: ttl}
	if rc != nil {
		c.store = redisKV{rc: rc}
	}
	return c
}

func (c *hotCache) get(ctx context.Context) ([]places.HotCity, bool) {
	if c.store == nil {
		return nil, false
	}
	s, err := c.store.Get(ctx, hotCitiesKey)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Warn("hot_cache_get_error", "err", err)
		}
		metrics.RedisMissesTotal.Inc()
		return nil, false
	}
	var cs []places.HotCity
	if err := json.Unmarshal([]byte(s), &cs); err != nil || len(cs) == 0 {
		metrics.RedisMissesTotal.Inc()
		return nil, false
	}
	metrics.RedisHitsTotal.Inc()
	return cs, true
}

func (c *hotCache) set(ctx context.Context, cs []places.HotCity) {
	if c.store == nil || len(cs) == 0 {
		return
	}
	b, err := json.Marshal(cs)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, hotCitiesKey, string(b), c.ttl); err != nil {
		logger.L().Warn("hot_cache_set_error", "err", err)
	}
}
