package artisan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"virasat-setu/internal/logger"
)

// CachedRepository：列表查询的进程内读缓存；任何写入清空整个缓存
type CachedRepository struct {
	next  Repository
	cache *cache.Cache
}

func NewCached(next Repository, ttl time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRepository{next: next, cache: cache.New(ttl, 2*ttl)}
}

// cacheKey：各存储实现对 city/specialty 均不区分大小写，键按小写归一
func cacheKey(q Query) string {
	return fmt.Sprintf("%s|%s|%d", strings.ToLower(strings.TrimSpace(q.City)), strings.ToLower(strings.TrimSpace(q.Specialty)), q.Limit)
}

func (c *CachedRepository) List(ctx context.Context, q Query) ([]Artisan, error) {
	key := cacheKey(q)
	if v, found := c.cache.Get(key); found {
		logger.L().Debug("artisan_cache_hit", "key", key)
		return append([]Artisan{}, v.([]Artisan)...), nil
	}
	out, err := c.next.List(ctx, q)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, out, cache.DefaultExpiration)
	return append([]Artisan{}, out...), nil
}

func (c *CachedRepository) Create(ctx context.Context, a *Artisan) error {
	if err := c.next.Create(ctx, a); err != nil {
		return err
	}
	c.cache.Flush()
	return nil
}
