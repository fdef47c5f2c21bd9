package service

import (
	"context"
	"time"

	"quiz_app_backend/internal/cache"
	"quiz_app_backend/pkg/logger"

	"go.uber.org/zap"
)

// CatalogCache 题库读缓存，任何写操作之后整体失效
type CatalogCache struct {
	Cache cache.CacheService
	TTL   time.Duration
}

func NewCatalogCache(c cache.CacheService, ttl time.Duration) *CatalogCache {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogCache{Cache: c, TTL: ttl}
}

// Load 命中则直接返回；未命中调用 load 并回写。缓存故障只记日志，不影响读取
func (c *CatalogCache) Load(ctx context.Context, key string, dest interface{}, load func() error) error {
	hit, err := c.Cache.Get(ctx, key, dest)
	if err != nil {
		logger.Log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return nil
	}

	if err := load(); err != nil {
		return err
	}

	if err := c.Cache.Set(ctx, key, dest, c.TTL); err != nil {
		logger.Log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.Cache.DeletePattern(ctx, cache.CatalogGlob); err != nil {
		logger.Log.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
