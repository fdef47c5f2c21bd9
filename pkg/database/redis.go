package database

import (
	"context"
	"fmt"
	"log"

	"quiz_app_backend/internal/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis 未启用时返回 nil 客户端，调用方退回到无缓存模式
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	opts.PoolSize = 50
	opts.MinIdleConns = 5

	rdb := redis.NewClient(opts)

	ctx := context.Background()
	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}

	log.Println("Redis connection established")
	return rdb, nil
}
