package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/bookswap/internal/infrastructure/config"
)

// NewClient 创建Redis客户端并探测连接，购物车与会话共用同一个连接池
func NewClient(cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	rc := cfg.Redis
	client := redis.NewClient(&redis.Options{
		Addr:         rc.Addr(),
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), rc.DialTimeout+rc.ReadTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", rc.Addr(), err)
	}

	log.Info("Redis已连接",
		zap.String("addr", rc.Addr()),
		zap.Int("db", rc.DB),
		zap.Int("pool_size", rc.PoolSize),
	)
	return client, nil
}
