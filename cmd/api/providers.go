package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookswap/internal/application/market"
	appuser "github.com/xiebiao/bookswap/internal/application/user"
	"github.com/xiebiao/bookswap/internal/infrastructure/config"
	"github.com/xiebiao/bookswap/internal/infrastructure/messaging"
	"github.com/xiebiao/bookswap/internal/infrastructure/persistence"
	"github.com/xiebiao/bookswap/internal/interface/http/middleware"
	"github.com/xiebiao/bookswap/pkg/circuitbreaker"
	"github.com/xiebiao/bookswap/pkg/jwt"
	"github.com/xiebiao/bookswap/pkg/mq"
)

// provideJWTManager 从配置提取JWT参数
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideSessionStore(s persistence.SessionStore) appuser.SessionStore {
	return s
}

func provideRefreshSessionStore(s persistence.SessionStore) appuser.RefreshSessionStore {
	return s
}

func provideTokenBlacklist(s persistence.SessionStore) middleware.TokenBlacklist {
	return s
}

// provideReporter 启用MQ时把部分失败发布到对账交换机，否则只记录日志和指标
func provideReporter(cfg *config.Config, log *zap.Logger) (market.Reporter, func(), error) {
	if !cfg.MQ.Enabled {
		return market.NopReporter{}, func() {}, nil
	}

	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic", log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Warn("关闭MQ连接失败", zap.Error(err))
		}
	}
	breaker := circuitbreaker.NewCircuitBreaker("reconcile-publisher", circuitbreaker.Config{
		Timeout: 30 * time.Second,
	})
	return messaging.NewReconcilePublisher(pub, breaker, log), cleanup, nil
}
