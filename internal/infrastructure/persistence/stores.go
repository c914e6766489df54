// Package persistence 按配置选择存储实现
//
// mysql驱动：图书/订单/用户存MySQL，购物车与会话存Redis
// memory驱动：全部存进程内存，重启丢失，只用于本地演示和测试
package persistence

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookswap/internal/domain/book"
	"github.com/xiebiao/bookswap/internal/domain/cart"
	"github.com/xiebiao/bookswap/internal/domain/order"
	"github.com/xiebiao/bookswap/internal/domain/user"
	"github.com/xiebiao/bookswap/internal/infrastructure/config"
	"github.com/xiebiao/bookswap/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookswap/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookswap/internal/infrastructure/persistence/redis"
)

// SessionStore 会话与Token黑名单
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error
	GetSession(ctx context.Context, userID uint) (map[string]string, error)
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// Stores 全部仓储
type Stores struct {
	Books    book.Repository
	Orders   order.Repository
	Users    user.Repository
	Carts    cart.Repository
	Sessions SessionStore
}

// NewStores 按storage.driver创建仓储，返回的cleanup关闭数据库与Redis连接
func NewStores(cfg *config.Config, log *zap.Logger) (*Stores, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn("使用内存存储，数据在进程退出后丢失")
		s := memory.NewStore()
		return &Stores{
			Books:    memory.NewBookRepository(s),
			Orders:   memory.NewOrderRepository(s),
			Users:    memory.NewUserRepository(s),
			Carts:    memory.NewCartRepository(s),
			Sessions: memory.NewSessionStore(s),
		}, func() {}, nil

	case config.DriverMySQL:
		db, err := mysql.NewDB(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		rdb, err := redis.NewClient(cfg, log)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}

		cleanup := func() {
			if err := rdb.Close(); err != nil {
				log.Warn("关闭Redis连接失败", zap.Error(err))
			}
			if err := sqlDB.Close(); err != nil {
				log.Warn("关闭数据库连接失败", zap.Error(err))
			}
		}
		return &Stores{
			Books:    mysql.NewBookRepository(db),
			Orders:   mysql.NewOrderRepository(db),
			Users:    mysql.NewUserRepository(db),
			Carts:    redis.NewCartRepository(rdb),
			Sessions: redis.NewSessionStore(rdb),
		}, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("未知的存储驱动: %s", cfg.Storage.Driver)
	}
}
