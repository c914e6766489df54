//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookswap/internal/application/book"
	appcart "github.com/xiebiao/bookswap/internal/application/cart"
	"github.com/xiebiao/bookswap/internal/application/market"
	apporder "github.com/xiebiao/bookswap/internal/application/order"
	appuser "github.com/xiebiao/bookswap/internal/application/user"
	"github.com/xiebiao/bookswap/internal/domain/book"
	"github.com/xiebiao/bookswap/internal/domain/cart"
	"github.com/xiebiao/bookswap/internal/domain/order"
	"github.com/xiebiao/bookswap/internal/domain/user"
	"github.com/xiebiao/bookswap/internal/infrastructure/config"
	"github.com/xiebiao/bookswap/internal/infrastructure/persistence"
	"github.com/xiebiao/bookswap/internal/interface/http/handler"
	"github.com/xiebiao/bookswap/internal/interface/http/middleware"
	"github.com/xiebiao/bookswap/internal/interface/http/router"
)

// storeSet 存储层，驱动由配置决定
var storeSet = wire.NewSet(
	persistence.NewStores,
	wire.FieldsOf(new(*persistence.Stores), "Books", "Orders", "Users", "Carts", "Sessions"),
	provideSessionStore,
	provideRefreshSessionStore,
	provideTokenBlacklist,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	book.NewService,
	order.NewService,
	user.NewService,
	cart.NewService,
)

// marketSet 交易协调器及对账事件上报
var marketSet = wire.NewSet(
	provideReporter,
	market.NewCoordinator,
)

// applicationSet 应用层用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshUseCase,
	appuser.NewProfileUseCase,
	appuser.NewUpdateProfileUseCase,
	appbook.NewPublishBookUseCase,
	appbook.NewQueryBooksUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewBuyBookUseCase,
	appcart.NewCartUseCase,
	apporder.NewPlaceOrderUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewListOrdersUseCase,
)

// httpSet 接口层
var httpSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewCartHandler,
	handler.NewOrderHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 组装HTTP服务，cleanup释放存储连接与MQ连接
func InitializeApp(cfg *config.Config, log *zap.Logger) (*gin.Engine, func(), error) {
	wire.Build(
		storeSet,
		domainSet,
		marketSet,
		applicationSet,
		httpSet,
	)
	return nil, nil, nil
}
