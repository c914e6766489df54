// Package router 组装gin引擎：全局中间件、基础设施路由与/api/v1业务路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookswap/internal/infrastructure/config"
	"github.com/xiebiao/bookswap/internal/interface/http/handler"
	"github.com/xiebiao/bookswap/internal/interface/http/middleware"
	"github.com/xiebiao/bookswap/pkg/response"
)

// Handlers 全部HTTP处理器
type Handlers struct {
	User  *handler.UserHandler
	Book  *handler.BookHandler
	Cart  *handler.CartHandler
	Order *handler.OrderHandler
}

// New 创建gin引擎
// 中间件顺序：RequestLogger → Recovery → Metrics → 路由匹配 → RequireAuth → Handler
func New(cfg *config.Config, log *zap.Logger, auth *middleware.AuthMiddleware, h Handlers) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(gin.Recovery())
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	// 公开接口
	v1.POST("/users/register", h.User.Register)
	v1.POST("/users/login", h.User.Login)
	v1.POST("/users/refresh", h.User.RefreshToken)

	authorized := v1.Group("")
	authorized.Use(auth.RequireAuth())
	{
		authorized.POST("/users/logout", h.User.Logout)
		authorized.GET("/profile", h.User.Profile)
		authorized.PUT("/profile", h.User.UpdateProfile)
		authorized.GET("/users/:id/books", h.Book.ListBySeller)

		books := authorized.Group("/books")
		books.POST("", h.Book.PublishBook)
		books.GET("/available", h.Book.ListAvailable)
		books.GET("/sold", h.Book.ListSold)
		books.GET("/:id", h.Book.GetBook)
		books.PUT("/:id", h.Book.UpdateBook)
		books.DELETE("/:id", h.Book.DeleteBook)
		books.POST("/:id/buy", h.Book.BuyBook)

		cart := authorized.Group("/cart")
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/books/:bookId", h.Cart.AddBook)
		cart.DELETE("/books/:bookId", h.Cart.RemoveBook)

		orders := authorized.Group("/orders")
		orders.POST("", h.Order.PlaceOrder)
		orders.GET("", h.Order.ListOrders)
		orders.POST("/:id/cancel", h.Order.CancelOrder)
	}

	return r
}
