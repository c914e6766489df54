// 对账进程
//
// 消费协调器发布的部分失败事件(routing key: reconcile.<operation>.<step>)，
// 以图书记录为准修复订单与用户引用列表。每个修复都是幂等的，可以安全重放。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xiebiao/bookswap/internal/application/reconcile"
	"github.com/xiebiao/bookswap/internal/domain/book"
	"github.com/xiebiao/bookswap/internal/domain/order"
	"github.com/xiebiao/bookswap/internal/domain/user"
	"github.com/xiebiao/bookswap/internal/infrastructure/config"
	"github.com/xiebiao/bookswap/internal/infrastructure/persistence"
	"github.com/xiebiao/bookswap/pkg/logger"
	"github.com/xiebiao/bookswap/pkg/metrics"
	"github.com/xiebiao/bookswap/pkg/mq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	zlog := logger.MustNew(cfg.Log.Logger()).Named("reconciler")
	defer func() { _ = zlog.Sync() }()

	if cfg.Storage.Driver != config.DriverMySQL {
		zlog.Fatal("对账进程需要与API进程共享存储", zap.String("driver", cfg.Storage.Driver))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := persistence.NewStores(cfg, zlog)
	if err != nil {
		zlog.Fatal("初始化存储失败", zap.Error(err))
	}
	defer cleanup()

	handler := reconcile.NewHandler(
		book.NewService(stores.Books),
		order.NewService(stores.Orders),
		user.NewService(stores.Users),
		zlog,
	)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, "topic", cfg.MQ.Queue, []string{"reconcile.#"}, zlog)
	if err != nil {
		zlog.Fatal("连接MQ失败", zap.Error(err))
	}
	defer func() { _ = consumer.Close() }()

	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
		srv := serveMetrics(cfg.Metrics, zlog)
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	if err := consumer.Consume(ctx, handler.HandleMessage); err != nil {
		zlog.Error("消费中断", zap.Error(err))
	}
	zlog.Info("对账进程已退出")
}

func serveMetrics(cfg config.MetricsConfig, zlog *zap.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(cfg.Path, gin.WrapH(promhttp.Handler()))

	srv := &http.Server{Addr: cfg.ReconcilerAddr, Handler: r}
	go func() {
		zlog.Info("指标服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("指标服务异常退出", zap.Error(err))
		}
	}()
	return srv
}
