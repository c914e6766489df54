// @title           BookSwap API
// @version         1.0
// @description     二手教材交易市场：发布、购物车、下单与取消
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/bookswap/internal/infrastructure/config"
	"github.com/xiebiao/bookswap/pkg/logger"
	"github.com/xiebiao/bookswap/pkg/metrics"
	"github.com/xiebiao/bookswap/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog := logger.MustNew(cfg.Log.Logger())
	defer func() { _ = zlog.Sync() }()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.Tracer())
		if err != nil {
			zlog.Fatal("初始化链路追踪失败", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				zlog.Warn("关闭链路追踪失败", zap.Error(err))
			}
		}()
	}
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	engine, cleanup, err := InitializeApp(cfg, zlog)
	if err != nil {
		zlog.Fatal("初始化应用失败", zap.Error(err))
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("服务启动",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("storage", cfg.Storage.Driver),
			zap.Bool("mq", cfg.MQ.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("HTTP服务异常退出", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("正在关闭服务")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("服务强制关闭", zap.Error(err))
	}
	zlog.Info("服务已关闭")
}
