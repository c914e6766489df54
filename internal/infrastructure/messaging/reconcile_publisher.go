// Package messaging 协调器与RabbitMQ之间的适配
package messaging

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookswap/internal/application/market"
	"github.com/xiebiao/bookswap/pkg/circuitbreaker"
	"github.com/xiebiao/bookswap/pkg/metrics"
)

// publishTimeout 单条对账事件的发布超时，请求已经成功，不能被Broker拖住
const publishTimeout = 3 * time.Second

// Publisher mq.Publisher满足该接口
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// ReconcilePublisher 把部分不一致发布到对账Exchange，实现market.Reporter
// Broker连续不可用时熔断，后续事件直接失败，只保留协调器的ERROR日志
type ReconcilePublisher struct {
	pub     Publisher
	breaker *circuitbreaker.CircuitBreaker
	log     *zap.Logger
}

// NewReconcilePublisher 创建对账事件发布者，breaker为nil时使用默认熔断配置
func NewReconcilePublisher(pub Publisher, breaker *circuitbreaker.CircuitBreaker, log *zap.Logger) *ReconcilePublisher {
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker("reconcile-publisher", circuitbreaker.Config{})
	}
	breaker.OnStateChange(func(name string, from, to circuitbreaker.State) {
		log.Warn("对账发布熔断状态变化",
			zap.String("breaker", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	})
	return &ReconcilePublisher{pub: pub, breaker: breaker, log: log}
}

// Report 发布一条对账事件
// 请求结束时ctx可能已被取消，发布使用独立的超时
func (p *ReconcilePublisher) Report(ctx context.Context, e market.Event) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	key := e.RoutingKey()
	err := p.breaker.Execute(func() error {
		return p.pub.Publish(ctx, key, e)
	})
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		metrics.IncReconcilePublish("rejected")
		return err
	case err != nil:
		metrics.IncReconcilePublish("failure")
		return err
	}

	metrics.IncReconcilePublish("success")
	p.log.Info("对账事件已发布",
		zap.String("routing_key", key),
		zap.Uint("book_id", e.BookID),
		zap.Uint("order_id", e.OrderID),
	)
	return nil
}
