// Package metrics Prometheus业务指标
//
// 指标分三组：
// 1. HTTP指标：请求数、耗时、并发数（由gin中间件采集）
// 2. 交易指标：协调器各操作的结果与耗时
// 3. 一致性指标：提交点之后失败的步骤数，供告警与对账使用
//
// 所有指标注册到prometheus默认Registry，通过/metrics暴露
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookswap"

var (
	once sync.Once

	// HTTPRequestsTotal HTTP请求总数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec
	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// MarketOperationsTotal 协调器操作数（operation: buy_book/place_order/cancel_order/list_book/delist_book）
	MarketOperationsTotal *prometheus.CounterVec
	// MarketOperationDuration 协调器操作耗时
	MarketOperationDuration *prometheus.HistogramVec
	// PartialInconsistenciesTotal 提交后失败的步骤数
	PartialInconsistenciesTotal *prometheus.CounterVec

	// CartMutationsTotal 购物车变更次数
	CartMutationsTotal *prometheus.CounterVec
	// ReconcileEventsPublishedTotal 对账事件发布次数
	ReconcileEventsPublishedTotal *prometheus.CounterVec
	// ReconcileRepairsTotal 对账进程处理的事件数
	ReconcileRepairsTotal *prometheus.CounterVec
)

// InitMetrics 注册全部指标，可重复调用
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时（秒）",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "正在处理的HTTP请求数",
		},
	)

	MarketOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "market_operations_total",
			Help:      "交易协调操作总数",
		},
		[]string{"operation", "result"}, // result: success/partial/conflict/forbidden/not_found/invalid/error
	)

	MarketOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "market_operation_duration_seconds",
			Help:      "交易协调操作耗时（秒）",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	PartialInconsistenciesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partial_inconsistencies_total",
			Help:      "提交点之后失败的步骤数（需对账修复）",
		},
		[]string{"operation", "step"},
	)

	CartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "购物车变更次数",
		},
		[]string{"action"}, // add/remove/clear
	)

	ReconcileEventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_events_published_total",
			Help:      "对账事件发布次数",
		},
		[]string{"result"}, // success/failure/rejected
	)

	ReconcileRepairsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_repairs_total",
			Help:      "对账事件处理结果",
		},
		[]string{"step", "outcome"}, // outcome: repaired/skipped/failed
	)
}

// ObserveMarketOperation 记录一次协调器操作
func ObserveMarketOperation(operation, result string, seconds float64) {
	InitMetrics()
	MarketOperationsTotal.WithLabelValues(operation, result).Inc()
	MarketOperationDuration.WithLabelValues(operation).Observe(seconds)
}

// IncPartialInconsistency 记录一次提交后步骤失败
func IncPartialInconsistency(operation, step string) {
	InitMetrics()
	PartialInconsistenciesTotal.WithLabelValues(operation, step).Inc()
}

// IncCartMutation 记录一次购物车变更
func IncCartMutation(action string) {
	InitMetrics()
	CartMutationsTotal.WithLabelValues(action).Inc()
}

// IncReconcilePublish 记录一次对账事件发布
func IncReconcilePublish(result string) {
	InitMetrics()
	ReconcileEventsPublishedTotal.WithLabelValues(result).Inc()
}

// IncReconcileRepair 记录一次对账事件处理
func IncReconcileRepair(step, outcome string) {
	InitMetrics()
	ReconcileRepairsTotal.WithLabelValues(step, outcome).Inc()
}

// ObserveHTTPRequest 记录一次HTTP请求
func ObserveHTTPRequest(method, path, status string, seconds float64) {
	InitMetrics()
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}
