package market

import (
	"context"
	"fmt"
	"time"
)

// 协调器操作名（日志、指标、对账事件共用）
const (
	OpBuyBook     = "buy_book"
	OpPlaceOrder  = "place_order"
	OpCancelOrder = "cancel_order"
	OpListBook    = "list_book"
	OpDelistBook  = "delist_book"
)

// 提交点之后的步骤名
const (
	StepInsertOrder     = "insert_order"
	StepAddPurchased    = "add_purchased"
	StepRevertBook      = "revert_book"
	StepRemovePurchased = "remove_purchased"
	StepAddToSell       = "add_to_sell"
	StepRemoveToSell    = "remove_to_sell"
)

// Event 一次部分不一致：提交点已成功，之后的某一步失败
type Event struct {
	Operation  string    `json:"operation"`
	Step       string    `json:"step"`
	BookID     uint      `json:"book_id"`
	OrderID    uint      `json:"order_id,omitempty"`
	UserID     uint      `json:"user_id"`
	Error      string    `json:"error"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RoutingKey reconcile.<operation>.<step>
func (e Event) RoutingKey() string {
	return fmt.Sprintf("reconcile.%s.%s", e.Operation, e.Step)
}

// Reporter 把部分不一致交给协调器之外的对账流程
type Reporter interface {
	Report(ctx context.Context, e Event) error
}

// NopReporter 未启用消息队列时使用，只保留日志和指标
type NopReporter struct{}

func (NopReporter) Report(context.Context, Event) error { return nil }
