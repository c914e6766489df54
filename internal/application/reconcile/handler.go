// Package reconcile 对账进程：修复协调器上报的部分不一致
//
// 每种步骤的修复都从权威记录（图书状态、订单记录）重新推导应有的结果，
// 重复处理同一事件结果不变。事件发出之后记录已被其他请求改变时跳过。
package reconcile

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookswap/internal/application/market"
	"github.com/xiebiao/bookswap/internal/domain/book"
	"github.com/xiebiao/bookswap/internal/domain/order"
	"github.com/xiebiao/bookswap/internal/domain/user"
	apperrors "github.com/xiebiao/bookswap/pkg/errors"
	"github.com/xiebiao/bookswap/pkg/metrics"
)

// Outcome 事件处理结果
type Outcome string

const (
	Repaired Outcome = "repaired" // 执行了修复写入
	Skipped  Outcome = "skipped"  // 已一致，或记录已变化
)

// Handler 对账事件处理器
type Handler struct {
	books  book.Service
	orders order.Service
	users  user.Service
	log    *zap.Logger
}

// NewHandler 创建对账事件处理器
func NewHandler(books book.Service, orders order.Service, users user.Service, log *zap.Logger) *Handler {
	return &Handler{books: books, orders: orders, users: users, log: log}
}

// HandleMessage 适配mq.Handler
// 消息体无法解析时丢弃（返回nil），重新入队也不会成功
func (h *Handler) HandleMessage(ctx context.Context, routingKey string, body []byte) error {
	var ev market.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		h.log.Error("对账事件格式错误，已丢弃", zap.String("routing_key", routingKey), zap.Error(err))
		return nil
	}
	_, err := h.Handle(ctx, ev)
	return err
}

// Handle 处理一条事件，返回错误时由消费者重新入队
func (h *Handler) Handle(ctx context.Context, ev market.Event) (Outcome, error) {
	log := h.log.With(
		zap.String("operation", ev.Operation),
		zap.String("step", ev.Step),
		zap.Uint("book_id", ev.BookID),
		zap.Uint("order_id", ev.OrderID),
		zap.Uint("user_id", ev.UserID),
	)

	var (
		outcome Outcome
		err     error
	)
	switch ev.Step {
	case market.StepAddPurchased:
		outcome, err = h.addPurchased(ctx, ev)
	case market.StepRemovePurchased:
		outcome, err = h.removePurchased(ctx, ev)
	case market.StepAddToSell:
		outcome, err = h.addToSell(ctx, ev)
	case market.StepRemoveToSell:
		outcome, err = h.removeToSell(ctx, ev)
	case market.StepRevertBook:
		outcome, err = h.revertBook(ctx, ev)
	case market.StepInsertOrder:
		outcome, err = h.insertOrder(ctx, ev)
	default:
		log.Warn("未知的对账步骤，已忽略")
		metrics.IncReconcileRepair(ev.Step, string(Skipped))
		return Skipped, nil
	}

	// 用户已不存在时无可修复
	if errors.Is(err, apperrors.ErrUserNotFound) {
		outcome, err = Skipped, nil
	}
	if err != nil {
		metrics.IncReconcileRepair(ev.Step, "failed")
		log.Error("对账修复失败", zap.Error(err))
		return "", err
	}

	metrics.IncReconcileRepair(ev.Step, string(outcome))
	log.Info("对账事件已处理", zap.String("outcome", string(outcome)))
	return outcome, nil
}

func (h *Handler) addPurchased(ctx context.Context, ev market.Event) (Outcome, error) {
	b, err := h.currentBook(ctx, ev.BookID)
	if err != nil || b == nil || !soldTo(b, ev.UserID) {
		return Skipped, err
	}
	if err := h.users.AddPurchasedBook(ctx, ev.UserID, ev.BookID); err != nil {
		return "", err
	}
	return Repaired, nil
}

func (h *Handler) removePurchased(ctx context.Context, ev market.Event) (Outcome, error) {
	b, err := h.currentBook(ctx, ev.BookID)
	if err != nil {
		return "", err
	}
	if b != nil && soldTo(b, ev.UserID) {
		return Skipped, nil
	}
	if err := h.users.RemovePurchasedBook(ctx, ev.UserID, ev.BookID); err != nil {
		return "", err
	}
	return Repaired, nil
}

func (h *Handler) addToSell(ctx context.Context, ev market.Event) (Outcome, error) {
	b, err := h.currentBook(ctx, ev.BookID)
	if err != nil || b == nil || !b.IsOwnedBy(ev.UserID) {
		return Skipped, err
	}
	if err := h.users.AddBookToSell(ctx, ev.UserID, ev.BookID); err != nil {
		return "", err
	}
	return Repaired, nil
}

func (h *Handler) removeToSell(ctx context.Context, ev market.Event) (Outcome, error) {
	b, err := h.currentBook(ctx, ev.BookID)
	if err != nil || b != nil {
		return Skipped, err
	}
	if err := h.users.RemoveBookToSell(ctx, ev.UserID, ev.BookID); err != nil {
		return "", err
	}
	return Repaired, nil
}

// revertBook 订单已取消但图书仍为已售
// 条件：仍售给该买家、事件之后未被修改、引用该图书的订单全部已取消
func (h *Handler) revertBook(ctx context.Context, ev market.Event) (Outcome, error) {
	b, err := h.currentBook(ctx, ev.BookID)
	if err != nil || b == nil || !soldTo(b, ev.UserID) || b.UpdatedAt.After(ev.OccurredAt) {
		return Skipped, err
	}

	orders, err := h.orders.ListByBook(ctx, ev.BookID)
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return Skipped, nil
	}
	for _, o := range orders {
		if o.Status != order.OrderStatusCancelled {
			return Skipped, nil
		}
	}

	if _, err := h.books.RevertToAvailable(ctx, ev.BookID); err != nil {
		return "", err
	}
	return Repaired, nil
}

// insertOrder 图书已售出但订单没有写入
// 条件：仍售给该买家、事件之后未被修改、没有未取消的订单引用该图书
// 之前买家已取消的订单不代表本次售出
func (h *Handler) insertOrder(ctx context.Context, ev market.Event) (Outcome, error) {
	b, err := h.currentBook(ctx, ev.BookID)
	if err != nil || b == nil || !soldTo(b, ev.UserID) || b.UpdatedAt.After(ev.OccurredAt) {
		return Skipped, err
	}

	orders, err := h.orders.ListByBook(ctx, ev.BookID)
	if err != nil {
		return "", err
	}
	for _, o := range orders {
		if o.Status != order.OrderStatusCancelled {
			return Skipped, nil
		}
	}

	o, err := h.orders.Create(ctx, ev.UserID, ev.BookID)
	if err != nil {
		return "", err
	}
	h.log.Info("补写订单", zap.Uint("order_id", o.ID), zap.String("order_no", o.OrderNo))
	return Repaired, nil
}

// currentBook 图书已删除时返回(nil, nil)
func (h *Handler) currentBook(ctx context.Context, id uint) (*book.Book, error) {
	b, err := h.books.Get(ctx, id)
	if errors.Is(err, book.ErrBookNotFound) {
		return nil, nil
	}
	return b, err
}

func soldTo(b *book.Book, userID uint) bool {
	return b.Status == book.StatusSold && b.PurchaserID != nil && *b.PurchaserID == userID
}
