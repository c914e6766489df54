package order

import (
	"time"
)

// OrderStatus 订单状态
// 状态机:Pending→Cancelled / Pending→Shipped→Delivered
// Cancelled和Delivered是终态;当前没有进入Shipped/Delivered的操作,预留给后续发货流程
type OrderStatus int

const (
	OrderStatusPending   OrderStatus = 1 // 待处理
	OrderStatusShipped   OrderStatus = 2 // 已发货
	OrderStatusDelivered OrderStatus = 3 // 已送达
	OrderStatusCancelled OrderStatus = 4 // 已取消
)

// String 实现Stringer接口,同时作为接口返回值
func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// Order 订单实体(聚合根)
// 订单只是一条预订记录:一个买家预订一本书,不涉及支付
type Order struct {
	ID        uint
	OrderNo   string // 订单号(业务主键,全局唯一)
	BuyerID   uint
	BookID    uint
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder 创建待处理订单(工厂方法)
func NewOrder(orderNo string, buyerID, bookID uint) *Order {
	now := time.Now().UTC()
	return &Order{
		OrderNo:   orderNo,
		BuyerID:   buyerID,
		BookID:    bookID,
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
func (o *Order) TransitionTo(target OrderStatus) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel 取消订单(领域行为)
func (o *Order) Cancel() error {
	if !o.CanTransitionTo(OrderStatusCancelled) {
		return ErrNotCancellable
	}
	return o.TransitionTo(OrderStatusCancelled)
}

// IsOwnedBy 检查订单是否属于指定买家
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.BuyerID == userID
}

// Clone 拷贝
func (o *Order) Clone() *Order {
	c := *o
	return &c
}
