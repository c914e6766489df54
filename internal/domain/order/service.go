package order

import (
	"context"
	"errors"
)

// Service 订单领域服务(OrderLedger)
// 只负责订单记录本身;下单时图书的售出由应用层协调器先完成
type Service interface {
	// Create 校验ID后插入待处理订单
	Create(ctx context.Context, buyerID, bookID uint) (*Order, error)

	// Get 不存在返回ErrOrderNotFound
	Get(ctx context.Context, id uint) (*Order, error)

	// Cancel 取消订单
	// 业务规则:只有买家本人(ErrForbidden)可以取消待处理(ErrNotCancellable)的订单
	Cancel(ctx context.Context, orderID, requesterID uint) (*Order, error)

	// ListForBuyer 按天分组的订单报表,没有订单时返回空列表
	ListForBuyer(ctx context.Context, buyerID uint) ([]*DayGroup, error)

	// ListByBook 引用指定图书的全部订单
	ListByBook(ctx context.Context, bookID uint) ([]*Order, error)
}

type service struct {
	repo Repository
}

// NewService 创建订单服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, buyerID, bookID uint) (*Order, error) {
	if buyerID == 0 {
		return nil, ErrInvalidBuyerID
	}
	if bookID == 0 {
		return nil, ErrInvalidBookID
	}

	o := NewOrder(GenerateOrderNo(), buyerID, bookID)
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Order, error) {
	if id == 0 {
		return nil, ErrOrderNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) Cancel(ctx context.Context, orderID, requesterID uint) (*Order, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(requesterID) {
		return nil, ErrForbidden
	}
	if !o.CanTransitionTo(OrderStatusCancelled) {
		return nil, ErrNotCancellable
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, OrderStatusPending, OrderStatusCancelled)
	if errors.Is(err, ErrPreconditionFailed) {
		// 读取之后被并发取消
		return nil, ErrNotCancellable
	}
	return updated, err
}

func (s *service) ListForBuyer(ctx context.Context, buyerID uint) ([]*DayGroup, error) {
	lines, err := s.repo.ListForBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return GroupByDay(lines), nil
}

func (s *service) ListByBook(ctx context.Context, bookID uint) ([]*Order, error) {
	return s.repo.ListByBook(ctx, bookID)
}
