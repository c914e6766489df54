package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
type Repository interface {
	// Create 创建订单,回填ID
	Create(ctx context.Context, order *Order) error

	// FindByID 不存在返回ErrOrderNotFound
	FindByID(ctx context.Context, id uint) (*Order, error)

	// ListByBook 引用指定图书的全部订单(对账使用)
	ListByBook(ctx context.Context, bookID uint) ([]*Order, error)

	// UpdateStatus 条件更新:status = from,未命中返回ErrPreconditionFailed
	// 两个并发取消只有一个命中
	UpdateStatus(ctx context.Context, id uint, from, to OrderStatus) (*Order, error)

	// ListForBuyer 买家全部订单,关联图书与卖家信息
	ListForBuyer(ctx context.Context, buyerID uint) ([]*Line, error)
}
