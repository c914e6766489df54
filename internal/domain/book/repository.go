package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现(MySQL / 内存)
// 2. 存储只保证单条记录的原子更新,所有状态变更都是带WHERE条件的单条更新
// 3. 条件未命中(包括记录不存在)统一返回ErrPreconditionFailed,由Service重新读取后归类
type Repository interface {
	// Create 创建图书,回填ID
	Create(ctx context.Context, book *Book) error

	// FindByID 不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// ListBySeller 卖家发布的全部图书(按创建时间倒序)
	ListBySeller(ctx context.Context, sellerID uint) ([]*Book, error)

	// ListByStatus 指定状态的全部图书(按创建时间倒序)
	ListByStatus(ctx context.Context, status Status) ([]*Book, error)

	// ListAvailableWithSeller 在售图书关联卖家信息
	ListAvailableWithSeller(ctx context.Context) ([]*Listing, error)

	// UpdateDetails 条件:seller_id = sellerID
	UpdateDetails(ctx context.Context, id, sellerID uint, d Details) (*Book, error)

	// MarkSold 条件:status = Available AND seller_id <> buyerID
	// 并发购买同一本书时只有一个调用命中
	MarkSold(ctx context.Context, id, buyerID uint) (*Book, error)

	// MarkAvailable 无条件回到在售并清空购买者,不存在返回ErrBookNotFound
	MarkAvailable(ctx context.Context, id uint) (*Book, error)

	// DeleteAvailable 条件:seller_id = sellerID AND status = Available,返回被删除的图书
	DeleteAvailable(ctx context.Context, id, sellerID uint) (*Book, error)
}
