package cart

import (
	"context"
)

// Repository 购物车仓储接口
// 所有写操作都是单条记录上的集合操作(Redis SADD/SREM/DEL),并发修改互不覆盖
type Repository interface {
	// Find 购物车不存在时返回(nil, nil)
	Find(ctx context.Context, userID uint) (*Cart, error)

	// AddBook 购物车不存在则创建,图书已在购物车中时无变化
	AddBook(ctx context.Context, userID, bookID uint) (*Cart, error)

	// RemoveBook 购物车不存在或不包含该图书返回ErrCartItemNotFound
	RemoveBook(ctx context.Context, userID, bookID uint) (*Cart, error)

	// Clear 清空并返回清空前的图书数量,购物车不存在时返回0
	Clear(ctx context.Context, userID uint) (int, error)
}
