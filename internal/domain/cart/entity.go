package cart

import (
	"time"
)

// Cart 购物车(每个用户一个)
// 1. BookIDs是集合语义,重复添加无效果
// 2. 第一次添加时创建,之后只会被清空,不会被删除
// 3. 允许包含已售出的图书(加入后被别人买走),读取时标出,不静默过滤
type Cart struct {
	UserID    uint
	BookIDs   []uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Empty 尚未持久化的空购物车
func Empty(userID uint) *Cart {
	return &Cart{UserID: userID, BookIDs: []uint{}}
}

// Exists 是否已持久化
func (c *Cart) Exists() bool {
	return !c.CreatedAt.IsZero()
}

// Contains 是否包含指定图书
func (c *Cart) Contains(bookID uint) bool {
	for _, id := range c.BookIDs {
		if id == bookID {
			return true
		}
	}
	return false
}

// IsEmpty 没有任何图书
func (c *Cart) IsEmpty() bool {
	return len(c.BookIDs) == 0
}

// ClearResult 清空购物车的两种成功结果
type ClearResult int

const (
	Cleared        ClearResult = iota + 1 // 清空前有图书
	ClearedAlready                        // 清空前已为空(或购物车不存在)
)

func (r ClearResult) String() string {
	if r == ClearedAlready {
		return "购物车已为空"
	}
	return "购物车已清空"
}
