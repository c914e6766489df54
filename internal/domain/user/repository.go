package user

import (
	"context"
)

// Repository 用户仓储接口
// 反向引用列表的四个写方法都是单条记录上的集合操作，重复执行结果不变
type Repository interface {
	// Create 邮箱已存在返回errors.ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 不存在返回errors.ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 不存在返回errors.ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	// UpdateAccountDetails 不存在返回errors.ErrUserNotFound，返回更新后的用户
	UpdateAccountDetails(ctx context.Context, id uint, d AccountDetails) (*User, error)

	AddBookToSell(ctx context.Context, userID, bookID uint) error
	RemoveBookToSell(ctx context.Context, userID, bookID uint) error
	AddPurchasedBook(ctx context.Context, userID, bookID uint) error
	RemovePurchasedBook(ctx context.Context, userID, bookID uint) error
}
