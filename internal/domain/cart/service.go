package cart

import (
	"context"

	"github.com/xiebiao/bookswap/internal/domain/book"
)

// Service 购物车领域服务(CartStore)
// 只读依赖图书服务做加入前的校验,不修改图书
type Service interface {
	// Add 加入购物车
	// 业务规则:图书存在、不是自己发布的、在售;重复加入幂等
	Add(ctx context.Context, userID, bookID uint) (*Cart, error)

	// Remove 移除图书,没有可移除的内容时返回ErrCartItemNotFound
	Remove(ctx context.Context, userID, bookID uint) (*Cart, error)

	// Get 购物车不存在时返回未持久化的空购物车,不返回错误
	Get(ctx context.Context, userID uint) (*Cart, error)

	// Clear 清空购物车,两种结果都是成功
	Clear(ctx context.Context, userID uint) (ClearResult, error)
}

type service struct {
	repo  Repository
	books book.Service
}

// NewService 创建购物车服务
func NewService(repo Repository, books book.Service) Service {
	return &service{repo: repo, books: books}
}

func (s *service) Add(ctx context.Context, userID, bookID uint) (*Cart, error) {
	b, err := s.books.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b.IsOwnedBy(userID) {
		return nil, ErrOwnBook
	}
	if !b.IsAvailable() {
		return nil, ErrBookNotAvailable
	}
	return s.repo.AddBook(ctx, userID, bookID)
}

func (s *service) Remove(ctx context.Context, userID, bookID uint) (*Cart, error) {
	return s.repo.RemoveBook(ctx, userID, bookID)
}

func (s *service) Get(ctx context.Context, userID uint) (*Cart, error) {
	c, err := s.repo.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return Empty(userID), nil
	}
	return c, nil
}

func (s *service) Clear(ctx context.Context, userID uint) (ClearResult, error) {
	n, err := s.repo.Clear(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return ClearedAlready, nil
	}
	return Cleared, nil
}
