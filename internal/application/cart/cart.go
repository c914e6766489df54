package cart

import (
	"context"
	"errors"

	appbook "github.com/xiebiao/bookswap/internal/application/book"
	"github.com/xiebiao/bookswap/internal/domain/book"
	"github.com/xiebiao/bookswap/internal/domain/cart"
	"github.com/xiebiao/bookswap/pkg/metrics"
)

// CartUseCase 购物车用例
// 读取时逐本解析图书：加入后被买走的标记为不可购买，被删除的标记为缺失，都不静默过滤
type CartUseCase struct {
	cartService cart.Service
	bookService book.Service
}

// NewCartUseCase 创建购物车用例
func NewCartUseCase(cartService cart.Service, bookService book.Service) *CartUseCase {
	return &CartUseCase{cartService: cartService, bookService: bookService}
}

// CartItem 购物车中的一本书
type CartItem struct {
	BookID    uint              `json:"book_id"`
	Available bool              `json:"available"` // 仍可购买
	Missing   bool              `json:"missing"`   // 图书已被删除
	Book      *appbook.BookView `json:"book,omitempty"`
}

// CartView 购物车DTO
type CartView struct {
	UserID         uint       `json:"user_id"`
	Items          []CartItem `json:"items"`
	Empty          bool       `json:"empty"`
	AvailableTotal int64      `json:"available_total"` // 可购买图书价格之和(分)
	AvailableYuan  string     `json:"available_yuan"`
}

// ClearView 清空结果
type ClearView struct {
	Message string `json:"message"`
}

// Add 加入购物车
func (uc *CartUseCase) Add(ctx context.Context, userID, bookID uint) (*CartView, error) {
	c, err := uc.cartService.Add(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	metrics.IncCartMutation("add")
	return uc.view(ctx, c)
}

// Remove 移除图书
func (uc *CartUseCase) Remove(ctx context.Context, userID, bookID uint) (*CartView, error) {
	c, err := uc.cartService.Remove(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	metrics.IncCartMutation("remove")
	return uc.view(ctx, c)
}

// View 查看购物车，不存在时返回空购物车
func (uc *CartUseCase) View(ctx context.Context, userID uint) (*CartView, error) {
	c, err := uc.cartService.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, c)
}

// Clear 清空购物车
func (uc *CartUseCase) Clear(ctx context.Context, userID uint) (*ClearView, error) {
	result, err := uc.cartService.Clear(ctx, userID)
	if err != nil {
		return nil, err
	}
	metrics.IncCartMutation("clear")
	return &ClearView{Message: result.String()}, nil
}

func (uc *CartUseCase) view(ctx context.Context, c *cart.Cart) (*CartView, error) {
	v := &CartView{UserID: c.UserID, Items: make([]CartItem, 0, len(c.BookIDs)), Empty: c.IsEmpty()}

	for _, id := range c.BookIDs {
		item := CartItem{BookID: id}
		b, err := uc.bookService.Get(ctx, id)
		switch {
		case errors.Is(err, book.ErrBookNotFound):
			item.Missing = true
		case err != nil:
			return nil, err
		default:
			bv := appbook.NewBookView(b)
			item.Book = &bv
			item.Available = b.IsAvailable()
			if item.Available {
				v.AvailableTotal += b.Price
			}
		}
		v.Items = append(v.Items, item)
	}
	v.AvailableYuan = appbook.FormatYuan(v.AvailableTotal)
	return v, nil
}
