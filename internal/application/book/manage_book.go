package book

import (
	"context"

	"github.com/xiebiao/bookswap/internal/application/market"
	"github.com/xiebiao/bookswap/internal/domain/book"
)

// UpdateBookUseCase 修改图书信息，只涉及图书本身
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建修改用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// UpdateBookRequest 修改请求DTO，字段全部必填
type UpdateBookRequest struct {
	BookID      uint
	RequesterID uint
	PublishBookRequest
}

// Execute 执行修改
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookView, error) {
	b, err := uc.bookService.UpdateDetails(ctx, req.BookID, req.RequesterID, req.Details())
	if err != nil {
		return nil, err
	}
	view := NewBookView(b)
	return &view, nil
}

// DeleteBookUseCase 下架图书
type DeleteBookUseCase struct {
	coordinator *market.Coordinator
}

// NewDeleteBookUseCase 创建下架用例
func NewDeleteBookUseCase(coordinator *market.Coordinator) *DeleteBookUseCase {
	return &DeleteBookUseCase{coordinator: coordinator}
}

// Execute 执行下架，返回被删除的图书
func (uc *DeleteBookUseCase) Execute(ctx context.Context, bookID, requesterID uint) (*BookView, error) {
	b, err := uc.coordinator.DelistBook(ctx, bookID, requesterID)
	if err != nil {
		return nil, err
	}
	view := NewBookView(b)
	return &view, nil
}

// BuyBookUseCase 直接购买（不创建订单）
type BuyBookUseCase struct {
	coordinator *market.Coordinator
}

// NewBuyBookUseCase 创建购买用例
func NewBuyBookUseCase(coordinator *market.Coordinator) *BuyBookUseCase {
	return &BuyBookUseCase{coordinator: coordinator}
}

// Execute 执行购买
func (uc *BuyBookUseCase) Execute(ctx context.Context, bookID, buyerID uint) (*BookView, error) {
	b, err := uc.coordinator.BuyBook(ctx, bookID, buyerID)
	if err != nil {
		return nil, err
	}
	view := NewBookView(b)
	return &view, nil
}
