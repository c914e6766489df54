package book

import (
	"context"

	"github.com/xiebiao/bookswap/internal/domain/book"
)

// QueryBooksUseCase 图书查询
// 列表为空时领域服务返回ErrNoListings(404)，这里原样透传
type QueryBooksUseCase struct {
	bookService book.Service
}

// NewQueryBooksUseCase 创建查询用例
func NewQueryBooksUseCase(bookService book.Service) *QueryBooksUseCase {
	return &QueryBooksUseCase{bookService: bookService}
}

// Get 图书详情
func (uc *QueryBooksUseCase) Get(ctx context.Context, id uint) (*BookView, error) {
	b, err := uc.bookService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewBookView(b)
	return &view, nil
}

// BySeller 卖家发布的全部图书
func (uc *QueryBooksUseCase) BySeller(ctx context.Context, sellerID uint) ([]BookView, error) {
	books, err := uc.bookService.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return newBookViews(books), nil
}

// Available 在售图书（含卖家信息）
func (uc *QueryBooksUseCase) Available(ctx context.Context) ([]ListingView, error) {
	listings, err := uc.bookService.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, ListingView{
			BookView: NewBookView(l.Book),
			Seller: SellerView{
				ID:       l.Seller.ID,
				Username: l.Seller.Username,
				FullName: l.Seller.FullName,
				Avatar:   l.Seller.Avatar,
			},
		})
	}
	return views, nil
}

// Sold 已售图书
func (uc *QueryBooksUseCase) Sold(ctx context.Context) ([]BookView, error) {
	books, err := uc.bookService.ListSold(ctx)
	if err != nil {
		return nil, err
	}
	return newBookViews(books), nil
}
