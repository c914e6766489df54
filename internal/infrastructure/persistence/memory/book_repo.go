package memory

import (
	"context"

	"github.com/xiebiao/bookswap/internal/domain/book"
)

// BookRepository book.Repository的内存实现
type BookRepository struct {
	s *Store
}

// NewBookRepository 创建图书仓储
func NewBookRepository(s *Store) book.Repository {
	return &BookRepository{s: s}
}

func (r *BookRepository) Create(ctx context.Context, b *book.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextBookID++
	b.ID = r.s.nextBookID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.s.now()
		b.UpdatedAt = b.CreatedAt
	}
	r.s.books[b.ID] = b.Clone()
	return nil
}

func (r *BookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b.Clone(), nil
}

func (r *BookRepository) ListBySeller(ctx context.Context, sellerID uint) ([]*book.Book, error) {
	return r.filter(func(b *book.Book) bool { return b.SellerID == sellerID }), nil
}

func (r *BookRepository) ListByStatus(ctx context.Context, status book.Status) ([]*book.Book, error) {
	return r.filter(func(b *book.Book) bool { return b.Status == status }), nil
}

func (r *BookRepository) ListAvailableWithSeller(ctx context.Context) ([]*book.Listing, error) {
	books := r.filter(func(b *book.Book) bool { return b.Status == book.StatusAvailable })

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	listings := make([]*book.Listing, 0, len(books))
	for _, b := range books {
		l := &book.Listing{Book: b, Seller: book.SellerSummary{ID: b.SellerID}}
		if u, ok := r.s.users[b.SellerID]; ok {
			l.Seller.Username = u.Username
			l.Seller.FullName = u.FullName
			l.Seller.Avatar = u.Avatar
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func (r *BookRepository) UpdateDetails(ctx context.Context, id, sellerID uint, d book.Details) (*book.Book, error) {
	return r.conditional(id, func(b *book.Book) bool { return b.SellerID == sellerID }, func(b *book.Book) {
		b.UpdateDetails(d)
	})
}

func (r *BookRepository) MarkSold(ctx context.Context, id, buyerID uint) (*book.Book, error) {
	return r.conditional(id, func(b *book.Book) bool {
		return b.Status == book.StatusAvailable && b.SellerID != buyerID
	}, func(b *book.Book) {
		_ = b.MarkSold(buyerID)
	})
}

func (r *BookRepository) MarkAvailable(ctx context.Context, id uint) (*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	b.Revert()
	return b.Clone(), nil
}

func (r *BookRepository) DeleteAvailable(ctx context.Context, id, sellerID uint) (*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.books[id]
	if !ok || b.SellerID != sellerID || b.Status != book.StatusAvailable {
		return nil, book.ErrPreconditionFailed
	}
	delete(r.s.books, id)
	return b.Clone(), nil
}

// conditional 检查与修改在同一个临界区内完成
func (r *BookRepository) conditional(id uint, match func(*book.Book) bool, mutate func(*book.Book)) (*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.books[id]
	if !ok || !match(b) {
		return nil, book.ErrPreconditionFailed
	}
	mutate(b)
	return b.Clone(), nil
}

func (r *BookRepository) filter(match func(*book.Book) bool) []*book.Book {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*book.Book, 0)
	for _, b := range r.s.books {
		if match(b) {
			out = append(out, b.Clone())
		}
	}
	sortBooks(out)
	return out
}
