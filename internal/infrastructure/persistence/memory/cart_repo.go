package memory

import (
	"context"

	"github.com/xiebiao/bookswap/internal/domain/cart"
)

// CartRepository cart.Repository的内存实现
type CartRepository struct {
	s *Store
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(s *Store) cart.Repository {
	return &CartRepository{s: s}
}

func (r *CartRepository) Find(ctx context.Context, userID uint) (*cart.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.carts[userID]
	if !ok {
		return nil, nil
	}
	return cloneCart(c), nil
}

func (r *CartRepository) AddBook(ctx context.Context, userID, bookID uint) (*cart.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.carts[userID]
	if !ok {
		now := r.s.now()
		c = &cart.Cart{UserID: userID, BookIDs: []uint{}, CreatedAt: now, UpdatedAt: now}
		r.s.carts[userID] = c
	}
	if !c.Contains(bookID) {
		c.BookIDs = append(c.BookIDs, bookID)
		c.UpdatedAt = r.s.now()
	}
	return cloneCart(c), nil
}

func (r *CartRepository) RemoveBook(ctx context.Context, userID, bookID uint) (*cart.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.carts[userID]
	if !ok || !c.Contains(bookID) {
		return nil, cart.ErrCartItemNotFound
	}
	kept := make([]uint, 0, len(c.BookIDs))
	for _, id := range c.BookIDs {
		if id != bookID {
			kept = append(kept, id)
		}
	}
	c.BookIDs = kept
	c.UpdatedAt = r.s.now()
	return cloneCart(c), nil
}

func (r *CartRepository) Clear(ctx context.Context, userID uint) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.carts[userID]
	if !ok {
		return 0, nil
	}
	n := len(c.BookIDs)
	c.BookIDs = []uint{}
	c.UpdatedAt = r.s.now()
	return n, nil
}

func cloneCart(c *cart.Cart) *cart.Cart {
	out := *c
	out.BookIDs = append([]uint{}, c.BookIDs...)
	return &out
}
