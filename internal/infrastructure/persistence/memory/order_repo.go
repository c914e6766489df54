package memory

import (
	"context"

	"github.com/xiebiao/bookswap/internal/domain/order"
)

// OrderRepository order.Repository的内存实现
type OrderRepository struct {
	s *Store
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(s *Store) order.Repository {
	return &OrderRepository{s: s}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextOrderID++
	o.ID = r.s.nextOrderID
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.s.now()
		o.UpdatedAt = o.CreatedAt
	}
	r.s.orders[o.ID] = o.Clone()
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (r *OrderRepository) ListByBook(ctx context.Context, bookID uint) ([]*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*order.Order, 0)
	for _, o := range r.s.orders {
		if o.BookID == bookID {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, from, to order.OrderStatus) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok || o.Status != from {
		return nil, order.ErrPreconditionFailed
	}
	if err := o.TransitionTo(to); err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

func (r *OrderRepository) ListForBuyer(ctx context.Context, buyerID uint) ([]*order.Line, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lines := make([]*order.Line, 0)
	for _, o := range r.s.orders {
		if o.BuyerID != buyerID {
			continue
		}
		line := &order.Line{
			OrderID:   o.ID,
			OrderNo:   o.OrderNo,
			Status:    o.Status,
			CreatedAt: o.CreatedAt,
		}
		if b, ok := r.s.books[o.BookID]; ok {
			line.Book = order.LineBook{ID: b.ID, Title: b.Title, Price: b.Price}
			line.Seller.ID = b.SellerID
			if u, ok := r.s.users[b.SellerID]; ok {
				line.Seller.FullName = u.FullName
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}
