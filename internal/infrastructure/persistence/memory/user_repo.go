package memory

import (
	"context"

	"github.com/xiebiao/bookswap/internal/domain/user"
	apperrors "github.com/xiebiao/bookswap/pkg/errors"
)

// UserRepository user.Repository的内存实现
type UserRepository struct {
	s *Store
}

// NewUserRepository 创建用户仓储
func NewUserRepository(s *Store) user.Repository {
	return &UserRepository{s: s}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.emails[u.Email]; ok {
		return apperrors.ErrEmailDuplicate
	}
	r.s.nextUserID++
	u.ID = r.s.nextUserID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.s.now()
		u.UpdatedAt = u.CreatedAt
	}
	r.s.users[u.ID] = u.Clone()
	r.s.emails[u.Email] = u.ID
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return r.s.users[id].Clone(), nil
}

func (r *UserRepository) UpdateAccountDetails(ctx context.Context, id uint, d user.AccountDetails) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u.ApplyAccountDetails(d)
	u.UpdatedAt = r.s.now()
	return u.Clone(), nil
}

func (r *UserRepository) AddBookToSell(ctx context.Context, userID, bookID uint) error {
	return r.update(userID, func(u *user.User) { u.BooksToSell = user.AddID(u.BooksToSell, bookID) })
}

func (r *UserRepository) RemoveBookToSell(ctx context.Context, userID, bookID uint) error {
	return r.update(userID, func(u *user.User) { u.BooksToSell = user.RemoveID(u.BooksToSell, bookID) })
}

func (r *UserRepository) AddPurchasedBook(ctx context.Context, userID, bookID uint) error {
	return r.update(userID, func(u *user.User) { u.BooksPurchased = user.AddID(u.BooksPurchased, bookID) })
}

func (r *UserRepository) RemovePurchasedBook(ctx context.Context, userID, bookID uint) error {
	return r.update(userID, func(u *user.User) { u.BooksPurchased = user.RemoveID(u.BooksPurchased, bookID) })
}

func (r *UserRepository) update(userID uint, mutate func(u *user.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	mutate(u)
	u.UpdatedAt = r.s.now()
	return nil
}
