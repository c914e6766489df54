package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookswap/internal/application/market"
	"github.com/xiebiao/bookswap/internal/domain/book"
	"github.com/xiebiao/bookswap/internal/domain/order"
	"github.com/xiebiao/bookswap/internal/domain/user"
	"github.com/xiebiao/bookswap/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookswap/pkg/errors"
)

type env struct {
	place  *PlaceOrderUseCase
	cancel *CancelOrderUseCase
	list   *ListOrdersUseCase
	seller *user.User
	buyer  *user.User
	book   *book.Book
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	books := book.NewService(memory.NewBookRepository(s))
	orders := order.NewService(memory.NewOrderRepository(s))
	users := user.NewService(memory.NewUserRepository(s))
	coord := market.NewCoordinator(books, orders, users, market.NopReporter{}, zap.NewNop())

	seller, err := users.Register(ctx, "seller@example.com", "secret123", user.Profile{Username: "seller", FullName: "王老师"})
	require.NoError(t, err)
	buyer, err := users.Register(ctx, "buyer@example.com", "secret123", user.Profile{Username: "buyer", FullName: "李同学"})
	require.NoError(t, err)

	b, err := coord.ListBook(ctx, seller.ID, book.Details{
		Title: "高等数学", Level: book.LevelUndergraduate, Standard: "大一",
		Institute: "同济大学", Condition: book.ConditionFine, Price: 3599,
	}, []string{"cover.jpg"})
	require.NoError(t, err)

	return &env{
		place:  NewPlaceOrderUseCase(coord),
		cancel: NewCancelOrderUseCase(coord),
		list:   NewListOrdersUseCase(orders),
		seller: seller,
		buyer:  buyer,
		book:   b,
	}
}

func TestPlaceListCancel(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	placed, err := e.place.Execute(ctx, e.book.ID, e.buyer.ID)
	require.NoError(t, err)
	require.NotNil(t, placed.Order)
	assert.False(t, placed.PendingReconcile)
	assert.Equal(t, "Pending", placed.Order.Status)
	assert.Equal(t, "Sold", placed.Book.Status)
	assert.Len(t, placed.Order.OrderNo, 3+26)

	groups, err := e.list.Execute(ctx, e.buyer.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, int64(3599), groups[0].Total)
	assert.Equal(t, "35.99", groups[0].TotalYuan)
	require.Len(t, groups[0].Orders, 1)
	line := groups[0].Orders[0]
	assert.Equal(t, placed.Order.ID, line.OrderID)
	assert.Equal(t, "高等数学", line.Book.Title)
	assert.Equal(t, "王老师", line.Seller.FullName)

	cancelled, err := e.cancel.Execute(ctx, placed.Order.ID, e.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", cancelled.Order.Status)
	assert.False(t, cancelled.PendingReconcile)

	_, err = e.cancel.Execute(ctx, placed.Order.ID, e.buyer.ID)
	assert.True(t, errors.Is(err, order.ErrNotCancellable))
}

func TestPlaceOrder_SoldBook(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.place.Execute(ctx, e.book.ID, e.buyer.ID)
	require.NoError(t, err)

	_, err = e.place.Execute(ctx, e.book.ID, e.buyer.ID)
	assert.Equal(t, apperrors.ErrCodeBookNotAvailable, apperrors.CodeOf(err))

	_, err = e.place.Execute(ctx, e.book.ID, e.seller.ID)
	assert.Error(t, err)
}

func TestListOrders_Empty(t *testing.T) {
	e := setup(t)
	groups, err := e.list.Execute(context.Background(), e.buyer.ID)
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestCancelOrder_OtherBuyer(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	placed, err := e.place.Execute(ctx, e.book.ID, e.buyer.ID)
	require.NoError(t, err)

	_, err = e.cancel.Execute(ctx, placed.Order.ID, e.seller.ID)
	assert.Equal(t, apperrors.ErrCodeForbidden, apperrors.CodeOf(err))
}
