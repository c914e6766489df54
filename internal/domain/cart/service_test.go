package cart_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookswap/internal/domain/book"
	"github.com/xiebiao/bookswap/internal/domain/cart"
	"github.com/xiebiao/bookswap/internal/infrastructure/persistence/memory"
)

type fixture struct {
	books book.Service
	carts cart.Service
}

func newFixture() *fixture {
	s := memory.NewStore()
	books := book.NewService(memory.NewBookRepository(s))
	return &fixture{
		books: books,
		carts: cart.NewService(memory.NewCartRepository(s), books),
	}
}

func (f *fixture) list(t *testing.T, sellerID uint) *book.Book {
	t.Helper()
	b, err := f.books.Create(context.Background(), sellerID, book.Details{
		Title: "线性代数", Level: book.LevelUndergraduate, Standard: "大二", Institute: "浙江大学",
		Condition: book.ConditionFine, Price: 3000,
	}, []string{"cover.jpg"})
	require.NoError(t, err)
	return b
}

func TestService_Get_MissingCartIsEmpty(t *testing.T) {
	f := newFixture()

	c, err := f.carts.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, c.Exists())
	assert.True(t, c.IsEmpty())
	assert.Equal(t, uint(7), c.UserID)
}

func TestService_Add(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.list(t, 1)

	t.Run("幂等", func(t *testing.T) {
		c, err := f.carts.Add(ctx, 2, b.ID)
		require.NoError(t, err)
		assert.True(t, c.Exists())
		assert.Equal(t, []uint{b.ID}, c.BookIDs)

		c, err = f.carts.Add(ctx, 2, b.ID)
		require.NoError(t, err)
		assert.Len(t, c.BookIDs, 1)
	})

	t.Run("自己的图书", func(t *testing.T) {
		_, err := f.carts.Add(ctx, 1, b.ID)
		assert.ErrorIs(t, err, cart.ErrOwnBook)
	})

	t.Run("图书不存在", func(t *testing.T) {
		_, err := f.carts.Add(ctx, 2, 999)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("图书已售出", func(t *testing.T) {
		sold := f.list(t, 1)
		_, err := f.books.MarkSold(ctx, sold.ID, 3)
		require.NoError(t, err)

		_, err = f.carts.Add(ctx, 2, sold.ID)
		assert.ErrorIs(t, err, cart.ErrBookNotAvailable)
	})
}

// TestService_StaleItemKept 加入后被别人买走的图书仍留在购物车中
func TestService_StaleItemKept(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.list(t, 1)

	_, err := f.carts.Add(ctx, 2, b.ID)
	require.NoError(t, err)
	_, err = f.books.MarkSold(ctx, b.ID, 3)
	require.NoError(t, err)

	c, err := f.carts.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, c.Contains(b.ID))
}

func TestService_Remove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.list(t, 1)

	_, err := f.carts.Remove(ctx, 2, b.ID)
	assert.ErrorIs(t, err, cart.ErrCartItemNotFound, "没有购物车")

	_, err = f.carts.Add(ctx, 2, b.ID)
	require.NoError(t, err)

	c, err := f.carts.Remove(ctx, 2, b.ID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, err = f.carts.Remove(ctx, 2, b.ID)
	assert.ErrorIs(t, err, cart.ErrCartItemNotFound, "图书不在购物车中")
}

func TestService_Clear(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.list(t, 1)

	res, err := f.carts.Clear(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, cart.ClearedAlready, res, "没有购物车时视为已为空")

	_, err = f.carts.Add(ctx, 2, b.ID)
	require.NoError(t, err)

	res, err = f.carts.Clear(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, cart.Cleared, res)

	res, err = f.carts.Clear(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, cart.ClearedAlready, res)

	c, err := f.carts.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, c.Exists(), "清空后购物车仍然存在")
	assert.True(t, c.IsEmpty())
}
