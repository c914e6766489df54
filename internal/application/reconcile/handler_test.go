package reconcile

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookswap/internal/application/market"
	"github.com/xiebiao/bookswap/internal/domain/book"
	"github.com/xiebiao/bookswap/internal/domain/order"
	"github.com/xiebiao/bookswap/internal/domain/user"
	"github.com/xiebiao/bookswap/internal/infrastructure/persistence/memory"
)

type fixture struct {
	books    book.Service
	orders   order.Service
	users    user.Service
	handler  *Handler
	seller   *user.User
	buyer    *user.User
	bookID   uint
	userRepo user.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()

	f := &fixture{
		books:    book.NewService(memory.NewBookRepository(s)),
		orders:   order.NewService(memory.NewOrderRepository(s)),
		userRepo: memory.NewUserRepository(s),
	}
	f.users = user.NewService(f.userRepo)
	f.handler = NewHandler(f.books, f.orders, f.users, zap.NewNop())

	f.seller = user.NewUser("s@x.com", "hash", user.Profile{Username: "s"})
	require.NoError(t, f.userRepo.Create(ctx, f.seller))
	f.buyer = user.NewUser("b@x.com", "hash", user.Profile{Username: "b"})
	require.NoError(t, f.userRepo.Create(ctx, f.buyer))

	b, err := f.books.Create(ctx, f.seller.ID, book.Details{
		Title: "大学物理", Level: book.LevelUndergraduate, Standard: "大一",
		Institute: "复旦大学", Condition: book.ConditionFair, Price: 800,
	}, []string{"p.jpg"})
	require.NoError(t, err)
	f.bookID = b.ID
	return f
}

func (f *fixture) event(op, step string, userID uint) market.Event {
	return market.Event{
		Operation: op, Step: step, BookID: f.bookID, UserID: userID,
		OccurredAt: time.Now().UTC().Add(time.Second),
	}
}

func (f *fixture) purchased(t *testing.T) []uint {
	t.Helper()
	u, err := f.users.Get(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	return u.BooksPurchased
}

func TestHandle_AddPurchased(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(market.OpPlaceOrder, market.StepAddPurchased, f.buyer.ID)

	// 图书未售出：不修复
	out, err := f.handler.Handle(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)
	assert.Empty(t, f.purchased(t))

	_, err = f.books.MarkSold(ctx, f.bookID, f.buyer.ID)
	require.NoError(t, err)

	out, err = f.handler.Handle(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, Repaired, out)
	assert.Equal(t, []uint{f.bookID}, f.purchased(t))

	// 重复处理结果不变
	_, err = f.handler.Handle(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.bookID}, f.purchased(t))
}

func TestHandle_RemovePurchased(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.users.AddPurchasedBook(ctx, f.buyer.ID, f.bookID))

	out, err := f.handler.Handle(ctx, f.event(market.OpCancelOrder, market.StepRemovePurchased, f.buyer.ID))
	require.NoError(t, err)
	assert.Equal(t, Repaired, out)
	assert.Empty(t, f.purchased(t))
}

func TestHandle_RevertBook(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(market.OpCancelOrder, market.StepRevertBook, f.buyer.ID)

	_, err := f.books.MarkSold(ctx, f.bookID, f.buyer.ID)
	require.NoError(t, err)
	o, err := f.orders.Create(ctx, f.buyer.ID, f.bookID)
	require.NoError(t, err)

	// 订单仍为待处理：不修复
	out, err := f.handler.Handle(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)

	_, err = f.orders.Cancel(ctx, o.ID, f.buyer.ID)
	require.NoError(t, err)

	out, err = f.handler.Handle(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, Repaired, out)

	b, err := f.books.Get(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, book.StatusAvailable, b.Status)
	assert.NoError(t, b.CheckInvariant())
}

func TestHandle_RevertBook_SkipsDirectPurchase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// 直接购买没有订单，不能被回滚
	_, err := f.books.MarkSold(ctx, f.bookID, f.buyer.ID)
	require.NoError(t, err)

	out, err := f.handler.Handle(ctx, f.event(market.OpCancelOrder, market.StepRevertBook, f.buyer.ID))
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)

	// 事件之后图书被修改过：跳过
	stale := f.event(market.OpCancelOrder, market.StepRevertBook, f.buyer.ID)
	stale.OccurredAt = time.Now().UTC().Add(-time.Hour)
	out, err = f.handler.Handle(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)
}

func TestHandle_InsertOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev := f.event(market.OpPlaceOrder, market.StepInsertOrder, f.buyer.ID)

	_, err := f.books.MarkSold(ctx, f.bookID, f.buyer.ID)
	require.NoError(t, err)

	out, err := f.handler.Handle(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, Repaired, out)

	out, err = f.handler.Handle(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, Skipped, out, "已有订单时不重复补写")

	orders, err := f.orders.ListByBook(ctx, f.bookID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.OrderStatusPending, orders[0].Status)
	assert.Equal(t, f.buyer.ID, orders[0].BuyerID)
}

func TestHandle_InsertOrder_AfterCancelledOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	second := user.NewUser("b2@x.com", "hash", user.Profile{Username: "b2"})
	require.NoError(t, f.userRepo.Create(ctx, second))

	// 第一个买家下单后取消，图书回到在售
	_, err := f.books.MarkSold(ctx, f.bookID, f.buyer.ID)
	require.NoError(t, err)
	first, err := f.orders.Create(ctx, f.buyer.ID, f.bookID)
	require.NoError(t, err)
	_, err = f.orders.Cancel(ctx, first.ID, f.buyer.ID)
	require.NoError(t, err)
	_, err = f.books.RevertToAvailable(ctx, f.bookID)
	require.NoError(t, err)

	// 第二个买家下单，订单写入失败
	_, err = f.books.MarkSold(ctx, f.bookID, second.ID)
	require.NoError(t, err)

	out, err := f.handler.Handle(ctx, f.event(market.OpPlaceOrder, market.StepInsertOrder, second.ID))
	require.NoError(t, err)
	assert.Equal(t, Repaired, out)

	orders, err := f.orders.ListByBook(ctx, f.bookID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	var active []*order.Order
	for _, o := range orders {
		if o.Status != order.OrderStatusCancelled {
			active = append(active, o)
		}
	}
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].BuyerID)
	assert.Equal(t, order.OrderStatusPending, active[0].Status)

	// 重放不再补写
	out, err = f.handler.Handle(ctx, f.event(market.OpPlaceOrder, market.StepInsertOrder, second.ID))
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)
}

func TestHandle_SellerLists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.handler.Handle(ctx, f.event(market.OpListBook, market.StepAddToSell, f.seller.ID))
	require.NoError(t, err)
	assert.Equal(t, Repaired, out)

	out, err = f.handler.Handle(ctx, f.event(market.OpDelistBook, market.StepRemoveToSell, f.seller.ID))
	require.NoError(t, err)
	assert.Equal(t, Skipped, out, "图书仍存在时不移除")

	_, err = f.books.Delete(ctx, f.bookID, f.seller.ID)
	require.NoError(t, err)
	out, err = f.handler.Handle(ctx, f.event(market.OpDelistBook, market.StepRemoveToSell, f.seller.ID))
	require.NoError(t, err)
	assert.Equal(t, Repaired, out)

	u, err := f.users.Get(ctx, f.seller.ID)
	require.NoError(t, err)
	assert.Empty(t, u.BooksToSell)
}

func TestHandle_UnknownUserAndStep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.handler.Handle(ctx, f.event(market.OpListBook, market.StepAddToSell, 404))
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)

	out, err = f.handler.Handle(ctx, f.event(market.OpListBook, "send_email", f.seller.ID))
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)
}

func TestHandleMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.NoError(t, f.handler.HandleMessage(ctx, "reconcile.x.y", []byte("not json")))

	body, err := json.Marshal(f.event(market.OpListBook, market.StepAddToSell, f.seller.ID))
	require.NoError(t, err)
	require.NoError(t, f.handler.HandleMessage(ctx, "reconcile.list_book.add_to_sell", body))

	u, err := f.users.Get(ctx, f.seller.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.bookID}, u.BooksToSell)
}
