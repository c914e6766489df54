// Package market 交易协调器(ConsistencyCoordinator)
//
// 存储只保证单条记录的条件更新是原子的，跨图书、订单、用户的写操作
// 按固定顺序执行：第一个写操作就是建立核心不变量的那一步（提交点），
// 之后的写操作尽力而为，失败时记录"partial inconsistency"并发布对账事件，
// 不回滚提交点，也不在请求内重试。并发购买同一本书由图书的条件更新裁决，不加锁。
package market

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xiebiao/bookswap/internal/domain/book"
	"github.com/xiebiao/bookswap/internal/domain/order"
	"github.com/xiebiao/bookswap/internal/domain/user"
	"github.com/xiebiao/bookswap/pkg/metrics"
	"github.com/xiebiao/bookswap/pkg/saga"
	"github.com/xiebiao/bookswap/pkg/tracing"
)

const tracerName = "bookswap/market"

// Coordinator 跨实体操作的协调器
type Coordinator struct {
	books    book.Service
	orders   order.Service
	users    user.Service
	reporter Reporter
	log      *zap.Logger
}

// NewCoordinator 创建协调器，reporter为nil时只记录日志和指标
func NewCoordinator(books book.Service, orders order.Service, users user.Service, reporter Reporter, log *zap.Logger) *Coordinator {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Coordinator{
		books:    books,
		orders:   orders,
		users:    users,
		reporter: reporter,
		log:      log,
	}
}

// PlaceOrderResult 下单结果
// Order为nil表示图书已售出但订单记录没有写入（已上报对账）
type PlaceOrderResult struct {
	Book       *book.Book
	Order      *order.Order
	Incomplete []string
}

// CancelOrderResult 取消订单结果
// Book为nil表示订单已取消但图书没有回到在售（已上报对账）
type CancelOrderResult struct {
	Order      *order.Order
	Book       *book.Book
	Incomplete []string
}

// BuyBook 直接购买：只标记售出，不创建订单，不写购买列表
func (c *Coordinator) BuyBook(ctx context.Context, bookID, buyerID uint) (b *book.Book, err error) {
	ctx, r := c.begin(ctx, OpBuyBook, bookID, buyerID)
	defer func() { r.end(err) }()

	_, err = saga.New(OpBuyBook).
		AddStep("check_book", c.checkEligible(bookID, buyerID), nil).
		AddPivot("mark_sold", func(ctx context.Context) error {
			sold, err := c.books.MarkSold(ctx, bookID, buyerID)
			b = sold
			return err
		}).
		OnFailure(r.onFailure).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// PlaceOrder 下单
//  1. 读取图书做资格校验（仅参考，真正的检查在第2步）
//  2. 提交点：条件更新图书为已售，失败则整体失败，不做任何写入
//  3. 插入待处理订单
//  4. 图书ID加入买家的已购买列表
func (c *Coordinator) PlaceOrder(ctx context.Context, bookID, buyerID uint) (res *PlaceOrderResult, err error) {
	ctx, r := c.begin(ctx, OpPlaceOrder, bookID, buyerID)
	defer func() { r.end(err) }()

	res = &PlaceOrderResult{}
	_, err = saga.New(OpPlaceOrder).
		AddStep("check_book", c.checkEligible(bookID, buyerID), nil).
		AddPivot("mark_sold", func(ctx context.Context) error {
			b, err := c.books.MarkSold(ctx, bookID, buyerID)
			res.Book = b
			return err
		}).
		AddBestEffort(StepInsertOrder, func(ctx context.Context) error {
			o, err := c.orders.Create(ctx, buyerID, bookID)
			if err != nil {
				return err
			}
			res.Order = o
			r.orderID = o.ID
			return nil
		}).
		AddBestEffort(StepAddPurchased, func(ctx context.Context) error {
			return c.users.AddPurchasedBook(ctx, buyerID, bookID)
		}).
		OnFailure(r.onFailure).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	res.Incomplete = r.failed
	return res, nil
}

// CancelOrder 取消订单
//  1. 读取订单，校验买家身份与待处理状态
//  2. 提交点：条件更新订单为已取消
//  3. 图书回到在售
//  4. 图书ID移出买家的已购买列表
func (c *Coordinator) CancelOrder(ctx context.Context, orderID, requesterID uint) (res *CancelOrderResult, err error) {
	ctx, r := c.begin(ctx, OpCancelOrder, 0, requesterID)
	r.orderID = orderID
	defer func() { r.end(err) }()

	res = &CancelOrderResult{}
	_, err = saga.New(OpCancelOrder).
		AddStep("load_order", func(ctx context.Context) error {
			o, err := c.orders.Get(ctx, orderID)
			if err != nil {
				return err
			}
			if !o.IsOwnedBy(requesterID) {
				return order.ErrForbidden
			}
			if !o.CanTransitionTo(order.OrderStatusCancelled) {
				return order.ErrNotCancellable
			}
			r.bookID = o.BookID
			return nil
		}, nil).
		AddPivot("cancel_order", func(ctx context.Context) error {
			o, err := c.orders.Cancel(ctx, orderID, requesterID)
			res.Order = o
			return err
		}).
		AddBestEffort(StepRevertBook, func(ctx context.Context) error {
			b, err := c.books.RevertToAvailable(ctx, r.bookID)
			res.Book = b
			return err
		}).
		AddBestEffort(StepRemovePurchased, func(ctx context.Context) error {
			return c.users.RemovePurchasedBook(ctx, requesterID, r.bookID)
		}).
		OnFailure(r.onFailure).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	res.Incomplete = r.failed
	return res, nil
}

// ListBook 发布图书，再把图书ID加入卖家的在售列表
func (c *Coordinator) ListBook(ctx context.Context, sellerID uint, d book.Details, images []string) (b *book.Book, err error) {
	ctx, r := c.begin(ctx, OpListBook, 0, sellerID)
	defer func() { r.end(err) }()

	_, err = saga.New(OpListBook).
		AddPivot("create_book", func(ctx context.Context) error {
			created, err := c.books.Create(ctx, sellerID, d, images)
			if err != nil {
				return err
			}
			b = created
			r.bookID = created.ID
			return nil
		}).
		AddBestEffort(StepAddToSell, func(ctx context.Context) error {
			return c.users.AddBookToSell(ctx, sellerID, r.bookID)
		}).
		OnFailure(r.onFailure).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DelistBook 删除在售图书，再把图书ID移出卖家的在售列表
func (c *Coordinator) DelistBook(ctx context.Context, bookID, requesterID uint) (b *book.Book, err error) {
	ctx, r := c.begin(ctx, OpDelistBook, bookID, requesterID)
	defer func() { r.end(err) }()

	_, err = saga.New(OpDelistBook).
		AddPivot("delete_book", func(ctx context.Context) error {
			deleted, err := c.books.Delete(ctx, bookID, requesterID)
			b = deleted
			return err
		}).
		AddBestEffort(StepRemoveToSell, func(ctx context.Context) error {
			return c.users.RemoveBookToSell(ctx, requesterID, bookID)
		}).
		OnFailure(r.onFailure).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// checkEligible 提交点之前的参考读取
func (c *Coordinator) checkEligible(bookID, buyerID uint) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		b, err := c.books.Get(ctx, bookID)
		if err != nil {
			return err
		}
		if b.IsOwnedBy(buyerID) {
			return book.ErrSelfPurchase
		}
		if !b.IsAvailable() {
			return book.ErrBookNotAvailable
		}
		return nil
	}
}

// run 一次协调器操作的观测上下文
type run struct {
	c       *Coordinator
	op      string
	start   time.Time
	span    trace.Span
	bookID  uint
	orderID uint
	userID  uint
	failed  []string
}

func (c *Coordinator) begin(ctx context.Context, op string, bookID, userID uint) (context.Context, *run) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "market."+op)
	return ctx, &run{
		c:      c,
		op:     op,
		start:  time.Now(),
		span:   span,
		bookID: bookID,
		userID: userID,
	}
}

func (r *run) end(err error) {
	result := "success"
	switch {
	case err != nil:
		result = "failure"
	case len(r.failed) > 0:
		result = "partial"
	}
	r.span.SetAttributes(
		attribute.Int64("book_id", int64(r.bookID)),
		attribute.Int64("user_id", int64(r.userID)),
		attribute.String("result", result),
	)
	metrics.ObserveMarketOperation(r.op, result, time.Since(r.start).Seconds())
	tracing.EndSpan(r.span, err)
}

// onFailure 提交点之后的步骤失败：日志、指标、对账事件，请求本身仍然成功
func (r *run) onFailure(ctx context.Context, f saga.StepFailure) {
	r.failed = append(r.failed, f.Step)

	r.c.log.Error("partial inconsistency",
		zap.String("operation", r.op),
		zap.String("step", f.Step),
		zap.Uint("book_id", r.bookID),
		zap.Uint("order_id", r.orderID),
		zap.Uint("user_id", r.userID),
		zap.String("trace_id", tracing.ExtractTraceID(ctx)),
		zap.Error(f.Err),
	)
	metrics.IncPartialInconsistency(r.op, f.Step)
	r.span.AddEvent("partial inconsistency", trace.WithAttributes(attribute.String("step", f.Step)))

	ev := Event{
		Operation:  r.op,
		Step:       f.Step,
		BookID:     r.bookID,
		OrderID:    r.orderID,
		UserID:     r.userID,
		Error:      f.Err.Error(),
		OccurredAt: time.Now().UTC(),
	}
	if err := r.c.reporter.Report(ctx, ev); err != nil {
		r.c.log.Warn("对账事件发布失败",
			zap.String("routing_key", ev.RoutingKey()),
			zap.Error(err),
		)
	}
}
