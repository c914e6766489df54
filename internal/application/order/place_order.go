package order

import (
	"context"

	appbook "github.com/xiebiao/bookswap/internal/application/book"
	"github.com/xiebiao/bookswap/internal/application/market"
	"github.com/xiebiao/bookswap/internal/domain/order"
)

// OrderView 订单DTO
type OrderView struct {
	ID        uint   `json:"id"`
	OrderNo   string `json:"order_no"`
	BuyerID   uint   `json:"buyer_id"`
	BookID    uint   `json:"book_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// NewOrderView 领域实体 → DTO
func NewOrderView(o *order.Order) *OrderView {
	return &OrderView{
		ID:        o.ID,
		OrderNo:   o.OrderNo,
		BuyerID:   o.BuyerID,
		BookID:    o.BookID,
		Status:    o.Status.String(),
		CreatedAt: o.CreatedAt.Format(appbook.TimeLayout),
		UpdatedAt: o.UpdatedAt.Format(appbook.TimeLayout),
	}
}

// PlaceOrderUseCase 下单用例
//
// 图书的条件更新是提交点：并发下单同一本书只有一个成功，其余返回409。
// 订单记录或购买列表写入失败不影响下单结果，由协调器记录并上报对账，
// 这时响应中order为null，pending_reconcile为true。
type PlaceOrderUseCase struct {
	coordinator *market.Coordinator
}

// NewPlaceOrderUseCase 创建下单用例
func NewPlaceOrderUseCase(coordinator *market.Coordinator) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{coordinator: coordinator}
}

// PlaceOrderResponse 下单响应DTO
type PlaceOrderResponse struct {
	Order            *OrderView       `json:"order"`
	Book             appbook.BookView `json:"book"`
	PendingReconcile bool             `json:"pending_reconcile"`
}

// Execute 执行下单
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, bookID, buyerID uint) (*PlaceOrderResponse, error) {
	res, err := uc.coordinator.PlaceOrder(ctx, bookID, buyerID)
	if err != nil {
		return nil, err
	}

	resp := &PlaceOrderResponse{
		Book:             appbook.NewBookView(res.Book),
		PendingReconcile: len(res.Incomplete) > 0,
	}
	if res.Order != nil {
		resp.Order = NewOrderView(res.Order)
	}
	return resp, nil
}
