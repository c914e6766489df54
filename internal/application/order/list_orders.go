package order

import (
	"context"

	appbook "github.com/xiebiao/bookswap/internal/application/book"
	"github.com/xiebiao/bookswap/internal/domain/order"
)

// ListOrdersUseCase 买家订单报表
type ListOrdersUseCase struct {
	orderService order.Service
}

// NewListOrdersUseCase 创建订单报表用例
func NewListOrdersUseCase(orderService order.Service) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderService: orderService}
}

// OrderLineView 报表中的一行
type OrderLineView struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	Book      struct {
		ID        uint   `json:"id"`
		Title     string `json:"title"`
		Price     int64  `json:"price"`
		PriceYuan string `json:"price_yuan"`
	} `json:"book"`
	Seller struct {
		ID       uint   `json:"id"`
		FullName string `json:"full_name"`
	} `json:"seller"`
}

// DayGroupView 同一天(UTC)的订单
type DayGroupView struct {
	Day       string          `json:"day"`
	Total     int64           `json:"total"` // 当天图书价格之和(分)
	TotalYuan string          `json:"total_yuan"`
	Orders    []OrderLineView `json:"orders"`
}

// Execute 按天分组，日期倒序；没有订单时返回空列表
func (uc *ListOrdersUseCase) Execute(ctx context.Context, buyerID uint) ([]DayGroupView, error) {
	groups, err := uc.orderService.ListForBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	views := make([]DayGroupView, 0, len(groups))
	for _, g := range groups {
		gv := DayGroupView{
			Day:       g.Day,
			Total:     g.Total,
			TotalYuan: appbook.FormatYuan(g.Total),
			Orders:    make([]OrderLineView, 0, len(g.Orders)),
		}
		for _, l := range g.Orders {
			var lv OrderLineView
			lv.OrderID = l.OrderID
			lv.OrderNo = l.OrderNo
			lv.Status = l.Status.String()
			lv.CreatedAt = l.CreatedAt.Format(appbook.TimeLayout)
			lv.Book.ID = l.Book.ID
			lv.Book.Title = l.Book.Title
			lv.Book.Price = l.Book.Price
			lv.Book.PriceYuan = appbook.FormatYuan(l.Book.Price)
			lv.Seller.ID = l.Seller.ID
			lv.Seller.FullName = l.Seller.FullName
			gv.Orders = append(gv.Orders, lv)
		}
		views = append(views, gv)
	}
	return views, nil
}
