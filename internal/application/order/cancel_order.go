package order

import (
	"context"

	"github.com/xiebiao/bookswap/internal/application/market"
)

// CancelOrderUseCase 取消订单用例
// 只有买家本人可以取消待处理订单；订单取消成功后图书回到在售
type CancelOrderUseCase struct {
	coordinator *market.Coordinator
}

// NewCancelOrderUseCase 创建取消用例
func NewCancelOrderUseCase(coordinator *market.Coordinator) *CancelOrderUseCase {
	return &CancelOrderUseCase{coordinator: coordinator}
}

// CancelOrderResponse 取消响应DTO
type CancelOrderResponse struct {
	Order            *OrderView `json:"order"`
	PendingReconcile bool       `json:"pending_reconcile"`
}

// Execute 执行取消
func (uc *CancelOrderUseCase) Execute(ctx context.Context, orderID, requesterID uint) (*CancelOrderResponse, error) {
	res, err := uc.coordinator.CancelOrder(ctx, orderID, requesterID)
	if err != nil {
		return nil, err
	}
	return &CancelOrderResponse{
		Order:            NewOrderView(res.Order),
		PendingReconcile: len(res.Incomplete) > 0,
	}, nil
}
