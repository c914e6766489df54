package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookswap/internal/application/order"
	"github.com/xiebiao/bookswap/internal/interface/http/dto"
	"github.com/xiebiao/bookswap/internal/interface/http/middleware"
	"github.com/xiebiao/bookswap/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	place  *apporder.PlaceOrderUseCase
	cancel *apporder.CancelOrderUseCase
	list   *apporder.ListOrdersUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	place *apporder.PlaceOrderUseCase,
	cancel *apporder.CancelOrderUseCase,
	list *apporder.ListOrdersUseCase,
) *OrderHandler {
	return &OrderHandler{place: place, cancel: cancel, list: list}
}

// PlaceOrder 下单
// @Summary      下单
// @Description  图书标记为已售出并生成待处理订单；pending_reconcile表示部分记录待对账
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PlaceOrderRequest true "下单信息"
// @Success      201 {object} response.Response{data=apporder.PlaceOrderResponse}
// @Failure      403 {object} response.Response "不能购买自己的图书"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "图书已售出"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.place.Execute(c.Request.Context(), req.BookID, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// ListOrders 我的订单
// @Summary      我的订单
// @Description  按下单日期(UTC)分组，日期倒序，附带每天的金额合计
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]apporder.DayGroupView}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	groups, err := h.list.Execute(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, groups)
}

// CancelOrder 取消订单
// @Summary      取消订单
// @Description  买家取消待处理订单，图书回到在售
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.CancelOrderResponse}
// @Failure      403 {object} response.Response "无权操作此订单"
// @Failure      404 {object} response.Response "订单不存在"
// @Failure      409 {object} response.Response "订单不可取消"
// @Router       /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.cancel.Execute(c.Request.Context(), id, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}
