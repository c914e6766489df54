package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/bookswap/internal/application/cart"
	"github.com/xiebiao/bookswap/internal/interface/http/middleware"
	"github.com/xiebiao/bookswap/pkg/response"
)

// CartHandler 购物车HTTP处理器，购物车属于当前登录用户
type CartHandler struct {
	cart *appcart.CartUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(cart *appcart.CartUseCase) *CartHandler {
	return &CartHandler{cart: cart}
}

// AddBook 加入购物车
// @Summary      加入购物车
// @Description  重复加入同一本书不会产生重复项
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=appcart.CartView}
// @Failure      403 {object} response.Response "不能加入自己的图书"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "图书已售出"
// @Router       /api/v1/cart/books/{bookId} [post]
func (h *CartHandler) AddBook(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	view, err := h.cart.Add(c.Request.Context(), middleware.MustGetUserID(c), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// RemoveBook 移出购物车
// @Summary      移出购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=appcart.CartView}
// @Failure      404 {object} response.Response "购物车中没有这本图书"
// @Router       /api/v1/cart/books/{bookId} [delete]
func (h *CartHandler) RemoveBook(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	view, err := h.cart.Remove(c.Request.Context(), middleware.MustGetUserID(c), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// GetCart 查看购物车
// @Summary      查看购物车
// @Description  没有购物车时返回空购物车；已售出或已删除的图书会被标记
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appcart.CartView}
// @Router       /api/v1/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cart.View(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
// @Summary      清空购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appcart.ClearView}
// @Router       /api/v1/cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	view, err := h.cart.Clear(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, view.Message, view)
}
