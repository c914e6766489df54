package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookswap/internal/application/book"
	"github.com/xiebiao/bookswap/internal/interface/http/dto"
	"github.com/xiebiao/bookswap/internal/interface/http/middleware"
	"github.com/xiebiao/bookswap/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	publish *appbook.PublishBookUseCase
	query   *appbook.QueryBooksUseCase
	update  *appbook.UpdateBookUseCase
	remove  *appbook.DeleteBookUseCase
	buy     *appbook.BuyBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	publish *appbook.PublishBookUseCase,
	query *appbook.QueryBooksUseCase,
	update *appbook.UpdateBookUseCase,
	remove *appbook.DeleteBookUseCase,
	buy *appbook.BuyBookUseCase,
) *BookHandler {
	return &BookHandler{
		publish: publish,
		query:   query,
		update:  update,
		remove:  remove,
		buy:     buy,
	}
}

// PublishBook 发布图书
// @Summary      发布图书
// @Description  当前用户作为卖家发布一本二手书，状态为在售
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.BookView}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	var req dto.PublishBookRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.publish.Execute(c.Request.Context(), appbook.PublishBookRequest{
		SellerID:         middleware.MustGetUserID(c),
		Title:            req.Title,
		EducationLevel:   req.EducationLevel,
		SpecificStandard: req.SpecificStandard,
		InstituteName:    req.InstituteName,
		Condition:        req.Condition,
		Description:      req.Description,
		Price:            req.Price,
		Images:           req.Images,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.query.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// ListBySeller 卖家发布的图书
// @Summary      卖家发布的图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "卖家ID"
// @Success      200 {object} response.Response{data=[]appbook.BookView}
// @Failure      404 {object} response.Response "没有找到图书"
// @Router       /api/v1/users/{id}/books [get]
func (h *BookHandler) ListBySeller(c *gin.Context) {
	sellerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	views, err := h.query.BySeller(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, views)
}

// ListAvailable 在售图书
// @Summary      在售图书
// @Description  全部在售图书，附带卖家信息
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appbook.ListingView}
// @Failure      404 {object} response.Response "没有找到图书"
// @Router       /api/v1/books/available [get]
func (h *BookHandler) ListAvailable(c *gin.Context) {
	views, err := h.query.Available(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, views)
}

// ListSold 已售图书
// @Summary      已售图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appbook.BookView}
// @Failure      404 {object} response.Response "没有找到图书"
// @Router       /api/v1/books/sold [get]
func (h *BookHandler) ListSold(c *gin.Context) {
	views, err := h.query.Sold(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, views)
}

// BuyBook 直接购买(不生成订单)
// @Summary      购买图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      403 {object} response.Response "不能购买自己的图书"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "图书已售出"
// @Router       /api/v1/books/{id}/buy [post]
func (h *BookHandler) BuyBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.buy.Execute(c.Request.Context(), id, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateBook 修改图书
// @Summary      修改图书
// @Description  只有卖家可以修改；所有字段必填，价格可以为0
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "无权操作"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.update.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		BookID:      id,
		RequesterID: middleware.MustGetUserID(c),
		PublishBookRequest: appbook.PublishBookRequest{
			Title:            req.Title,
			EducationLevel:   req.EducationLevel,
			SpecificStandard: req.SpecificStandard,
			InstituteName:    req.InstituteName,
			Condition:        req.Condition,
			Description:      req.Description,
			Price:            *req.Price,
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// DeleteBook 下架图书
// @Summary      下架图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookView} "被删除的图书"
// @Failure      403 {object} response.Response "无权操作"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "已售出的图书不能删除"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.remove.Execute(c.Request.Context(), id, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}
