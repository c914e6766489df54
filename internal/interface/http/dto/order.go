package dto

// PlaceOrderRequest HTTP下单请求
type PlaceOrderRequest struct {
	BookID uint `json:"book_id" binding:"required,min=1" example:"1"`
}
