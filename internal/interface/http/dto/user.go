package dto

// RegisterRequest HTTP层注册请求
// 说明：HTTP层的DTO，包含参数验证tag
type RegisterRequest struct {
	Email         string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password      string `json:"password" binding:"required,min=8,max=20" example:"secret123"`
	Username      string `json:"username" binding:"required,min=2,max=50" example:"alice"`
	FullName      string `json:"full_name" binding:"required,max=100" example:"张爱丽"`
	Avatar        string `json:"avatar" binding:"omitempty,url,max=500" example:"https://example.com/a.png"`
	Address       string `json:"address" binding:"max=200" example:"上海市杨浦区"`
	ContactNumber string `json:"contact_number" binding:"max=30" example:"13800000000"`
	Description   string `json:"description" binding:"max=1000"`
}

// LoginRequest HTTP层登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RefreshTokenRequest 刷新Token请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest 修改个人资料，四项都必填
type UpdateProfileRequest struct {
	FullName      string `json:"full_name" binding:"required,max=100" example:"张爱丽"`
	Address       string `json:"address" binding:"required,max=200" example:"上海市杨浦区"`
	ContactNumber string `json:"contact_number" binding:"required,max=30" example:"13800000000"`
	Description   string `json:"description" binding:"required,max=1000"`
}
