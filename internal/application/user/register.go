package user

import (
	"context"

	"github.com/xiebiao/bookswap/internal/domain/user"
)

// RegisterUseCase 用户注册用例
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// Execute 执行注册
// 返回应用层DTO，不返回密码
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, user.Profile{
		Username:      req.Username,
		FullName:      req.FullName,
		Avatar:        req.Avatar,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Description:   req.Description,
	})
	if err != nil {
		return nil, err
	}
	return newUserInfo(u), nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email         string
	Password      string
	Username      string
	FullName      string
	Avatar        string
	Address       string
	ContactNumber string
	Description   string
}

// UserInfo 用户公开信息
type UserInfo struct {
	ID            uint   `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	Avatar        string `json:"avatar"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number"`
	Description   string `json:"description"`
}

func newUserInfo(u *user.User) *UserInfo {
	return &UserInfo{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		FullName:      u.FullName,
		Avatar:        u.Avatar,
		Address:       u.Address,
		ContactNumber: u.ContactNumber,
		Description:   u.Description,
	}
}
