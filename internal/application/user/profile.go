package user

import (
	"context"

	"github.com/xiebiao/bookswap/internal/domain/user"
)

// ProfileView 个人主页，包含两个图书引用列表
type ProfileView struct {
	UserInfo
	BooksToSell    []uint `json:"books_to_sell"`
	BooksPurchased []uint `json:"books_purchased"`
	CreatedAt      string `json:"created_at"`
}

// ProfileUseCase 查询个人资料
type ProfileUseCase struct {
	userService user.Service
}

// NewProfileUseCase 创建个人资料用例
func NewProfileUseCase(userService user.Service) *ProfileUseCase {
	return &ProfileUseCase{userService: userService}
}

// Execute 用户不存在返回ErrUserNotFound
func (uc *ProfileUseCase) Execute(ctx context.Context, userID uint) (*ProfileView, error) {
	u, err := uc.userService.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newProfileView(u), nil
}

// UpdateProfileRequest 可修改的资料
type UpdateProfileRequest struct {
	UserID        uint
	FullName      string
	Address       string
	ContactNumber string
	Description   string
}

// UpdateProfileUseCase 修改个人资料(邮箱、用户名、密码不在此修改)
type UpdateProfileUseCase struct {
	userService user.Service
}

// NewUpdateProfileUseCase 创建修改资料用例
func NewUpdateProfileUseCase(userService user.Service) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{userService: userService}
}

// Execute 返回修改后的个人资料
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, req UpdateProfileRequest) (*ProfileView, error) {
	u, err := uc.userService.UpdateAccountDetails(ctx, req.UserID, user.AccountDetails{
		FullName:      req.FullName,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Description:   req.Description,
	})
	if err != nil {
		return nil, err
	}
	return newProfileView(u), nil
}

func newProfileView(u *user.User) *ProfileView {
	return &ProfileView{
		UserInfo:       *newUserInfo(u),
		BooksToSell:    append([]uint{}, u.BooksToSell...),
		BooksPurchased: append([]uint{}, u.BooksPurchased...),
		CreatedAt:      u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
