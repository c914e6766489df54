package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookswap/internal/application/user"
	"github.com/xiebiao/bookswap/internal/interface/http/dto"
	"github.com/xiebiao/bookswap/internal/interface/http/middleware"
	"github.com/xiebiao/bookswap/pkg/response"
)

// UserHandler 用户HTTP处理器
// Handler只负责解析请求、调用应用层、返回响应
type UserHandler struct {
	registerUseCase *appuser.RegisterUseCase
	loginUseCase    *appuser.LoginUseCase
	logoutUseCase   *appuser.LogoutUseCase
	refreshUseCase  *appuser.RefreshUseCase
	profileUseCase  *appuser.ProfileUseCase
	updateUseCase   *appuser.UpdateProfileUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	refreshUseCase *appuser.RefreshUseCase,
	profileUseCase *appuser.ProfileUseCase,
	updateUseCase *appuser.UpdateProfileUseCase,
) *UserHandler {
	return &UserHandler{
		registerUseCase: registerUseCase,
		loginUseCase:    loginUseCase,
		logoutUseCase:   logoutUseCase,
		refreshUseCase:  refreshUseCase,
		profileUseCase:  profileUseCase,
		updateUseCase:   updateUseCase,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=appuser.UserInfo} "注册成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "邮箱已存在"
// @Router       /api/v1/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	info, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Email:         req.Email,
		Password:      req.Password,
		Username:      req.Username,
		FullName:      req.FullName,
		Avatar:        req.Avatar,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Description:   req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, info)
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证邮箱密码，返回JWT Token
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appuser.LoginResponse} "登录成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "邮箱或密码错误"
// @Router       /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 用户登出
// @Summary      用户登出
// @Description  删除会话，当前Access Token在过期前不能再使用
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	err := h.logoutUseCase.Execute(c.Request.Context(), middleware.MustGetUserID(c), middleware.GetAccessToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "已退出登录", nil)
}

// Profile 个人资料
// @Summary      个人资料
// @Description  包含在售图书ID列表与已购图书ID列表
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appuser.ProfileView}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	view, err := h.profileUseCase.Execute(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// RefreshToken 刷新Token
// @Summary      刷新Token
// @Description  用Refresh Token换取新的Token对，旧Refresh Token随即失效
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshTokenRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=appuser.RefreshResponse}
// @Failure      401 {object} response.Response "Token无效或已失效"
// @Router       /api/v1/users/refresh [post]
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.refreshUseCase.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateProfile 修改个人资料
// @Summary      修改个人资料
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpdateProfileRequest true "资料"
// @Success      200 {object} response.Response{data=appuser.ProfileView}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.updateUseCase.Execute(c.Request.Context(), appuser.UpdateProfileRequest{
		UserID:        middleware.MustGetUserID(c),
		FullName:      req.FullName,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Description:   req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}
