package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookswap/internal/domain/user"
	"github.com/xiebiao/bookswap/pkg/jwt"
)

// SessionStore 会话与Token黑名单存储
// Redis实现用于生产，内存实现用于memory驱动和测试
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
}

// sessionRefreshID 会话中当前有效Refresh Token的jti
const sessionRefreshID = "refresh_id"

// LoginUseCase 用户登录用例
// 1. 验证邮箱密码
// 2. 生成JWT Token对
// 3. 保存会话，有效期与Refresh Token一致
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
	log          *zap.Logger
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(userService user.Service, jwtManager *jwt.Manager, sessionStore SessionStore, log *zap.Logger) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		log:          log,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	tokenPair, err := uc.jwtManager.GenerateToken(u.ID, u.Email, u.Username)
	if err != nil {
		return nil, err
	}

	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"username": u.Username,
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	// 只有会话中记录的Refresh Token可以换取新Token
	sessionData[sessionRefreshID] = tokenPair.RefreshID
	// 会话保存失败不影响登录
	if err := uc.sessionStore.SaveSession(ctx, u.ID, sessionData, uc.jwtManager.RefreshTokenTTL()); err != nil {
		uc.log.Warn("会话保存失败", zap.Uint("user_id", u.ID), zap.Error(err))
	}

	return &LoginResponse{
		User:         *newUserInfo(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessionStore SessionStore
	jwtManager   *jwt.Manager
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore SessionStore, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, jwtManager: jwtManager}
}

// Execute 删除会话(Refresh Token随之失效)，并把Access Token加入黑名单直到其自然过期
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.jwtManager.AccessTokenTTL())
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间(秒)
}
