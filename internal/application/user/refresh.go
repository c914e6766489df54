package user

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookswap/pkg/errors"
	"github.com/xiebiao/bookswap/pkg/jwt"
)

// RefreshSessionStore 刷新Token时需要读取会话与黑名单
type RefreshSessionStore interface {
	SessionStore
	GetSession(ctx context.Context, userID uint) (map[string]string, error)
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// RefreshUseCase 用Refresh Token换取新的Token对
// 1. 只接受Refresh Token，且jti必须与会话中记录的一致
// 2. 登出后会话已删除，旧Refresh Token不能再用
// 3. 成功后轮换：会话记录新的jti，旧Refresh Token加入黑名单
type RefreshUseCase struct {
	sessionStore RefreshSessionStore
	jwtManager   *jwt.Manager
	log          *zap.Logger
}

// NewRefreshUseCase 创建刷新Token用例
func NewRefreshUseCase(sessionStore RefreshSessionStore, jwtManager *jwt.Manager, log *zap.Logger) *RefreshUseCase {
	return &RefreshUseCase{sessionStore: sessionStore, jwtManager: jwtManager, log: log}
}

// RefreshResponse 刷新结果
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Execute 任何校验失败都返回401类错误
func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.jwtManager.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	blocked, err := uc.sessionStore.IsInBlacklist(ctx, refreshToken)
	if err != nil {
		return nil, apperrors.Wrap(err, "验证Token失败")
	}
	if blocked {
		return nil, apperrors.ErrTokenExpired
	}

	sess, err := uc.sessionStore.GetSession(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, err
	}
	if sess[sessionRefreshID] != claims.ID {
		return nil, apperrors.ErrTokenExpired
	}

	pair, err := uc.jwtManager.GenerateToken(claims.UserID, claims.Email, claims.Username)
	if err != nil {
		return nil, err
	}

	data := make(map[string]interface{}, len(sess)+1)
	for k, v := range sess {
		data[k] = v
	}
	data[sessionRefreshID] = pair.RefreshID
	if err := uc.sessionStore.SaveSession(ctx, claims.UserID, data, uc.jwtManager.RefreshTokenTTL()); err != nil {
		return nil, err
	}
	if err := uc.sessionStore.AddToBlacklist(ctx, refreshToken, remaining(claims)); err != nil {
		uc.log.Warn("旧Refresh Token加入黑名单失败", zap.Uint("user_id", claims.UserID), zap.Error(err))
	}

	return &RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// remaining Token剩余有效期，至少1秒
func remaining(claims *jwt.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return time.Second
	}
	if d := time.Until(claims.ExpiresAt.Time); d > time.Second {
		return d
	}
	return time.Second
}
