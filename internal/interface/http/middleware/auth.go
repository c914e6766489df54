package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookswap/pkg/errors"
	"github.com/xiebiao/bookswap/pkg/jwt"
	"github.com/xiebiao/bookswap/pkg/response"
)

// Context中保存的认证信息
const (
	ctxUserID      = "user_id"
	ctxEmail       = "email"
	ctxUsername    = "username"
	ctxAccessToken = "access_token"
)

// TokenBlacklist 已登出Token的查询接口，Redis与内存会话存储都实现了它
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 1. 从Header提取Token
// 2. 检查Token黑名单
// 3. 验证Token并将用户信息注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
			c.Abort()
			return
		}
		tokenString := parts[1]

		blocked, err := m.blacklist.IsInBlacklist(c.Request.Context(), tokenString)
		if err != nil {
			response.Error(c, apperrors.Wrap(err, "验证Token失败"))
			c.Abort()
			return
		}
		if blocked {
			response.ErrorWithCode(c, apperrors.ErrCodeTokenExpired, "Token已失效，请重新登录")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseAccessToken(tokenString)
		if err != nil {
			response.Error(c, err) // ErrTokenExpired / ErrInvalidToken
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxUsername, claims.Username)
		c.Set(ctxAccessToken, tokenString)
		c.Next()
	}
}

// GetUserID 从Context获取当前登录用户ID，未登录返回0
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ctxUserID); ok {
		if uid, ok := v.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetEmail 从Context获取当前登录用户邮箱
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

// GetAccessToken 当前请求携带的Access Token，登出时加入黑名单
func GetAccessToken(c *gin.Context) string {
	return c.GetString(ctxAccessToken)
}

// MustGetUserID 用于已经通过RequireAuth的Handler
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}
