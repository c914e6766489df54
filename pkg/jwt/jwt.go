package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/bookswap/pkg/errors"
)

const issuer = "bookswap"

// Manager JWT管理器
// 双Token机制：Access Token（短期）用于鉴权，Refresh Token（长期）用于换取新的Access Token
type Manager struct {
	secret             string
	accessTokenExpire  time.Duration
	refreshTokenExpire time.Duration
}

// NewManager 创建JWT管理器
func NewManager(secret string, accessTokenExpire, refreshTokenExpire time.Duration) *Manager {
	return &Manager{
		secret:             secret,
		accessTokenExpire:  accessTokenExpire,
		refreshTokenExpire: refreshTokenExpire,
	}
}

// TokenType Token用途，Access Token与Refresh Token不能互换使用
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims 自定义Claims
type Claims struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair Token对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // Access Token有效期（秒）
	RefreshID    string `json:"-"`          // Refresh Token的jti，保存在会话中
}

// AccessTokenTTL Access Token有效期，登出时作为黑名单过期时间
func (m *Manager) AccessTokenTTL() time.Duration {
	return m.accessTokenExpire
}

// RefreshTokenTTL Refresh Token有效期，作为会话过期时间
func (m *Manager) RefreshTokenTTL() time.Duration {
	return m.refreshTokenExpire
}

// GenerateToken 生成Token对，每个Token带唯一jti
func (m *Manager) GenerateToken(userID uint, email, username string) (*TokenPair, error) {
	now := time.Now()

	access, err := m.sign(Claims{
		UserID:           userID,
		Email:            email,
		Username:         username,
		TokenType:        TokenTypeAccess,
		RegisteredClaims: m.registered(userID, now, m.accessTokenExpire),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Access Token失败")
	}

	refreshClaims := Claims{
		UserID:           userID,
		Email:            email,
		Username:         username,
		TokenType:        TokenTypeRefresh,
		RegisteredClaims: m.registered(userID, now, m.refreshTokenExpire),
	}
	refresh, err := m.sign(refreshClaims)
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Refresh Token失败")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTokenExpire.Seconds()),
		RefreshID:    refreshClaims.ID,
	}, nil
}

// ParseAccessToken 解析Access Token，Refresh Token返回ErrInvalidToken
func (m *Manager) ParseAccessToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, TokenTypeAccess)
}

// ParseRefreshToken 解析Refresh Token，Access Token返回ErrInvalidToken
func (m *Manager) ParseRefreshToken(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// parse 校验签名、exp、nbf和Token用途
func (m *Manager) parse(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 || claims.TokenType != want {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
}

func (m *Manager) registered(userID uint, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   fmt.Sprintf("%d", userID),
		ID:        uuid.NewString(),
	}
}
