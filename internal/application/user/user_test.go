package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/bookswap/internal/domain/user"
	"github.com/xiebiao/bookswap/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookswap/pkg/errors"
	"github.com/xiebiao/bookswap/pkg/jwt"
)

type brokenSessions struct{}

func (brokenSessions) SaveSession(context.Context, uint, map[string]interface{}, time.Duration) error {
	return errors.New("redis down")
}
func (brokenSessions) DeleteSession(context.Context, uint) error { return nil }
func (brokenSessions) AddToBlacklist(context.Context, string, time.Duration) error {
	return nil
}

func newUserService() (user.Service, *memory.Store) {
	store := memory.NewStore()
	return user.NewService(memory.NewUserRepository(store)), store
}

func register(t *testing.T, svc user.Service) *UserInfo {
	t.Helper()
	info, err := NewRegisterUseCase(svc).Execute(context.Background(), RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "secret123",
		Username: "alice",
		FullName: "Alice Zhang",
		Address:  "Beijing",
	})
	require.NoError(t, err)
	return info
}

func TestRegister(t *testing.T) {
	svc, _ := newUserService()
	info := register(t, svc)

	assert.NotZero(t, info.ID)
	assert.Equal(t, "alice@example.com", info.Email)
	assert.Equal(t, "Alice Zhang", info.FullName)

	_, err := NewRegisterUseCase(svc).Execute(context.Background(), RegisterRequest{
		Email: "alice@example.com", Password: "secret123", Username: "alice2", FullName: "A",
	})
	assert.True(t, errors.Is(err, apperrors.ErrEmailDuplicate))
}

func TestLoginAndLogout(t *testing.T) {
	svc, store := newUserService()
	info := register(t, svc)
	sessions := memory.NewSessionStore(store)
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	ctx := context.Background()

	resp, err := NewLoginUseCase(svc, manager, sessions, zap.NewNop()).Execute(ctx, LoginRequest{
		Email: "alice@example.com", Password: "secret123", ClientIP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, info.ID, resp.User.ID)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := manager.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	sess, err := sessions.GetSession(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", sess["ip"])

	require.NoError(t, NewLogoutUseCase(sessions, manager).Execute(ctx, info.ID, resp.AccessToken))
	_, err = sessions.GetSession(ctx, info.ID)
	assert.Error(t, err)
	blocked, err := sessions.IsInBlacklist(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, store := newUserService()
	register(t, svc)
	uc := NewLoginUseCase(svc, jwt.NewManager("s", time.Hour, time.Hour), memory.NewSessionStore(store), zap.NewNop())

	_, err := uc.Execute(context.Background(), LoginRequest{Email: "alice@example.com", Password: "wrong1234"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidPassword))

	_, err = uc.Execute(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidPassword), "不存在的邮箱与密码错误返回同一个错误")
}

func TestLogin_SessionFailureDoesNotBlock(t *testing.T) {
	svc, _ := newUserService()
	register(t, svc)
	core, logs := observer.New(zapcore.WarnLevel)

	uc := NewLoginUseCase(svc, jwt.NewManager("s", time.Hour, time.Hour), brokenSessions{}, zap.New(core))
	resp, err := uc.Execute(context.Background(), LoginRequest{Email: "alice@example.com", Password: "secret123"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, 1, logs.FilterMessage("会话保存失败").Len())
}

func TestProfile(t *testing.T) {
	svc, _ := newUserService()
	info := register(t, svc)
	ctx := context.Background()
	require.NoError(t, svc.AddBookToSell(ctx, info.ID, 7))
	require.NoError(t, svc.AddPurchasedBook(ctx, info.ID, 9))

	view, err := NewProfileUseCase(svc).Execute(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, view.BooksToSell)
	assert.Equal(t, []uint{9}, view.BooksPurchased)
	assert.Equal(t, "alice", view.Username)

	_, err = NewProfileUseCase(svc).Execute(ctx, 999)
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}

func TestRefresh_RotatesAndEndsWithLogout(t *testing.T) {
	svc, store := newUserService()
	info := register(t, svc)
	sessions := memory.NewSessionStore(store)
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	ctx := context.Background()

	login, err := NewLoginUseCase(svc, manager, sessions, zap.NewNop()).Execute(ctx, LoginRequest{
		Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	refresh := NewRefreshUseCase(sessions, manager, zap.NewNop())
	_, err = refresh.Execute(ctx, login.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken, "Access Token不能用于刷新")

	next, err := refresh.Execute(ctx, login.RefreshToken)
	require.NoError(t, err)
	claims, err := manager.ParseAccessToken(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, info.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	_, err = refresh.Execute(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired, "旧Refresh Token已轮换")

	require.NoError(t, NewLogoutUseCase(sessions, manager).Execute(ctx, info.ID, next.AccessToken))
	_, err = refresh.Execute(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired, "登出后会话已删除")
}

func TestRefresh_RequiresMatchingSession(t *testing.T) {
	svc, store := newUserService()
	register(t, svc)
	sessions := memory.NewSessionStore(store)
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	ctx := context.Background()
	login := NewLoginUseCase(svc, manager, sessions, zap.NewNop())

	first, err := login.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	second, err := login.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	// 重新登录后只有最新的Refresh Token有效
	_, err = NewRefreshUseCase(sessions, manager, zap.NewNop()).Execute(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	_, err = NewRefreshUseCase(sessions, manager, zap.NewNop()).Execute(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestUpdateProfileUseCase(t *testing.T) {
	svc, _ := newUserService()
	info := register(t, svc)

	view, err := NewUpdateProfileUseCase(svc).Execute(context.Background(), UpdateProfileRequest{
		UserID: info.ID, FullName: "Alice Li", Address: "Shanghai", ContactNumber: "13800000000", Description: "seller",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Li", view.FullName)
	assert.Equal(t, "Shanghai", view.Address)
	assert.Equal(t, info.Email, view.Email)
}
