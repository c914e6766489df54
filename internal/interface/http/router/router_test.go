package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookswap/internal/application/book"
	appcart "github.com/xiebiao/bookswap/internal/application/cart"
	"github.com/xiebiao/bookswap/internal/application/market"
	apporder "github.com/xiebiao/bookswap/internal/application/order"
	appuser "github.com/xiebiao/bookswap/internal/application/user"
	"github.com/xiebiao/bookswap/internal/domain/book"
	"github.com/xiebiao/bookswap/internal/domain/cart"
	"github.com/xiebiao/bookswap/internal/domain/order"
	"github.com/xiebiao/bookswap/internal/domain/user"
	"github.com/xiebiao/bookswap/internal/infrastructure/config"
	"github.com/xiebiao/bookswap/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookswap/internal/interface/http/handler"
	"github.com/xiebiao/bookswap/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookswap/pkg/errors"
	"github.com/xiebiao/bookswap/pkg/jwt"
)

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	sessions := memory.NewSessionStore(store)
	manager := jwt.NewManager("router-test-secret", time.Hour, 24*time.Hour)
	log := zap.NewNop()

	books := book.NewService(memory.NewBookRepository(store))
	orders := order.NewService(memory.NewOrderRepository(store))
	users := user.NewService(memory.NewUserRepository(store))
	carts := cart.NewService(memory.NewCartRepository(store), books)
	coord := market.NewCoordinator(books, orders, users, market.NopReporter{}, log)

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	engine := New(cfg, log, middleware.NewAuthMiddleware(manager, sessions), Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(users),
			appuser.NewLoginUseCase(users, manager, sessions, log),
			appuser.NewLogoutUseCase(sessions, manager),
			appuser.NewRefreshUseCase(sessions, manager, log),
			appuser.NewProfileUseCase(users),
			appuser.NewUpdateProfileUseCase(users),
		),
		Book: handler.NewBookHandler(
			appbook.NewPublishBookUseCase(coord),
			appbook.NewQueryBooksUseCase(books),
			appbook.NewUpdateBookUseCase(books),
			appbook.NewDeleteBookUseCase(coord),
			appbook.NewBuyBookUseCase(coord),
		),
		Cart: handler.NewCartHandler(appcart.NewCartUseCase(carts, books)),
		Order: handler.NewOrderHandler(
			apporder.NewPlaceOrderUseCase(coord),
			apporder.NewCancelOrderUseCase(coord),
			apporder.NewListOrdersUseCase(orders),
		),
	})
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, apiResponse) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp apiResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

// signup 注册并登录，返回用户ID与Access Token
func (s *testServer) signup(name string) (uint, string) {
	s.t.Helper()
	login := s.signupFull(name)
	return login.User.ID, login.AccessToken
}

// signupFull 注册并登录，返回完整登录结果(含Refresh Token)
func (s *testServer) signupFull(name string) appuser.LoginResponse {
	s.t.Helper()
	email := name + "@example.com"
	code, resp := s.do(http.MethodPost, "/api/v1/users/register", "", gin.H{
		"email": email, "password": "secret123", "username": name, "full_name": name + " Lee",
	})
	require.Equal(s.t, http.StatusCreated, code, resp.Message)

	code, resp = s.do(http.MethodPost, "/api/v1/users/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(s.t, http.StatusOK, code, resp.Message)
	var login appuser.LoginResponse
	require.NoError(s.t, json.Unmarshal(resp.Data, &login))
	return login
}

func (s *testServer) publish(token, title string, price int64) appbook.BookView {
	s.t.Helper()
	code, resp := s.do(http.MethodPost, "/api/v1/books", token, gin.H{
		"title": title, "education_level": "Undergraduate", "specific_standard": "大二",
		"institute_name": "浙江大学", "condition": "Good", "description": "无笔记",
		"price": price, "images": []string{"https://example.com/1.jpg"},
	})
	require.Equal(s.t, http.StatusCreated, code, resp.Message)
	var view appbook.BookView
	require.NoError(s.t, json.Unmarshal(resp.Data, &view))
	return view
}

func TestInfraRoutes(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, resp.Code)

	code, _ = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(http.MethodGet, "/api/v1/books/available", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, resp.Code)

	code, resp = s.do(http.MethodGet, "/api/v1/books/available", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperrors.ErrCodeInvalidToken, resp.Code)
}

func TestPlaceAndCancelOrder(t *testing.T) {
	s := newTestServer(t)
	sellerID, sellerToken := s.signup("seller")
	buyerID, buyerToken := s.signup("buyer")
	b := s.publish(sellerToken, "数据结构", 4200)
	assert.Equal(t, "Available", b.Status)
	assert.Equal(t, sellerID, b.SellerID)

	code, resp := s.do(http.MethodGet, "/api/v1/books/available", buyerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var listings []appbook.ListingView
	require.NoError(t, json.Unmarshal(resp.Data, &listings))
	require.Len(t, listings, 1)
	assert.Equal(t, "seller Lee", listings[0].Seller.FullName)

	code, resp = s.do(http.MethodPost, "/api/v1/orders", buyerToken, gin.H{"book_id": b.ID})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var placed apporder.PlaceOrderResponse
	require.NoError(t, json.Unmarshal(resp.Data, &placed))
	require.NotNil(t, placed.Order)
	assert.Equal(t, "Sold", placed.Book.Status)
	require.NotNil(t, placed.Book.PurchaserID)
	assert.Equal(t, buyerID, *placed.Book.PurchaserID)

	// 已售出
	code, resp = s.do(http.MethodPost, "/api/v1/orders", buyerToken, gin.H{"book_id": b.ID})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, apperrors.ErrCodeBookNotAvailable, resp.Code)

	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", b.ID), sellerToken, nil)
	assert.Equal(t, http.StatusConflict, code, "已售图书不能删除")

	code, resp = s.do(http.MethodGet, "/api/v1/orders", buyerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var groups []apporder.DayGroupView
	require.NoError(t, json.Unmarshal(resp.Data, &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, "42.00", groups[0].TotalYuan)

	code, resp = s.do(http.MethodGet, "/api/v1/profile", buyerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var profile appuser.ProfileView
	require.NoError(t, json.Unmarshal(resp.Data, &profile))
	assert.Equal(t, []uint{b.ID}, profile.BooksPurchased)

	cancelPath := fmt.Sprintf("/api/v1/orders/%d/cancel", placed.Order.ID)
	code, _ = s.do(http.MethodPost, cancelPath, sellerToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.do(http.MethodPost, cancelPath, buyerToken, nil)
	require.Equal(t, http.StatusOK, code, resp.Message)

	code, resp = s.do(http.MethodGet, fmt.Sprintf("/api/v1/books/%d", b.ID), buyerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var after appbook.BookView
	require.NoError(t, json.Unmarshal(resp.Data, &after))
	assert.Equal(t, "Available", after.Status)
	assert.Nil(t, after.PurchaserID)

	code, _ = s.do(http.MethodPost, cancelPath, buyerToken, nil)
	assert.Equal(t, http.StatusConflict, code, "已取消的订单不能再次取消")
}

func TestSelfPurchaseForbidden(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("solo")
	b := s.publish(token, "线性代数", 1500)

	code, resp := s.do(http.MethodPost, fmt.Sprintf("/api/v1/books/%d/buy", b.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)
}

func TestBookRoutes(t *testing.T) {
	s := newTestServer(t)
	sellerID, sellerToken := s.signup("seller")
	_, otherToken := s.signup("other")
	b := s.publish(sellerToken, "概率论", 2000)

	code, _ := s.do(http.MethodGet, "/api/v1/books/sold", sellerToken, nil)
	assert.Equal(t, http.StatusNotFound, code, "没有已售图书")

	code, _ = s.do(http.MethodGet, "/api/v1/books/abc", sellerToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d/books", sellerID), otherToken, nil)
	assert.Equal(t, http.StatusOK, code)

	update := gin.H{
		"title": "概率论(第四版)", "education_level": "Undergraduate", "specific_standard": "大二",
		"institute_name": "浙江大学", "condition": "Fair", "description": "送给有需要的同学", "price": 0,
	}
	path := fmt.Sprintf("/api/v1/books/%d", b.ID)
	code, _ = s.do(http.MethodPut, path, otherToken, update)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := s.do(http.MethodPut, path, sellerToken, update)
	require.Equal(t, http.StatusOK, code, resp.Message)
	var updated appbook.BookView
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, int64(0), updated.Price)
	assert.Equal(t, "Fair", updated.Condition)

	delete(update, "description")
	code, _ = s.do(http.MethodPut, path, sellerToken, update)
	assert.Equal(t, http.StatusBadRequest, code, "修改时描述必填")

	code, _ = s.do(http.MethodDelete, path, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodDelete, path, sellerToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, path, sellerToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCartRoutes(t *testing.T) {
	s := newTestServer(t)
	_, sellerToken := s.signup("seller")
	_, buyerToken := s.signup("buyer")
	b := s.publish(sellerToken, "大学英语", 800)
	path := fmt.Sprintf("/api/v1/cart/books/%d", b.ID)

	code, _ := s.do(http.MethodPost, path, sellerToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	for i := 0; i < 2; i++ {
		code, resp := s.do(http.MethodPost, path, buyerToken, nil)
		require.Equal(t, http.StatusOK, code, resp.Message)
	}
	code, resp := s.do(http.MethodGet, "/api/v1/cart", buyerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var view appcart.CartView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Len(t, view.Items, 1, "重复加入不产生重复项")

	code, resp = s.do(http.MethodDelete, "/api/v1/cart", buyerToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, cart.Cleared.String(), resp.Message)

	code, resp = s.do(http.MethodDelete, "/api/v1/cart", buyerToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, cart.ClearedAlready.String(), resp.Message)

	code, _ = s.do(http.MethodDelete, path, buyerToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("alice")

	code, _ := s.do(http.MethodPost, "/api/v1/users/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, resp := s.do(http.MethodGet, "/api/v1/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperrors.ErrCodeTokenExpired, resp.Code)
}

func TestRefreshTokenIsNotABearerCredential(t *testing.T) {
	s := newTestServer(t)
	login := s.signupFull("alice")

	code, resp := s.do(http.MethodGet, "/api/v1/profile", login.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperrors.ErrCodeInvalidToken, resp.Code)

	code, _ = s.do(http.MethodGet, "/api/v1/books/available", login.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodPost, "/api/v1/users/logout", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/v1/profile", login.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(http.MethodDelete, "/api/v1/books/1", login.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code, "鉴权失败应先于业务处理")

	// 会话已删除，Refresh Token也不能再换取新Token
	code, resp = s.do(http.MethodPost, "/api/v1/users/refresh", "", gin.H{"refresh_token": login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperrors.ErrCodeTokenExpired, resp.Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	s := newTestServer(t)
	login := s.signupFull("bob")

	code, resp := s.do(http.MethodPost, "/api/v1/users/refresh", "", gin.H{"refresh_token": login.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, code, "Access Token不能用于刷新")
	assert.Equal(t, apperrors.ErrCodeInvalidToken, resp.Code)

	code, resp = s.do(http.MethodPost, "/api/v1/users/refresh", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = s.do(http.MethodPost, "/api/v1/users/refresh", "", gin.H{"refresh_token": login.RefreshToken})
	require.Equal(t, http.StatusOK, code, resp.Message)
	var next appuser.RefreshResponse
	require.NoError(t, json.Unmarshal(resp.Data, &next))
	assert.NotEmpty(t, next.AccessToken)
	assert.NotEqual(t, login.RefreshToken, next.RefreshToken)
	assert.Equal(t, int64(3600), next.ExpiresIn)

	code, _ = s.do(http.MethodGet, "/api/v1/profile", next.AccessToken, nil)
	assert.Equal(t, http.StatusOK, code)

	// 旧Refresh Token已轮换
	code, _ = s.do(http.MethodPost, "/api/v1/users/refresh", "", gin.H{"refresh_token": login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodPost, "/api/v1/users/refresh", "", gin.H{"refresh_token": next.RefreshToken})
	assert.Equal(t, http.StatusOK, code)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("carol")

	code, resp := s.do(http.MethodPut, "/api/v1/profile", token, gin.H{
		"full_name": "Carol Wang", "address": "南京市", "contact_number": "13700000000", "description": "出二手教材",
	})
	require.Equal(t, http.StatusOK, code, resp.Message)
	var view appuser.ProfileView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, "Carol Wang", view.FullName)
	assert.Equal(t, "南京市", view.Address)
	assert.Equal(t, "carol", view.Username)

	code, resp = s.do(http.MethodPut, "/api/v1/profile", token, gin.H{"full_name": "Carol"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)

	code, _ = s.do(http.MethodPut, "/api/v1/profile", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	code, resp := s.do(http.MethodPost, "/api/v1/users/register", "", gin.H{"email": "bad", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)

	s.signup("dup")
	code, resp = s.do(http.MethodPost, "/api/v1/users/register", "", gin.H{
		"email": "dup@example.com", "password": "secret123", "username": "dup2", "full_name": "Dup",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, apperrors.ErrCodeEmailDuplicate, resp.Code)
}
