package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 应用错误
// 设计说明：
// 1. Code是业务错误码，客户端据此区分错误类型
// 2. Message是返回给用户的提示
// 3. Err是内部原因，只写日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus 按错误码区间映射HTTP状态码
func (e *AppError) HTTPStatus() int {
	return StatusOf(e.Code)
}

// New 创建AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 把底层错误（数据库、网络）包装成内部错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误
// - 5xxxx: 服务端错误
//
// 错误类别与HTTP状态码：
// - 409xx 参数校验       → 400
// - 40100-40103 未认证   → 401
// - 40104 无权限         → 403
// - 404xx 资源不存在     → 404
// - 400xx 状态冲突       → 409
// - 5xxxx 内部错误       → 500

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 密码错误
	ErrCodeForbidden       = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound         = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound     = 40401 // 用户不存在
	ErrCodeBookNotFound     = 40402 // 图书不存在
	ErrCodeOrderNotFound    = 40403 // 订单不存在
	ErrCodeCartItemNotFound = 40404 // 购物车或购物车中的图书不存在
	ErrCodeListingsEmpty    = 40405 // 查询结果为空

	// 状态冲突（40000-40099）
	ErrCodeBusinessError      = 40000 // 业务错误(通用)
	ErrCodeBookNotAvailable   = 40001 // 图书已售出
	ErrCodeInvalidOrderStatus = 40002 // 订单状态非法
	ErrCodeEmailDuplicate     = 40003 // 邮箱已存在
	ErrCodeBookSold           = 40004 // 已售图书不可删除
	ErrCodeWeakPassword       = 40005 // 密码强度不足（参数错误）
	ErrCodeDuplicateEntry     = 40009 // 重复记录(通用)

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// StatusOf 错误码 → HTTP状态码
func StatusOf(code int) int {
	switch {
	case code == ErrCodeWeakPassword:
		return http.StatusBadRequest
	case code >= 40900 && code < 41000:
		return http.StatusBadRequest
	case code == ErrCodeForbidden:
		return http.StatusForbidden
	case code >= 40100 && code < 40200:
		return http.StatusUnauthorized
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code >= 40000 && code < 40100:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// =========================================
// 预定义错误
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	// 资源不存在
	ErrUserNotFound = New(ErrCodeUserNotFound, "用户不存在")

	// 业务规则
	ErrEmailDuplicate = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrWeakPassword   = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// CodeOf 提取错误码，非AppError返回ErrCodeInternal
func CodeOf(err error) int {
	if err == nil {
		return 0
	}
	return GetAppError(err).Code
}
