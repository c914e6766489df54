package order

import (
	apperrors "github.com/xiebiao/bookswap/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrForbidden 非买家操作订单
	ErrForbidden = apperrors.New(apperrors.ErrCodeForbidden, "无权操作此订单")

	// ErrNotCancellable 只有待处理订单可以取消
	ErrNotCancellable = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "只有待处理的订单可以取消")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrInvalidBookID 图书ID非法
	ErrInvalidBookID = apperrors.New(apperrors.ErrCodeInvalidParams, "图书ID非法")

	// ErrInvalidBuyerID 买家ID非法
	ErrInvalidBuyerID = apperrors.New(apperrors.ErrCodeInvalidParams, "买家ID非法")

	// ErrPreconditionFailed 条件更新未命中(由Service重新读取后归类)
	ErrPreconditionFailed = apperrors.New(apperrors.ErrCodeBusinessError, "订单状态已变化")
)
