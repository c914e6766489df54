package book

import (
	"fmt"

	apperrors "github.com/xiebiao/bookswap/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrNoListings 查询结果为空（列表接口把空结果当作404）
	ErrNoListings = apperrors.New(apperrors.ErrCodeListingsEmpty, "没有找到图书")

	// ErrForbidden 非卖家操作图书
	ErrForbidden = apperrors.New(apperrors.ErrCodeForbidden, "无权操作此图书")

	// ErrSelfPurchase 购买自己发布的图书
	ErrSelfPurchase = apperrors.New(apperrors.ErrCodeForbidden, "不能购买自己发布的图书")

	// ErrBookNotAvailable 图书不在售
	ErrBookNotAvailable = apperrors.New(apperrors.ErrCodeBookNotAvailable, "图书已售出")

	// ErrBookSold 已售图书不可删除
	ErrBookSold = apperrors.New(apperrors.ErrCodeBookSold, "已售出的图书不能删除")

	// ErrInvalidPrice 价格非法
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")

	// ErrNegativePrice 修改时价格不能为负
	ErrNegativePrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")

	// ErrNoImages 至少一张图片
	ErrNoImages = apperrors.New(apperrors.ErrCodeInvalidParams, "至少需要一张图片")

	// ErrInvalidLevel 未知学段
	ErrInvalidLevel = apperrors.New(apperrors.ErrCodeInvalidParams, "学段取值非法")

	// ErrInvalidCondition 未知品相
	ErrInvalidCondition = apperrors.New(apperrors.ErrCodeInvalidParams, "品相取值非法")

	// ErrInvalidID 图书ID非法
	ErrInvalidID = apperrors.New(apperrors.ErrCodeInvalidParams, "图书ID非法")

	// ErrPreconditionFailed 条件更新未命中（仓储层返回，由Service重新读取后归类）
	ErrPreconditionFailed = apperrors.New(apperrors.ErrCodeBusinessError, "图书状态已变化")

	// ErrInconsistentState 售出状态与购买者不一致
	ErrInconsistentState = apperrors.New(apperrors.ErrCodeInternal, "图书状态不一致")
)

func errRequired(field string) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeInvalidParams, fmt.Sprintf("%s不能为空", field))
}
