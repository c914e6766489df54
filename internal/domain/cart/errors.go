package cart

import (
	apperrors "github.com/xiebiao/bookswap/pkg/errors"
)

var (
	// ErrCartItemNotFound 购物车不存在或不包含该图书
	ErrCartItemNotFound = apperrors.New(apperrors.ErrCodeCartItemNotFound, "购物车中没有这本图书")

	// ErrOwnBook 不能把自己发布的图书加入购物车
	ErrOwnBook = apperrors.New(apperrors.ErrCodeForbidden, "不能把自己发布的图书加入购物车")

	// ErrBookNotAvailable 图书已售出,不能加入购物车
	ErrBookNotAvailable = apperrors.New(apperrors.ErrCodeBookNotAvailable, "图书已售出,不能加入购物车")
)
