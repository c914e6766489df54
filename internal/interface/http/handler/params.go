package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookswap/pkg/errors"
	"github.com/xiebiao/bookswap/pkg/response"
)

// pathID 解析路径中的正整数ID，失败时已写入响应
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, name+"必须是正整数")
		return 0, false
	}
	return uint(id), true
}

// bindJSON 绑定并校验请求体，失败时已写入响应
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return false
	}
	return true
}
