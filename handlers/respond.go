package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"online-voting-backend/apperrors"
)

// respondError 把业务错误类别映射为HTTP状态码。
// 核心代码不关心传输层，映射只发生在这里。
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)

	var status int
	switch kind {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindPrecondition:
		status = http.StatusForbidden
	default:
		// 内部错误不向调用方泄露细节
		log.Printf("内部错误: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error(), "kind": kind.String()})
}

// currentUserID 从请求头取出已解析的调用方身份。
// 身份认证由外部网关完成，核心只接收解析好的用户ID。
func currentUserID(c *gin.Context) (uint, bool) {
	idStr := c.GetHeader("X-User-ID")
	if idStr == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pathID 解析路径中的数字ID参数
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return 0, false
	}
	return uint(id), true
}
