package shared

import (
	"strconv"
	"strings"

	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SessionKeyContextKey 会话 Key 在 gin 上下文中的键名
const SessionKeyContextKey = "session_key"

// GetSessionKey 读取会话中间件写入的会话 Key
func GetSessionKey(c *gin.Context) (string, bool) {
	value, exists := c.Get(SessionKeyContextKey)
	if !exists {
		RespondError(c, response.CodeInternal, "error.session_unavailable", nil)
		return "", false
	}
	key, ok := value.(string)
	if !ok || key == "" {
		RespondError(c, response.CodeInternal, "error.session_unavailable", nil)
		return "", false
	}
	return key, true
}

// ParseUintParam 解析路径中的 uint 参数
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(value), true
}
