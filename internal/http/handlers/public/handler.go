package public

import (
	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 前台接口处理器入口（商品、购物车、结算与订单完成页）
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, key string, err error) {
	shared.RespondError(c, code, key, err)
}
