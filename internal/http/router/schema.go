package router

import (
	"github.com/gin-gonic/gin"

	"shopping.app/pricewatch/internal/http/handler"
)

func SchemaRouter(rg *gin.RouterGroup, h *handler.SchemaHandler) {
	rg.GET("/:name", h.Get)
}
