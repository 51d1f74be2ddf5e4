package router

import (
	"github.com/gin-gonic/gin"

	"shopping.app/pricewatch/internal/http/handler"
)

func SubscriptionRouter(rg *gin.RouterGroup, h *handler.SubscriptionHandler) {
	rg.POST("", h.Subscribe)
	rg.DELETE("", h.Unsubscribe)
}
