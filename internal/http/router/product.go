package router

import (
	"github.com/gin-gonic/gin"

	"shopping.app/pricewatch/internal/http/handler"
)

// ProductRouter mounts the per-product routes under /products/:productId.
func ProductRouter(rg *gin.RouterGroup, subs *handler.SubscriptionHandler, changes *handler.PriceChangeHandler, history *handler.PriceHistoryHandler) {
	rg.GET("/subscriptions", subs.ListByProduct)
	rg.POST("/price-changes", changes.Publish)
	rg.GET("/price-history", history.List)
}
