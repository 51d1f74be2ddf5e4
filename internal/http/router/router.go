package router

import (
	"github.com/gin-gonic/gin"

	"shopping.app/pricewatch/internal/http/handler"
	"shopping.app/pricewatch/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		subHandler := handler.NewSubscriptionHandler(services.Subscriptions())
		SubscriptionRouter(v1.Group("/subscriptions"), subHandler)

		ProductRouter(v1.Group("/products/:productId"),
			subHandler,
			handler.NewPriceChangeHandler(services.Publisher()),
			handler.NewPriceHistoryHandler(services.PriceHistory()),
		)

		SchemaRouter(v1.Group("/schemas"), handler.NewSchemaHandler())
	}
}
