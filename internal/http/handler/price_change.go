package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopping.app/pricewatch/internal/http/dto"
	"shopping.app/pricewatch/internal/service"
)

type PriceChangeHandler struct {
	publisher service.PriceChangePublisher
}

func NewPriceChangeHandler(publisher service.PriceChangePublisher) *PriceChangeHandler {
	return &PriceChangeHandler{publisher: publisher}
}

// Publish is the product-update hook. It answers 202 once the change is on
// the queue and 200 when the price did not move.
func (h *PriceChangeHandler) Publish(c *gin.Context) {
	ctx := c.Request.Context()
	productID := c.Param("productId")

	var req dto.PriceChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.publisher.Publish(ctx, service.PriceUpdate{
		ProductID:   productID,
		ProductName: req.ProductName,
		OldPrice:    req.OldPrice,
		NewPrice:    req.NewPrice,
		UpdatedBy:   req.UpdatedBy,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPriceUpdate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to publish price change", "error", err, "product_id", productID)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "price change could not be queued"})
		return
	}

	if !result.Published {
		c.JSON(http.StatusOK, dto.PriceChangeResponse{Published: false})
		return
	}

	eventID := result.Event.EventID
	c.JSON(http.StatusAccepted, dto.PriceChangeResponse{Published: true, EventID: &eventID})
}
