package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopping.app/pricewatch/internal/http/dto"
	"shopping.app/pricewatch/internal/service"
)

type PriceHistoryHandler struct {
	historyService service.PriceHistoryService
}

func NewPriceHistoryHandler(historyService service.PriceHistoryService) *PriceHistoryHandler {
	return &PriceHistoryHandler{historyService: historyService}
}

func (h *PriceHistoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	productID := c.Param("productId")

	var q dto.PriceHistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	records, err := h.historyService.Recent(ctx, productID, q.Limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProductID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to list price history", "error", err, "product_id", productID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load price history"})
		return
	}

	resp := dto.PriceHistoryResponse{
		ProductID: productID,
		History:   make([]dto.PriceHistoryEntry, 0, len(records)),
	}
	for _, r := range records {
		resp.History = append(resp.History, dto.ToPriceHistoryEntry(r))
	}
	c.JSON(http.StatusOK, resp)
}
