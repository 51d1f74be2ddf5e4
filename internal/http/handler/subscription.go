package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopping.app/pricewatch/internal/http/dto"
	"shopping.app/pricewatch/internal/service"
)

type SubscriptionHandler struct {
	subService service.SubscriptionService
}

func NewSubscriptionHandler(subService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subService: subService}
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sub := req.ToModel()
	ok, err := h.subService.Subscribe(ctx, sub)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSubscription) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to subscribe", "error", err, "product_id", sub.ProductID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscription failed, please try again later"})
		return
	}
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscription failed, please try again later"})
		return
	}

	c.JSON(http.StatusOK, dto.SubscribeResponse{
		Message:     "subscribed: you will be emailed when the price changes",
		Email:       sub.Email,
		ProductName: sub.ProductName,
	})
}

func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.UnsubscribeQuery
	if err := c.ShouldBindQuery(&q); err != nil || q.Email == "" || q.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and productId are required"})
		return
	}

	ok, err := h.subService.Unsubscribe(ctx, q.Email, q.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSubscription) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to unsubscribe", "error", err, "product_id", q.ProductID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unsubscribe failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unsubscribe failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unsubscribed"})
}

func (h *SubscriptionHandler) ListByProduct(c *gin.Context) {
	ctx := c.Request.Context()
	productID := c.Param("productId")

	subs, err := h.subService.ListSubscribers(ctx, productID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list subscribers", "error", err, "product_id", productID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list subscriptions"})
		return
	}

	resp := dto.ListSubscriptionsResponse{
		ProductID:     productID,
		Subscriptions: make([]dto.SubscriptionResponse, 0, len(subs)),
	}
	for _, s := range subs {
		resp.Subscriptions = append(resp.Subscriptions, dto.ToSubscriptionResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}
