package service

import (
	"context"
	"fmt"
	"strings"

	"shopping.app/pricewatch/internal/model"
	"shopping.app/pricewatch/internal/store"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

type PriceHistoryService interface {
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, productID string, limit int) ([]model.HistoryRecord, error)
}

type priceHistoryService struct {
	history store.PriceHistoryStore
}

func NewPriceHistoryService(history store.PriceHistoryStore) PriceHistoryService {
	return &priceHistoryService{history: history}
}

func (s *priceHistoryService) Recent(ctx context.Context, productID string, limit int) ([]model.HistoryRecord, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: productId is required", ErrInvalidProductID)
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	records, err := s.history.ListByProduct(ctx, productID, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("listing price history: %w", err)
	}
	return records, nil
}
