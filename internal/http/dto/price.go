package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"shopping.app/pricewatch/internal/model"
)

// PriceChangeRequest is sent by the product service after a price edit.
type PriceChangeRequest struct {
	ProductName string          `json:"productName" binding:"max=255"`
	OldPrice    decimal.Decimal `json:"oldPrice"`
	NewPrice    decimal.Decimal `json:"newPrice"`
	UpdatedBy   string          `json:"updatedBy" binding:"max=255"`
}

type PriceChangeResponse struct {
	Published bool    `json:"published"`
	EventID   *string `json:"eventId,omitempty"`
}

type PriceHistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=0"`
}

type PriceHistoryEntry struct {
	SequenceKey      string           `json:"sequenceKey"`
	ProductName      string           `json:"productName"`
	OldPrice         decimal.Decimal  `json:"oldPrice"`
	NewPrice         decimal.Decimal  `json:"newPrice"`
	ChangeAmount     decimal.Decimal  `json:"changeAmount"`
	ChangePercentage *decimal.Decimal `json:"changePercentage"`
	UpdatedBy        string           `json:"updatedBy"`
	ChangeTime       time.Time        `json:"changeTime"`
}

type PriceHistoryResponse struct {
	ProductID string              `json:"productId"`
	History   []PriceHistoryEntry `json:"history"`
}

// ToPriceHistoryEntry reports an undefined percentage as null.
func ToPriceHistoryEntry(r model.HistoryRecord) PriceHistoryEntry {
	entry := PriceHistoryEntry{
		SequenceKey:  r.SequenceKey,
		ProductName:  r.ProductName,
		OldPrice:     r.OldPrice,
		NewPrice:     r.NewPrice,
		ChangeAmount: r.ChangeAmount,
		UpdatedBy:    r.UpdatedBy,
		ChangeTime:   r.ChangeTime,
	}
	if r.PercentageDefined {
		pct := r.ChangePercentage
		entry.ChangePercentage = &pct
	}
	return entry
}
