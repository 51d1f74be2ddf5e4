// Package notify renders and delivers price alert emails.
package notify

import (
	"context"

	"github.com/shopspring/decimal"

	"shopping.app/pricewatch/internal/model"
)

// PriceAlertEmail is everything one recipient's alert needs.
type PriceAlertEmail struct {
	To               string
	ProductName      string
	OldPrice         decimal.Decimal
	NewPrice         decimal.Decimal
	ChangePercentage decimal.Decimal
	Direction        model.AlertType
}

// Dispatcher sends a single alert. Implementations must be safe for
// concurrent use.
type Dispatcher interface {
	SendPriceAlert(ctx context.Context, email PriceAlertEmail) error
}
