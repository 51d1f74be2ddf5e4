package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Queue payloads carry prices as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// SignificantChangeThreshold is the absolute percentage at or above which a
// price change raises an alert. It is a fixed policy, not a per-product knob.
var SignificantChangeThreshold = decimal.NewFromInt(20)

var hundred = decimal.NewFromInt(100)

// alertNamespace scopes the deterministic alert ids derived from change keys.
var alertNamespace = uuid.MustParse("6f1c2a4e-8d1b-4c55-9a57-2f0f4b7d9e31")

type AlertType string

const (
	AlertTypeIncrease AlertType = "increase"
	AlertTypeDecrease AlertType = "decrease"
)

// PriceChange is the arithmetic of one transition. Percentage is only
// meaningful when PercentageDefined is true (the old price was non-zero).
type PriceChange struct {
	Amount            decimal.Decimal
	Percentage        decimal.Decimal
	PercentageDefined bool
}

// ComputeChange returns new-old and 100*(new-old)/old. A zero old price leaves
// the percentage undefined instead of dividing by zero.
func ComputeChange(oldPrice, newPrice decimal.Decimal) PriceChange {
	amount := newPrice.Sub(oldPrice)
	if oldPrice.IsZero() {
		return PriceChange{Amount: amount, Percentage: decimal.Zero}
	}
	return PriceChange{
		Amount:            amount,
		Percentage:        amount.Mul(hundred).Div(oldPrice),
		PercentageDefined: true,
	}
}

// IsSignificant reports whether abs(percentage) >= 20.
func (c PriceChange) IsSignificant() bool {
	return c.PercentageDefined && c.Percentage.Abs().GreaterThanOrEqual(SignificantChangeThreshold)
}

// Direction is increase for a positive percentage and decrease otherwise.
func (c PriceChange) Direction() AlertType {
	if c.Percentage.IsPositive() {
		return AlertTypeIncrease
	}
	return AlertTypeDecrease
}

// ChangeEvent is the Change Queue payload.
type ChangeEvent struct {
	EventID          string          `json:"eventId,omitempty"`
	ProductID        string          `json:"productId"`
	ProductName      string          `json:"productName"`
	OldPrice         decimal.Decimal `json:"oldPrice"`
	NewPrice         decimal.Decimal `json:"newPrice"`
	ChangeAmount     decimal.Decimal `json:"changeAmount"`
	ChangePercentage decimal.Decimal `json:"changePercentage"`
	UpdatedBy        string          `json:"updatedBy"`
	Timestamp        time.Time       `json:"timestamp"`
}

// NewChangeEvent derives the change fields from the two prices.
func NewChangeEvent(productID, productName string, oldPrice, newPrice decimal.Decimal, updatedBy string, at time.Time) ChangeEvent {
	change := ComputeChange(oldPrice, newPrice)
	return ChangeEvent{
		EventID:          uuid.NewString(),
		ProductID:        productID,
		ProductName:      productName,
		OldPrice:         oldPrice,
		NewPrice:         newPrice,
		ChangeAmount:     change.Amount,
		ChangePercentage: change.Percentage,
		UpdatedBy:        updatedBy,
		Timestamp:        at.UTC(),
	}
}

// Change recomputes the arithmetic from the prices rather than trusting the
// producer's derived fields.
func (e ChangeEvent) Change() PriceChange {
	return ComputeChange(e.OldPrice, e.NewPrice)
}

// DedupeKey identifies one logical change across redeliveries.
func (e ChangeEvent) DedupeKey() string {
	if e.EventID != "" {
		return "event:" + e.EventID
	}
	body := fmt.Sprintf("%s|%s|%s|%d", e.ProductID, e.OldPrice.String(), e.NewPrice.String(), e.Timestamp.UnixMilli())
	hash := sha256.Sum256([]byte(body))
	return "hash:" + hex.EncodeToString(hash[:])
}

// AlertEvent is the Alert Queue payload.
type AlertEvent struct {
	AlertID          string          `json:"alertId,omitempty"`
	AlertType        AlertType       `json:"alertType"`
	ProductID        string          `json:"productId"`
	ProductName      string          `json:"productName"`
	OldPrice         decimal.Decimal `json:"oldPrice"`
	NewPrice         decimal.Decimal `json:"newPrice"`
	ChangeAmount     decimal.Decimal `json:"changeAmount"`
	ChangePercentage decimal.Decimal `json:"changePercentage"`
	AlertTime        time.Time       `json:"alertTime"`
}

// AlertIDFor is stable for a given change key, so a redelivered change yields
// the same alert id.
func AlertIDFor(dedupeKey string) string {
	return uuid.NewSHA1(alertNamespace, []byte(dedupeKey)).String()
}

// HistoryRecord is one append-only row of a product's price history.
type HistoryRecord struct {
	ProductID         string
	SequenceKey       string
	DedupeKey         string
	ProductName       string
	OldPrice          decimal.Decimal
	NewPrice          decimal.Decimal
	ChangeAmount      decimal.Decimal
	ChangePercentage  decimal.Decimal
	PercentageDefined bool
	UpdatedBy         string
	ChangeTime        time.Time
	CreatedAt         time.Time
}

// SequenceKey orders a product's history by event time; the unique suffix
// breaks ties between appends in the same nanosecond.
func SequenceKey(at time.Time, unique int64) string {
	return fmt.Sprintf("%019d-%019d", at.UnixNano(), unique)
}
