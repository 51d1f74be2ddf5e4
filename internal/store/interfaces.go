package store

import (
	"context"
	"errors"
	"time"

	"shopping.app/pricewatch/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// SubscriptionStore is the partitioned (product_id, email) subscription table.
type SubscriptionStore interface {
	Upsert(ctx context.Context, sub *model.Subscription) error
	// Delete reports whether a row existed; a missing row is not an error.
	Delete(ctx context.Context, productID, email string) (bool, error)
	ListByProduct(ctx context.Context, productID string) ([]model.Subscription, error)
}

// PriceHistoryStore is the append-only price history, partitioned by product.
type PriceHistoryStore interface {
	// Append inserts the record unless its dedupe key was already stored, in
	// which case the stored record is returned with created=false.
	Append(ctx context.Context, record *model.HistoryRecord) (*model.HistoryRecord, bool, error)
	ListByProduct(ctx context.Context, productID string, limit int32) ([]model.HistoryRecord, error)
}

// DeliveryGuard records which alert/recipient pairs were already emailed.
// A pair is claimed with a short in-flight TTL before sending and confirmed
// with the long sent TTL afterwards, so a claim left by a crashed sender
// expires before the message is redelivered.
type DeliveryGuard interface {
	// Claim returns false when the pair is in flight or already sent.
	Claim(ctx context.Context, alertID, recipient string, ttl time.Duration) (bool, error)
	// Confirm marks the pair as sent for ttl.
	Confirm(ctx context.Context, alertID, recipient string, ttl time.Duration) error
	Release(ctx context.Context, alertID, recipient string) error
}
