package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/juju/clock"
	"github.com/shopspring/decimal"

	"shopping.app/pricewatch/common/logger"
	"shopping.app/pricewatch/internal/model"
	"shopping.app/pricewatch/internal/queue"
)

const defaultUpdatedBy = "seller"

// PriceUpdate is a product's price before and after one edit.
type PriceUpdate struct {
	ProductID   string
	ProductName string
	OldPrice    decimal.Decimal
	NewPrice    decimal.Decimal
	UpdatedBy   string
}

type PublishResult struct {
	Published bool
	Event     *model.ChangeEvent
}

// PriceChangePublisher turns product price edits into Change Queue events.
type PriceChangePublisher interface {
	Publish(ctx context.Context, update PriceUpdate) (PublishResult, error)
}

type priceChangePublisher struct {
	changes queue.Producer
	clock   clock.Clock
}

func NewPriceChangePublisher(changes queue.Producer, clk clock.Clock) PriceChangePublisher {
	if clk == nil {
		clk = clock.WallClock
	}
	return &priceChangePublisher{changes: changes, clock: clk}
}

// Publish enqueues exactly one event when the price moved and nothing when
// it did not. Enqueue failures are returned so the caller can surface them.
func (p *priceChangePublisher) Publish(ctx context.Context, update PriceUpdate) (PublishResult, error) {
	update.ProductID = strings.TrimSpace(update.ProductID)
	if update.ProductID == "" {
		return PublishResult{}, fmt.Errorf("%w: productId is required", ErrInvalidPriceUpdate)
	}
	if update.OldPrice.IsNegative() || update.NewPrice.IsNegative() {
		return PublishResult{}, fmt.Errorf("%w: prices must not be negative", ErrInvalidPriceUpdate)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ProductID: logger.Ptr(update.ProductID),
		Component: "pricewatch.service.publisher",
	})

	if update.NewPrice.Equal(update.OldPrice) {
		slog.DebugContext(ctx, "price unchanged, nothing to publish")
		return PublishResult{}, nil
	}

	if update.UpdatedBy == "" {
		update.UpdatedBy = defaultUpdatedBy
	}

	event := model.NewChangeEvent(update.ProductID, update.ProductName, update.OldPrice, update.NewPrice, update.UpdatedBy, p.clock.Now())
	if err := queue.EnqueueJSON(ctx, p.changes, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish price change", "error", err)
		return PublishResult{}, fmt.Errorf("publishing price change: %w", err)
	}

	slog.InfoContext(ctx, "price change published",
		"event_id", event.EventID,
		"old_price", event.OldPrice.String(),
		"new_price", event.NewPrice.String(),
		"change_percentage", event.ChangePercentage.String())

	return PublishResult{Published: true, Event: &event}, nil
}
