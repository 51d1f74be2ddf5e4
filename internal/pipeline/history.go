package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/juju/clock"

	"shopping.app/pricewatch/common/id"
	"shopping.app/pricewatch/common/logger"
	"shopping.app/pricewatch/internal/model"
	"shopping.app/pricewatch/internal/queue"
	"shopping.app/pricewatch/internal/store"
)

// HistoryConsumer records every price change and raises an alert for the
// significant ones. Several instances may share one consumer group.
type HistoryConsumer struct {
	history store.PriceHistoryStore
	alerts  queue.Producer
	clock   clock.Clock
	nextID  func() int64
}

func NewHistoryConsumer(history store.PriceHistoryStore, alerts queue.Producer, clk clock.Clock) *HistoryConsumer {
	if clk == nil {
		clk = clock.WallClock
	}
	return &HistoryConsumer{
		history: history,
		alerts:  alerts,
		clock:   clk,
		nextID:  id.New,
	}
}

func (c *HistoryConsumer) Handle(ctx context.Context, msg queue.Message) error {
	event, err := DecodeChangeEvent(msg.Payload)
	if err != nil {
		return err
	}
	return c.Process(ctx, event)
}

// Process appends the change to the product's history, then enqueues an
// alert when the move is significant. A change that was already stored is
// re-evaluated so an alert lost between append and enqueue is re-sent under
// the same alert id.
func (c *HistoryConsumer) Process(ctx context.Context, event model.ChangeEvent) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ProductID: logger.Ptr(event.ProductID),
		Component: "pricewatch.pipeline.history",
	})

	change := event.Change()
	record := &model.HistoryRecord{
		ProductID:         event.ProductID,
		SequenceKey:       model.SequenceKey(event.Timestamp, c.nextID()),
		DedupeKey:         event.DedupeKey(),
		ProductName:       event.ProductName,
		OldPrice:          event.OldPrice,
		NewPrice:          event.NewPrice,
		ChangeAmount:      change.Amount,
		ChangePercentage:  change.Percentage,
		PercentageDefined: change.PercentageDefined,
		UpdatedBy:         event.UpdatedBy,
		ChangeTime:        event.Timestamp.UTC(),
		CreatedAt:         c.clock.Now().UTC(),
	}

	stored, created, err := c.history.Append(ctx, record)
	if err != nil {
		return fmt.Errorf("appending history: %w", err)
	}

	if created {
		slog.InfoContext(ctx, "price change recorded",
			"sequence_key", stored.SequenceKey,
			"change_amount", change.Amount.String(),
			"change_percentage", change.Percentage.String())
	} else {
		slog.InfoContext(ctx, "price change already recorded, re-evaluating alert",
			"sequence_key", stored.SequenceKey,
			"dedupe_key", stored.DedupeKey)
	}

	if !change.PercentageDefined {
		slog.InfoContext(ctx, "old price is zero, skipping threshold check")
		return nil
	}
	if !change.IsSignificant() {
		slog.DebugContext(ctx, "change below alert threshold",
			"change_percentage", change.Percentage.String())
		return nil
	}

	alert := model.AlertEvent{
		AlertID:          model.AlertIDFor(stored.DedupeKey),
		AlertType:        change.Direction(),
		ProductID:        event.ProductID,
		ProductName:      event.ProductName,
		OldPrice:         event.OldPrice,
		NewPrice:         event.NewPrice,
		ChangeAmount:     change.Amount,
		ChangePercentage: change.Percentage,
		AlertTime:        c.clock.Now().UTC(),
	}

	if err := queue.EnqueueJSON(ctx, c.alerts, alert); err != nil {
		return fmt.Errorf("enqueueing alert: %w", err)
	}

	slog.InfoContext(logger.WithLogFields(ctx, logger.LogFields{AlertID: logger.Ptr(alert.AlertID)}),
		"price alert enqueued",
		"alert_type", alert.AlertType,
		"change_percentage", change.Percentage.String())
	return nil
}

// DecodeChangeEvent parses a Change Queue payload. Unknown fields are
// ignored; a payload that cannot describe a price change is malformed.
func DecodeChangeEvent(payload []byte) (model.ChangeEvent, error) {
	var event model.ChangeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return model.ChangeEvent{}, fmt.Errorf("%w: decoding change event: %v", queue.ErrMalformedMessage, err)
	}
	if event.ProductID == "" {
		return model.ChangeEvent{}, fmt.Errorf("%w: productId is required", queue.ErrMalformedMessage)
	}
	if event.OldPrice.IsNegative() || event.NewPrice.IsNegative() {
		return model.ChangeEvent{}, fmt.Errorf("%w: prices must not be negative", queue.ErrMalformedMessage)
	}
	if event.Timestamp.IsZero() {
		return model.ChangeEvent{}, fmt.Errorf("%w: timestamp is required", queue.ErrMalformedMessage)
	}
	return event, nil
}
