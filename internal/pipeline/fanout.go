package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"shopping.app/pricewatch/common/logger"
	"shopping.app/pricewatch/internal/model"
	"shopping.app/pricewatch/internal/notify"
	"shopping.app/pricewatch/internal/queue"
	"shopping.app/pricewatch/internal/store"
)

const (
	meterName          = "pricewatch"
	notificationMetric = "pricewatch.notifications"
	duplicateReason    = "duplicate"

	defaultInFlightTTL = 2 * time.Minute
	defaultSentTTL     = 24 * time.Hour
)

// FanoutConfig sets the sent-marker lifetimes. InFlightTTL bounds a claim
// whose sender never finished and must stay below the queue lease timeout,
// so a redelivered alert finds the claim gone. SentTTL is how long a
// delivered pair is remembered.
type FanoutConfig struct {
	InFlightTTL time.Duration
	SentTTL     time.Duration
}

// NotificationFanout emails every subscriber whose preferences match an
// alert. Each recipient is attempted independently; one failure never
// blocks the others.
type NotificationFanout struct {
	subscriptions store.SubscriptionStore
	dispatcher    notify.Dispatcher
	guard         store.DeliveryGuard
	cfg           FanoutConfig
	notifications metric.Int64Counter
}

// NewNotificationFanout wires the stage. guard may be nil, which disables
// duplicate suppression across redeliveries.
func NewNotificationFanout(subscriptions store.SubscriptionStore, dispatcher notify.Dispatcher, guard store.DeliveryGuard, cfg FanoutConfig) (*NotificationFanout, error) {
	counter, err := otel.Meter(meterName).Int64Counter(notificationMetric,
		metric.WithDescription("Price alert notifications by outcome"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating notification counter: %w", err)
	}
	if cfg.InFlightTTL <= 0 {
		cfg.InFlightTTL = defaultInFlightTTL
	}
	if cfg.SentTTL <= 0 {
		cfg.SentTTL = defaultSentTTL
	}
	return &NotificationFanout{
		subscriptions: subscriptions,
		dispatcher:    dispatcher,
		guard:         guard,
		cfg:           cfg,
		notifications: counter,
	}, nil
}

func (f *NotificationFanout) Handle(ctx context.Context, msg queue.Message) error {
	alert, err := DecodeAlertEvent(msg.Payload)
	if err != nil {
		return err
	}
	_, err = f.Fanout(ctx, alert)
	return err
}

// Fanout returns an error only when subscribers could not be listed.
// Per-recipient failures are reported in the result.
func (f *NotificationFanout) Fanout(ctx context.Context, alert model.AlertEvent) (FanoutResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ProductID: logger.Ptr(alert.ProductID),
		AlertID:   logger.Ptr(alert.AlertID),
		Component: "pricewatch.pipeline.fanout",
	})

	subs, err := f.subscriptions.ListByProduct(ctx, alert.ProductID)
	if err != nil {
		return FanoutResult{}, fmt.Errorf("listing subscribers: %w", err)
	}

	result := FanoutResult{AlertID: alert.AlertID, Subscribers: len(subs)}
	for _, sub := range subs {
		if !sub.Wants(alert.AlertType) {
			continue
		}
		result.Matched++
		outcome := f.deliver(ctx, alert, sub.Email)
		f.record(ctx, alert, outcome)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	slog.InfoContext(ctx, "price alert fan-out complete",
		"alert_type", alert.AlertType,
		"subscribers", result.Subscribers,
		"matched", result.Matched,
		"sent", result.Count(OutcomeSent),
		"skipped", result.Count(OutcomeSkipped),
		"failed", result.Count(OutcomeFailed))

	return result, nil
}

func (f *NotificationFanout) deliver(ctx context.Context, alert model.AlertEvent, recipient string) (outcome DeliveryOutcome) {
	sc := logger.StartSpan(ctx, "pipeline.fanout.dispatch")
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(attribute.String("pricewatch.alert_type", string(alert.AlertType)))

	claimed := false

	// A panicking dispatcher must not take the remaining recipients down.
	defer func() {
		if r := recover(); r != nil {
			outcome = Failed(recipient, fmt.Errorf("panic: %v", r))
			sc.AddEvent("notification.failed", attribute.String("reason", outcome.Reason))
			if claimed {
				f.release(ctx, alert.AlertID, recipient)
			}
		}
	}()

	if f.guard != nil {
		ok, err := f.guard.Claim(ctx, alert.AlertID, recipient, f.cfg.InFlightTTL)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "sent-marker unavailable, sending without duplicate check",
				"error", err,
				"recipient", recipient)
		case !ok:
			sc.AddEvent("notification.skipped", attribute.String("reason", duplicateReason))
			return Skipped(recipient, duplicateReason)
		default:
			claimed = true
		}
	}

	err := f.dispatcher.SendPriceAlert(ctx, notify.PriceAlertEmail{
		To:               recipient,
		ProductName:      alert.ProductName,
		OldPrice:         alert.OldPrice,
		NewPrice:         alert.NewPrice,
		ChangePercentage: alert.ChangePercentage,
		Direction:        alert.AlertType,
	})
	if err != nil {
		sc.RecordError(err)
		sc.AddEvent("notification.failed", attribute.String("reason", err.Error()))
		if claimed {
			f.release(ctx, alert.AlertID, recipient)
		}
		return Failed(recipient, err)
	}

	if claimed {
		f.confirm(ctx, alert.AlertID, recipient)
	}
	return Sent(recipient)
}

// confirm and release outlive cancellation of the message context: a
// shutdown mid-send must neither strand an in-flight claim nor forget a
// delivered email.
func (f *NotificationFanout) confirm(ctx context.Context, alertID, recipient string) {
	if err := f.guard.Confirm(context.WithoutCancel(ctx), alertID, recipient, f.cfg.SentTTL); err != nil {
		slog.WarnContext(ctx, "failed to confirm sent-marker", "error", err, "recipient", recipient)
	}
}

// release lets a later redelivery retry a recipient whose send failed.
func (f *NotificationFanout) release(ctx context.Context, alertID, recipient string) {
	if err := f.guard.Release(context.WithoutCancel(ctx), alertID, recipient); err != nil {
		slog.WarnContext(ctx, "failed to release sent-marker", "error", err, "recipient", recipient)
	}
}

func (f *NotificationFanout) record(ctx context.Context, alert model.AlertEvent, outcome DeliveryOutcome) {
	f.notifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", string(outcome.Status)),
		attribute.String("alert_type", string(alert.AlertType)),
	))

	switch outcome.Status {
	case OutcomeFailed:
		slog.ErrorContext(ctx, "price alert delivery failed",
			"recipient", outcome.Recipient,
			"reason", outcome.Reason)
	case OutcomeSkipped:
		slog.InfoContext(ctx, "price alert already delivered",
			"recipient", outcome.Recipient)
	default:
		slog.DebugContext(ctx, "price alert delivered", "recipient", outcome.Recipient)
	}
}

// DecodeAlertEvent parses an Alert Queue payload. Alerts from producers that
// predate alert ids get one derived from their content.
func DecodeAlertEvent(payload []byte) (model.AlertEvent, error) {
	var alert model.AlertEvent
	if err := json.Unmarshal(payload, &alert); err != nil {
		return model.AlertEvent{}, fmt.Errorf("%w: decoding alert event: %v", queue.ErrMalformedMessage, err)
	}
	if alert.ProductID == "" {
		return model.AlertEvent{}, fmt.Errorf("%w: productId is required", queue.ErrMalformedMessage)
	}
	if alert.AlertType != model.AlertTypeIncrease && alert.AlertType != model.AlertTypeDecrease {
		return model.AlertEvent{}, fmt.Errorf("%w: unknown alertType %q", queue.ErrMalformedMessage, alert.AlertType)
	}
	if alert.AlertID == "" {
		alert.AlertID = model.AlertIDFor(fmt.Sprintf("alert:%s|%s|%s|%d",
			alert.ProductID, alert.OldPrice.String(), alert.NewPrice.String(), alert.AlertTime.UnixMilli()))
	}
	return alert, nil
}
