package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/juju/clock"

	"shopping.app/pricewatch/common/logger"
	"shopping.app/pricewatch/internal/model"
	"shopping.app/pricewatch/internal/store"
)

type SubscriptionService interface {
	// Subscribe creates or replaces the (productId, email) subscription.
	Subscribe(ctx context.Context, sub model.Subscription) (bool, error)
	// Unsubscribe succeeds whether or not the subscription existed.
	Unsubscribe(ctx context.Context, email, productID string) (bool, error)
	ListSubscribers(ctx context.Context, productID string) ([]model.Subscription, error)
}

type subscriptionService struct {
	subs  store.SubscriptionStore
	clock clock.Clock
}

func NewSubscriptionService(subs store.SubscriptionStore, clk clock.Clock) SubscriptionService {
	if clk == nil {
		clk = clock.WallClock
	}
	return &subscriptionService{subs: subs, clock: clk}
}

func (s *subscriptionService) Subscribe(ctx context.Context, sub model.Subscription) (bool, error) {
	sub.ProductID = strings.TrimSpace(sub.ProductID)
	sub.Email = strings.TrimSpace(sub.Email)
	if sub.ProductID == "" {
		return false, fmt.Errorf("%w: productId is required", ErrInvalidSubscription)
	}
	if !strings.Contains(sub.Email, "@") {
		return false, fmt.Errorf("%w: email %q is not an address", ErrInvalidSubscription, sub.Email)
	}
	if sub.SubscribedAt.IsZero() {
		sub.SubscribedAt = s.clock.Now().UTC()
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ProductID: logger.Ptr(sub.ProductID)})

	if err := s.subs.Upsert(ctx, &sub); err != nil {
		slog.ErrorContext(ctx, "failed to save subscription", "error", err, "email", sub.Email)
		return false, fmt.Errorf("saving subscription: %w", err)
	}

	slog.InfoContext(ctx, "subscription saved",
		"email", sub.Email,
		"notify_on_increase", sub.NotifyOnIncrease,
		"notify_on_decrease", sub.NotifyOnDecrease)
	return true, nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, email, productID string) (bool, error) {
	email = strings.TrimSpace(email)
	productID = strings.TrimSpace(productID)
	if productID == "" || email == "" {
		return false, fmt.Errorf("%w: email and productId are required", ErrInvalidSubscription)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ProductID: logger.Ptr(productID)})

	existed, err := s.subs.Delete(ctx, productID, email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete subscription", "error", err, "email", email)
		return false, fmt.Errorf("deleting subscription: %w", err)
	}

	slog.InfoContext(ctx, "subscription removed", "email", email, "existed", existed)
	return true, nil
}

func (s *subscriptionService) ListSubscribers(ctx context.Context, productID string) ([]model.Subscription, error) {
	subs, err := s.subs.ListByProduct(ctx, strings.TrimSpace(productID))
	if err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}
	return subs, nil
}
