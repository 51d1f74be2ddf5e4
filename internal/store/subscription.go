package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"shopping.app/pricewatch/core/db/sqlc"
	"shopping.app/pricewatch/internal/model"
)

type subscriptionStore struct {
	queries *sqlc.Queries
}

func newSubscriptionStore(queries *sqlc.Queries) SubscriptionStore {
	return &subscriptionStore{queries: queries}
}

// Upsert expects SubscribedAt to be stamped by the caller's clock.
func (s *subscriptionStore) Upsert(ctx context.Context, sub *model.Subscription) error {
	params, err := toUpsertParams(sub)
	if err != nil {
		return err
	}
	return s.queries.UpsertSubscription(ctx, params)
}

func toUpsertParams(sub *model.Subscription) (sqlc.UpsertSubscriptionParams, error) {
	if sub.SubscribedAt.IsZero() {
		return sqlc.UpsertSubscriptionParams{}, fmt.Errorf("upserting subscription %s/%s: subscribedAt is required", sub.ProductID, sub.Email)
	}
	return sqlc.UpsertSubscriptionParams{
		ProductID:        sub.ProductID,
		Email:            sub.Email,
		ProductName:      sub.ProductName,
		NotifyOnIncrease: sub.NotifyOnIncrease,
		NotifyOnDecrease: sub.NotifyOnDecrease,
		SubscribedAt:     pgtype.Timestamptz{Time: sub.SubscribedAt, Valid: true},
	}, nil
}

func (s *subscriptionStore) Delete(ctx context.Context, productID, email string) (bool, error) {
	affected, err := s.queries.DeleteSubscription(ctx, sqlc.DeleteSubscriptionParams{
		ProductID: productID,
		Email:     email,
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *subscriptionStore) ListByProduct(ctx context.Context, productID string) ([]model.Subscription, error) {
	rows, err := s.queries.ListSubscriptionsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	result := make([]model.Subscription, 0, len(rows))
	for _, row := range rows {
		result = append(result, toSubscriptionModel(row))
	}
	return result, nil
}

func toSubscriptionModel(row sqlc.ProductSubscription) model.Subscription {
	return model.Subscription{
		ProductID:        row.ProductID,
		Email:            row.Email,
		ProductName:      row.ProductName,
		NotifyOnIncrease: row.NotifyOnIncrease,
		NotifyOnDecrease: row.NotifyOnDecrease,
		SubscribedAt:     row.SubscribedAt.Time,
	}
}
