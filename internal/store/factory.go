package store

import (
	"shopping.app/pricewatch/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Subscriptions() SubscriptionStore {
	return newSubscriptionStore(s.queries)
}

func (s *Stores) PriceHistory() PriceHistoryStore {
	return newPriceHistoryStore(s.queries)
}
