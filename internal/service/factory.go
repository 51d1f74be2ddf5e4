package service

import (
	"github.com/juju/clock"

	"shopping.app/pricewatch/internal/queue"
	"shopping.app/pricewatch/internal/store"
)

type Services struct {
	stores  *store.Stores
	changes queue.Producer
	clock   clock.Clock
}

func NewServices(stores *store.Stores, changes queue.Producer, clk clock.Clock) *Services {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Services{
		stores:  stores,
		changes: changes,
		clock:   clk,
	}
}

func (s *Services) Subscriptions() SubscriptionService {
	return NewSubscriptionService(s.stores.Subscriptions(), s.clock)
}

func (s *Services) Publisher() PriceChangePublisher {
	return NewPriceChangePublisher(s.changes, s.clock)
}

func (s *Services) PriceHistory() PriceHistoryService {
	return NewPriceHistoryService(s.stores.PriceHistory())
}
