package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisDeliveryGuard struct {
	client *redis.Client
	prefix string
}

// NewRedisDeliveryGuard keeps short-lived sent-markers under prefix.
func NewRedisDeliveryGuard(client *redis.Client, prefix string) DeliveryGuard {
	if prefix == "" {
		prefix = "pricewatch:sent"
	}
	return &redisDeliveryGuard{client: client, prefix: prefix}
}

const (
	markerInFlight = "inflight"
	markerSent     = "sent"
)

func (g *redisDeliveryGuard) Claim(ctx context.Context, alertID, recipient string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(alertID, recipient), markerInFlight, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx sent marker: %w", err)
	}
	return ok, nil
}

// Confirm overwrites the marker, so it also restores one whose in-flight
// TTL ran out during a slow send.
func (g *redisDeliveryGuard) Confirm(ctx context.Context, alertID, recipient string, ttl time.Duration) error {
	if err := g.client.Set(ctx, g.key(alertID, recipient), markerSent, ttl).Err(); err != nil {
		return fmt.Errorf("set sent marker: %w", err)
	}
	return nil
}

func (g *redisDeliveryGuard) Release(ctx context.Context, alertID, recipient string) error {
	if err := g.client.Del(ctx, g.key(alertID, recipient)).Err(); err != nil {
		return fmt.Errorf("del sent marker: %w", err)
	}
	return nil
}

func (g *redisDeliveryGuard) key(alertID, recipient string) string {
	return fmt.Sprintf("%s:%s:%s", g.prefix, alertID, recipient)
}
