package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"shopping.app/pricewatch/common/logger"
	"shopping.app/pricewatch/internal/queue"
)

// RedisReclaimerConfig describes which consumer group's leases to police.
// MinIdle is the lease timeout: a pending entry idle at least this long is
// taken over and redelivered.
type RedisReclaimerConfig struct {
	Stream    string
	Group     string
	Consumer  string
	MinIdle   time.Duration
	Interval  time.Duration
	BatchSize int64
}

// RedisReclaimer is the pipeline's redelivery path. A message read but never
// acked (crash, lost requeue, shutdown mid-handler) stays in the group's
// pending list; the reclaimer claims it once its lease runs out and hands it
// back to the worker's failure policy.
type RedisReclaimer struct {
	client    *redis.Client
	cfg       RedisReclaimerConfig
	consumer  Consumer
	processor queue.MessageProcessor

	stopOnce  sync.Once
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewRedisReclaimer(client *redis.Client, cfg RedisReclaimerConfig, consumer Consumer, processor queue.MessageProcessor) *RedisReclaimer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &RedisReclaimer{
		client:    client,
		cfg:       cfg,
		consumer:  consumer,
		processor: processor,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run sweeps once at startup, which picks up leases left by a previous
// process, and then every Interval until Stop or ctx cancellation.
func (r *RedisReclaimer) Run(ctx context.Context) {
	defer close(r.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "pricewatch.worker.reclaimer",
		Stream:    logger.Ptr(r.cfg.Stream),
	})
	slog.InfoContext(ctx, "reclaimer started",
		"group", r.cfg.Group,
		"lease", r.cfg.MinIdle,
		"interval", r.cfg.Interval)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		if n, err := r.sweep(ctx); err != nil {
			slog.ErrorContext(ctx, "reclaim sweep failed", "error", err)
		} else if n > 0 {
			slog.InfoContext(ctx, "reclaim sweep redelivered messages", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
		}
	}
}

// Stop is safe to call more than once; it waits for Run to return.
func (r *RedisReclaimer) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.stoppedCh
}

// sweep claims every entry whose lease expired and redelivers it. It returns
// how many entries this consumer took over.
func (r *RedisReclaimer) sweep(ctx context.Context) (int, error) {
	stale, err := r.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: r.cfg.Stream,
		Group:  r.cfg.Group,
		Idle:   r.cfg.MinIdle,
		Start:  "-",
		End:    "+",
		Count:  r.cfg.BatchSize,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("listing expired leases: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(stale))
	deliveries := make(map[string]int64, len(stale))
	for _, p := range stale {
		ids = append(ids, p.ID)
		deliveries[p.ID] = p.RetryCount
		slog.DebugContext(ctx, "lease expired",
			"message_id", p.ID,
			"owner", p.Consumer,
			"idle", p.Idle,
			"deliveries", p.RetryCount)
	}

	// MinIdle is re-checked by Redis, so a peer that claimed first wins and
	// its entries are simply absent here.
	claimed, err := r.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   r.cfg.Stream,
		Group:    r.cfg.Group,
		Consumer: r.cfg.Consumer,
		MinIdle:  r.cfg.MinIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("claiming expired leases: %w", err)
	}

	for _, raw := range claimed {
		r.redeliver(ctx, raw, deliveries[raw.ID])
	}
	return len(claimed), nil
}

func (r *RedisReclaimer) redeliver(ctx context.Context, raw redis.XMessage, deliveries int64) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{MessageID: logger.Ptr(raw.ID)})

	msg, err := queue.ParseMessage(r.cfg.Stream, raw)
	if err != nil {
		slog.ErrorContext(ctx, "reclaimed entry is unreadable, dead-lettering", "error", err)
		if dlqErr := r.consumer.SendDLQ(ctx, queue.Message{ID: raw.ID, Stream: r.cfg.Stream, Raw: raw}, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to dead-letter reclaimed entry", "error", dlqErr)
		}
		return
	}

	// Every expired lease was a delivery that did not finish.
	if int(deliveries) > msg.Attempt {
		msg.Attempt = int(deliveries)
	}

	if err := r.processor(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "reclaimed message failed", "error", err, "attempt", msg.Attempt)
	}
}
