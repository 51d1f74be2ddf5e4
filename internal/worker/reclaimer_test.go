package worker

import (
	"context"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"shopping.app/pricewatch/internal/queue"
)

var _ = Describe("RedisReclaimer", func() {
	const (
		stream = "price_changes"
		group  = "price_history"
		dlq    = "price_changes_dlq"
	)

	var (
		ctx    context.Context
		mr     *miniredis.Miniredis
		client *redis.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		mr = miniredis.RunT(GinkgoT())
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		DeferCleanup(client.Close)
	})

	newConsumer := func(name string) *queue.RedisConsumer {
		c, err := queue.NewRedisConsumer(client, queue.ConsumerConfig{
			Stream:    stream,
			Group:     group,
			Consumer:  name,
			DLQStream: dlq,
			Block:     10 * time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	pendingCount := func() int64 {
		summary, err := client.XPending(ctx, stream, group).Result()
		Expect(err).NotTo(HaveOccurred())
		return summary.Count
	}

	It("redelivers a message whose consumer never acked it", func() {
		crashed := newConsumer("crashed")
		alive := newConsumer("alive")

		producer := queue.NewRedisProducer(client, stream, nil)
		Expect(producer.Enqueue(ctx, queue.Envelope{Payload: []byte(`{"productId":"p-1"}`)})).To(Succeed())

		read, err := crashed.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(read).To(HaveLen(1))
		Expect(pendingCount()).To(Equal(int64(1)))

		var (
			mu        sync.Mutex
			processed []queue.Message
		)
		r := NewRedisReclaimer(client, RedisReclaimerConfig{
			Stream:   stream,
			Group:    group,
			Consumer: "alive",
		}, alive, func(ctx context.Context, m queue.Message) error {
			mu.Lock()
			processed = append(processed, m)
			mu.Unlock()
			return alive.Ack(ctx, m)
		})

		Expect(r.sweep(ctx)).To(Equal(1))

		Expect(processed).To(HaveLen(1))
		Expect(string(processed[0].Payload)).To(Equal(`{"productId":"p-1"}`))
		Expect(processed[0].Attempt).To(BeNumerically(">=", 1))
		Expect(pendingCount()).To(BeZero())
	})

	It("dead-letters a reclaimed entry that cannot be parsed", func() {
		alive := newConsumer("alive")

		Expect(client.XAdd(ctx, &redis.XAddArgs{
			Stream: stream,
			Values: map[string]any{"attempt": "1"},
		}).Err()).To(Succeed())
		_, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: "crashed",
			Streams:  []string{stream, ">"},
			Count:    1,
			Block:    10 * time.Millisecond,
		}).Result()
		Expect(err).NotTo(HaveOccurred())

		called := false
		r := NewRedisReclaimer(client, RedisReclaimerConfig{
			Stream:   stream,
			Group:    group,
			Consumer: "alive",
		}, alive, func(context.Context, queue.Message) error {
			called = true
			return nil
		})

		Expect(r.sweep(ctx)).Error().NotTo(HaveOccurred())

		Expect(called).To(BeFalse())
		Expect(pendingCount()).To(BeZero())
		Expect(client.XLen(ctx, dlq).Val()).To(Equal(int64(1)))
	})

	It("sweeps as soon as it starts and stops cleanly", func() {
		crashed := newConsumer("crashed")
		alive := newConsumer("alive")

		producer := queue.NewRedisProducer(client, stream, nil)
		Expect(producer.Enqueue(ctx, queue.Envelope{Payload: []byte(`{"productId":"p-2"}`)})).To(Succeed())
		_, err := crashed.Read(ctx)
		Expect(err).NotTo(HaveOccurred())

		var (
			mu      sync.Mutex
			handled int
		)
		r := NewRedisReclaimer(client, RedisReclaimerConfig{
			Stream:   stream,
			Group:    group,
			Consumer: "alive",
			Interval: time.Hour,
		}, alive, func(ctx context.Context, m queue.Message) error {
			mu.Lock()
			handled++
			mu.Unlock()
			return alive.Ack(ctx, m)
		})

		go r.Run(ctx)
		Eventually(func() int {
			mu.Lock()
			defer mu.Unlock()
			return handled
		}).Should(Equal(1))

		r.Stop()
		r.Stop()
		Expect(pendingCount()).To(BeZero())
	})

	It("does nothing when no message is pending", func() {
		alive := newConsumer("alive")
		r := NewRedisReclaimer(client, RedisReclaimerConfig{
			Stream:   stream,
			Group:    group,
			Consumer: "alive",
		}, alive, func(context.Context, queue.Message) error {
			Fail("processor must not run")
			return nil
		})

		Expect(r.sweep(ctx)).To(BeZero())
	})
})
