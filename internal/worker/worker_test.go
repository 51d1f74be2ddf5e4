package worker

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"shopping.app/pricewatch/internal/queue"
)

var _ = Describe("Worker", func() {
	var (
		ctx      context.Context
		consumer *fakeConsumer
		msg      queue.Message
	)

	BeforeEach(func() {
		ctx = context.Background()
		consumer = &fakeConsumer{}
		msg = queue.Message{ID: "1-0", Stream: "price_changes", Payload: []byte(`{}`), Attempt: 1}
	})

	newWorker := func(h HandlerFunc) *Worker {
		return New(consumer, h, Config{Name: "history", MaxAttempts: 3})
	}

	It("acks a message once the handler succeeds", func() {
		var seen []string
		w := newWorker(func(_ context.Context, m queue.Message) error {
			seen = append(seen, m.ID)
			return nil
		})
		consumer.batches = [][]queue.Message{{msg}}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(seen).To(Equal([]string{"1-0"}))
		Expect(consumer.acked).To(HaveLen(1))
		Expect(consumer.requeued).To(BeEmpty())
		Expect(consumer.dlq).To(BeEmpty())
	})

	It("requeues a failed message below the attempt limit", func() {
		w := newWorker(func(context.Context, queue.Message) error {
			return errors.New("database unavailable")
		})
		msg.Attempt = 2
		consumer.batches = [][]queue.Message{{msg}}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(consumer.acked).To(BeEmpty())
		Expect(consumer.requeued).To(HaveLen(1))
		Expect(consumer.dlq).To(BeEmpty())
	})

	It("dead-letters once the attempt limit is reached", func() {
		w := newWorker(func(context.Context, queue.Message) error {
			return errors.New("still failing")
		})
		msg.Attempt = 3
		consumer.batches = [][]queue.Message{{msg}}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(consumer.requeued).To(BeEmpty())
		Expect(consumer.dlq).To(HaveLen(1))
		Expect(consumer.dlq[0].reason).To(ContainSubstring("still failing"))
	})

	It("dead-letters malformed messages without retrying", func() {
		w := newWorker(func(context.Context, queue.Message) error {
			return fmt.Errorf("%w: productId is required", queue.ErrMalformedMessage)
		})
		consumer.batches = [][]queue.Message{{msg}}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(consumer.requeued).To(BeEmpty())
		Expect(consumer.dlq).To(HaveLen(1))
	})

	It("recovers from a handler panic and retries the message", func() {
		w := newWorker(func(context.Context, queue.Message) error {
			panic("boom")
		})
		consumer.batches = [][]queue.Message{{msg}}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(consumer.requeued).To(HaveLen(1))
	})

	It("keeps processing the batch after one message fails", func() {
		w := newWorker(func(_ context.Context, m queue.Message) error {
			if m.ID == "1-0" {
				return errors.New("transient")
			}
			return nil
		})
		other := msg
		other.ID = "2-0"
		consumer.batches = [][]queue.Message{{msg, other}}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(consumer.requeued).To(HaveLen(1))
		Expect(consumer.acked).To(HaveLen(1))
		Expect(consumer.acked[0].ID).To(Equal("2-0"))
	})

	It("applies the same policy to reclaimed messages", func() {
		w := newWorker(func(context.Context, queue.Message) error {
			return errors.New("still failing")
		})
		msg.Attempt = 5

		Expect(w.ProcessReclaimed(ctx, msg)).To(Succeed())
		Expect(consumer.dlq).To(HaveLen(1))
	})

	It("runs until stopped", func() {
		w := newWorker(func(context.Context, queue.Message) error { return nil })
		consumer.batches = [][]queue.Message{{msg}}

		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()

		Eventually(consumer.ackedCount).Should(Equal(1))
		w.Stop()
		Eventually(done).Should(Receive(BeNil()))
	})
})
