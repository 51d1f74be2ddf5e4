package pipeline_test

import (
	"context"

	"github.com/juju/clock/testclock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"shopping.app/pricewatch/common/id"
	"shopping.app/pricewatch/internal/model"
	"shopping.app/pricewatch/internal/pipeline"
	"shopping.app/pricewatch/internal/queue"
)

var _ = Describe("History to fan-out", func() {
	var (
		ctx        context.Context
		history    *memHistoryStore
		alerts     *recordingProducer
		dispatcher *recordingDispatcher
		consumer   *pipeline.HistoryConsumer
		fanout     *pipeline.NotificationFanout
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		history = newMemHistoryStore()
		alerts = &recordingProducer{}
		dispatcher = &recordingDispatcher{}
		consumer = pipeline.NewHistoryConsumer(history, alerts, testclock.NewClock(clockTime))

		subs := &memSubscriptionStore{subs: []model.Subscription{subscriber("s1@example.com", false, true)}}
		var err error
		fanout, err = pipeline.NewNotificationFanout(subs, dispatcher, nil, pipeline.FanoutConfig{})
		Expect(err).NotTo(HaveOccurred())
	})

	drainAlerts := func() {
		for i, env := range alerts.envelopes {
			msg := queue.Message{ID: "alert", Stream: "price_alerts", Payload: env.Payload, Attempt: i + 1}
			Expect(fanout.Handle(ctx, msg)).To(Succeed())
		}
	}

	It("emails the decrease subscriber once for a 30% drop", func() {
		Expect(consumer.Handle(ctx, messageFor(widgetChange("1000", "700")))).To(Succeed())
		drainAlerts()

		records := history.records()
		Expect(records).To(HaveLen(1))
		Expect(records[0].ChangeAmount.Equal(price("-300"))).To(BeTrue())
		Expect(records[0].ChangePercentage.Equal(price("-30"))).To(BeTrue())

		Expect(dispatcher.sent).To(HaveLen(1))
		Expect(dispatcher.sent[0].To).To(Equal("s1@example.com"))
		Expect(dispatcher.sent[0].Direction).To(Equal(model.AlertTypeDecrease))
	})

	It("records a 5% rise without sending anything", func() {
		Expect(consumer.Handle(ctx, messageFor(widgetChange("1000", "1050")))).To(Succeed())
		drainAlerts()

		Expect(history.records()).To(HaveLen(1))
		Expect(alerts.envelopes).To(BeEmpty())
		Expect(dispatcher.sent).To(BeEmpty())
	})
})
