package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/juju/clock/testclock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"shopping.app/pricewatch/common/id"
	"shopping.app/pricewatch/internal/model"
	"shopping.app/pricewatch/internal/pipeline"
	"shopping.app/pricewatch/internal/queue"
)

var (
	changeTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	clockTime  = changeTime.Add(2 * time.Second)
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func widgetChange(oldPrice, newPrice string) model.ChangeEvent {
	return model.NewChangeEvent("widget-1", "Widget", price(oldPrice), price(newPrice), "seller", changeTime)
}

func messageFor(v any) queue.Message {
	raw, err := json.Marshal(v)
	Expect(err).NotTo(HaveOccurred())
	return queue.Message{ID: "1-0", Stream: "price_changes", Payload: raw, Attempt: 1}
}

var _ = Describe("HistoryConsumer", func() {
	var (
		ctx      context.Context
		history  *memHistoryStore
		alerts   *recordingProducer
		consumer *pipeline.HistoryConsumer
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		history = newMemHistoryStore()
		alerts = &recordingProducer{}
		consumer = pipeline.NewHistoryConsumer(history, alerts, testclock.NewClock(clockTime))
	})

	Describe("Handle", func() {
		It("records a large drop and raises a decrease alert", func() {
			event := widgetChange("1000", "700")

			Expect(consumer.Handle(ctx, messageFor(event))).To(Succeed())

			records := history.records()
			Expect(records).To(HaveLen(1))
			r := records[0]
			Expect(r.ProductID).To(Equal("widget-1"))
			Expect(r.ChangeAmount.Equal(price("-300"))).To(BeTrue())
			Expect(r.ChangePercentage.Equal(price("-30"))).To(BeTrue())
			Expect(r.PercentageDefined).To(BeTrue())
			Expect(r.UpdatedBy).To(Equal("seller"))
			Expect(r.ChangeTime).To(BeTemporally("==", changeTime))
			Expect(r.CreatedAt).To(BeTemporally("==", clockTime))
			Expect(r.DedupeKey).To(Equal(event.DedupeKey()))

			sent := alerts.alerts()
			Expect(sent).To(HaveLen(1))
			a := sent[0]
			Expect(a.AlertID).To(Equal(model.AlertIDFor(event.DedupeKey())))
			Expect(a.AlertType).To(Equal(model.AlertTypeDecrease))
			Expect(a.ProductName).To(Equal("Widget"))
			Expect(a.OldPrice.Equal(price("1000"))).To(BeTrue())
			Expect(a.NewPrice.Equal(price("700"))).To(BeTrue())
			Expect(a.ChangeAmount.Equal(price("-300"))).To(BeTrue())
			Expect(a.ChangePercentage.Equal(price("-30"))).To(BeTrue())
			Expect(a.AlertTime).To(BeTemporally("==", clockTime))
		})

		It("records a small rise without alerting", func() {
			Expect(consumer.Handle(ctx, messageFor(widgetChange("1000", "1050")))).To(Succeed())

			records := history.records()
			Expect(records).To(HaveLen(1))
			Expect(records[0].ChangePercentage.Equal(price("5"))).To(BeTrue())
			Expect(alerts.alerts()).To(BeEmpty())
		})

		DescribeTable("threshold boundary",
			func(oldPrice, newPrice string, wantAlert bool, wantType model.AlertType) {
				Expect(consumer.Handle(ctx, messageFor(widgetChange(oldPrice, newPrice)))).To(Succeed())

				Expect(history.records()).To(HaveLen(1))
				sent := alerts.alerts()
				if !wantAlert {
					Expect(sent).To(BeEmpty())
					return
				}
				Expect(sent).To(HaveLen(1))
				Expect(sent[0].AlertType).To(Equal(wantType))
			},
			Entry("+20.00% alerts", "100", "120", true, model.AlertTypeIncrease),
			Entry("-20.00% alerts", "100", "80", true, model.AlertTypeDecrease),
			Entry("+19.99% stays quiet", "100", "119.99", false, model.AlertType("")),
			Entry("-19.99% stays quiet", "100", "80.01", false, model.AlertType("")),
		)

		It("stores a change from a zero price without a percentage or alert", func() {
			Expect(consumer.Handle(ctx, messageFor(widgetChange("0", "50")))).To(Succeed())

			records := history.records()
			Expect(records).To(HaveLen(1))
			Expect(records[0].PercentageDefined).To(BeFalse())
			Expect(records[0].ChangePercentage.IsZero()).To(BeTrue())
			Expect(records[0].ChangeAmount.Equal(price("50"))).To(BeTrue())
			Expect(alerts.alerts()).To(BeEmpty())
		})

		It("recomputes the change instead of trusting the payload", func() {
			event := widgetChange("100", "105")
			event.ChangePercentage = price("50")
			event.ChangeAmount = price("50")

			Expect(consumer.Handle(ctx, messageFor(event))).To(Succeed())

			Expect(history.records()[0].ChangePercentage.Equal(price("5"))).To(BeTrue())
			Expect(alerts.alerts()).To(BeEmpty())
		})
	})

	Describe("redelivery", func() {
		It("stores a change once and re-sends its alert under the same id", func() {
			msg := messageFor(widgetChange("1000", "700"))

			Expect(consumer.Handle(ctx, msg)).To(Succeed())
			Expect(consumer.Handle(ctx, msg)).To(Succeed())

			Expect(history.records()).To(HaveLen(1))
			sent := alerts.alerts()
			Expect(sent).To(HaveLen(2))
			Expect(sent[1].AlertID).To(Equal(sent[0].AlertID))
		})

		It("deduplicates events without an id by content", func() {
			event := widgetChange("1000", "700")
			event.EventID = ""

			Expect(consumer.Handle(ctx, messageFor(event))).To(Succeed())
			Expect(consumer.Handle(ctx, messageFor(event))).To(Succeed())

			Expect(history.records()).To(HaveLen(1))
		})

		It("keeps distinct changes in the same instant apart", func() {
			first := widgetChange("1000", "900")
			second := widgetChange("900", "950")

			Expect(consumer.Handle(ctx, messageFor(first))).To(Succeed())
			Expect(consumer.Handle(ctx, messageFor(second))).To(Succeed())

			records := history.records()
			Expect(records).To(HaveLen(2))
			Expect(records[0].SequenceKey).NotTo(Equal(records[1].SequenceKey))
		})
	})

	Describe("failures", func() {
		It("returns the store error and enqueues nothing", func() {
			history.appendErr = errors.New("connection refused")

			err := consumer.Handle(ctx, messageFor(widgetChange("1000", "700")))

			Expect(err).To(MatchError(ContainSubstring("appending history")))
			Expect(errors.Is(err, queue.ErrMalformedMessage)).To(BeFalse())
			Expect(alerts.alerts()).To(BeEmpty())
		})

		It("returns the enqueue error after the record is stored", func() {
			alerts.enqueueErr = errors.New("redis down")

			err := consumer.Handle(ctx, messageFor(widgetChange("1000", "700")))

			Expect(err).To(MatchError(ContainSubstring("enqueueing alert")))
			Expect(history.records()).To(HaveLen(1))
		})

		DescribeTable("malformed payloads",
			func(payload string) {
				err := consumer.Handle(ctx, queue.Message{ID: "1-0", Payload: []byte(payload)})
				Expect(errors.Is(err, queue.ErrMalformedMessage)).To(BeTrue())
				Expect(history.records()).To(BeEmpty())
			},
			Entry("not json", `{"productId":`),
			Entry("missing product", `{"oldPrice":10,"newPrice":20,"timestamp":"2026-03-14T09:30:00Z"}`),
			Entry("negative price", `{"productId":"p","oldPrice":-1,"newPrice":20,"timestamp":"2026-03-14T09:30:00Z"}`),
			Entry("missing timestamp", `{"productId":"p","oldPrice":10,"newPrice":20}`),
			Entry("price as garbage", `{"productId":"p","oldPrice":"ten","newPrice":20,"timestamp":"2026-03-14T09:30:00Z"}`),
		)

		It("ignores fields it does not know", func() {
			payload := `{"productId":"p","productName":"P","oldPrice":10,"newPrice":20,"timestamp":"2026-03-14T09:30:00Z","warehouse":"eu-1"}`
			Expect(consumer.Handle(ctx, queue.Message{ID: "1-0", Payload: []byte(payload)})).To(Succeed())
			Expect(alerts.alerts()).To(HaveLen(1))
		})
	})
})
