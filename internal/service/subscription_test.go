package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/juju/clock/testclock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"shopping.app/pricewatch/internal/model"
	"shopping.app/pricewatch/internal/service"
)

var _ = Describe("SubscriptionService", func() {
	var (
		ctx       context.Context
		mockStore *mockSubscriptionStore
		svc       service.SubscriptionService
		now       time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockStore = &mockSubscriptionStore{}
		now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
		svc = service.NewSubscriptionService(mockStore, testclock.NewClock(now))
	})

	Describe("Subscribe", func() {
		It("saves a valid subscription and stamps the time", func() {
			var captured *model.Subscription
			mockStore.upsertFn = func(_ context.Context, sub *model.Subscription) error {
				captured = sub
				return nil
			}

			ok, err := svc.Subscribe(ctx, model.Subscription{
				ProductID:        "widget-1",
				Email:            " s1@example.com ",
				ProductName:      "Widget",
				NotifyOnDecrease: true,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(captured).NotTo(BeNil())
			Expect(captured.Email).To(Equal("s1@example.com"))
			Expect(captured.SubscribedAt).To(BeTemporally("==", now))
			Expect(captured.NotifyOnIncrease).To(BeFalse())
			Expect(captured.NotifyOnDecrease).To(BeTrue())
		})

		DescribeTable("rejects invalid input before touching the store",
			func(productID, email string) {
				called := false
				mockStore.upsertFn = func(context.Context, *model.Subscription) error {
					called = true
					return nil
				}

				ok, err := svc.Subscribe(ctx, model.Subscription{ProductID: productID, Email: email})

				Expect(ok).To(BeFalse())
				Expect(errors.Is(err, service.ErrInvalidSubscription)).To(BeTrue())
				Expect(called).To(BeFalse())
			},
			Entry("empty product", "", "s1@example.com"),
			Entry("email without @", "widget-1", "s1.example.com"),
			Entry("empty email", "widget-1", ""),
		)

		It("reports false when the store fails", func() {
			mockStore.upsertFn = func(context.Context, *model.Subscription) error {
				return errors.New("connection reset")
			}

			ok, err := svc.Subscribe(ctx, model.Subscription{ProductID: "widget-1", Email: "s1@example.com"})

			Expect(ok).To(BeFalse())
			Expect(err).To(MatchError(ContainSubstring("saving subscription")))
			Expect(errors.Is(err, service.ErrInvalidSubscription)).To(BeFalse())
		})
	})

	Describe("Unsubscribe", func() {
		It("deletes by composite key", func() {
			var gotProduct, gotEmail string
			mockStore.deleteFn = func(_ context.Context, productID, email string) (bool, error) {
				gotProduct, gotEmail = productID, email
				return true, nil
			}

			ok, err := svc.Unsubscribe(ctx, "s1@example.com", "widget-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(gotProduct).To(Equal("widget-1"))
			Expect(gotEmail).To(Equal("s1@example.com"))
		})

		It("succeeds when the subscription does not exist", func() {
			mockStore.deleteFn = func(context.Context, string, string) (bool, error) {
				return false, nil
			}

			ok, err := svc.Unsubscribe(ctx, "nobody@example.com", "widget-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("reports false when the store fails", func() {
			mockStore.deleteFn = func(context.Context, string, string) (bool, error) {
				return false, errors.New("timeout")
			}

			ok, err := svc.Unsubscribe(ctx, "s1@example.com", "widget-1")

			Expect(ok).To(BeFalse())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListSubscribers", func() {
		It("returns every subscription of the product unfiltered", func() {
			mockStore.listByProductFn = func(_ context.Context, productID string) ([]model.Subscription, error) {
				Expect(productID).To(Equal("widget-1"))
				return []model.Subscription{
					{ProductID: "widget-1", Email: "a@example.com", NotifyOnIncrease: true},
					{ProductID: "widget-1", Email: "b@example.com", NotifyOnDecrease: true},
				}, nil
			}

			subs, err := svc.ListSubscribers(ctx, "widget-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(subs).To(HaveLen(2))
		})

		It("wraps store errors", func() {
			mockStore.listByProductFn = func(context.Context, string) ([]model.Subscription, error) {
				return nil, errors.New("boom")
			}

			_, err := svc.ListSubscribers(ctx, "widget-1")
			Expect(err).To(MatchError(ContainSubstring("listing subscribers")))
		})
	})
})
