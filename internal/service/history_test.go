package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"shopping.app/pricewatch/internal/model"
	"shopping.app/pricewatch/internal/service"
)

var _ = Describe("PriceHistoryService", func() {
	var (
		ctx       context.Context
		mockStore *mockPriceHistoryStore
		svc       service.PriceHistoryService
		gotLimit  int32
	)

	BeforeEach(func() {
		ctx = context.Background()
		gotLimit = 0
		mockStore = &mockPriceHistoryStore{
			listByProductFn: func(_ context.Context, _ string, limit int32) ([]model.HistoryRecord, error) {
				gotLimit = limit
				return []model.HistoryRecord{{ProductID: "widget-1"}}, nil
			},
		}
		svc = service.NewPriceHistoryService(mockStore)
	})

	DescribeTable("clamps the limit",
		func(requested int, want int32) {
			_, err := svc.Recent(ctx, "widget-1", requested)
			Expect(err).NotTo(HaveOccurred())
			Expect(gotLimit).To(Equal(want))
		},
		Entry("default", 0, int32(service.DefaultHistoryLimit)),
		Entry("negative", -3, int32(service.DefaultHistoryLimit)),
		Entry("in range", 10, int32(10)),
		Entry("too large", 10000, int32(service.MaxHistoryLimit)),
	)

	It("requires a product id", func() {
		_, err := svc.Recent(ctx, " ", 10)
		Expect(errors.Is(err, service.ErrInvalidProductID)).To(BeTrue())
	})

	It("wraps store errors", func() {
		mockStore.listByProductFn = func(context.Context, string, int32) ([]model.HistoryRecord, error) {
			return nil, errors.New("boom")
		}
		_, err := svc.Recent(ctx, "widget-1", 10)
		Expect(err).To(MatchError(ContainSubstring("listing price history")))
	})
})
