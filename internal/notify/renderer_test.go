package notify

import (
	"github.com/shopspring/decimal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"shopping.app/pricewatch/core/config"
	"shopping.app/pricewatch/internal/model"
)

var _ = Describe("Renderer", func() {
	var r *Renderer

	BeforeEach(func() {
		r = NewRenderer("", "https://shopping.example.com/")
	})

	It("renders a price drop", func() {
		out, err := r.Render(PriceAlertEmail{
			To:               "s1@example.com",
			ProductName:      "Widget",
			OldPrice:         decimal.NewFromInt(1000),
			NewPrice:         decimal.NewFromInt(700),
			ChangePercentage: decimal.NewFromInt(-30),
			Direction:        model.AlertTypeDecrease,
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(out.Subject).To(Equal("Price drop alert: Widget"))
		Expect(out.HTML).To(ContainSubstring("NT$ 1,000"))
		Expect(out.HTML).To(ContainSubstring("NT$ 700"))
		Expect(out.HTML).To(ContainSubstring("-30.0%"))
		Expect(out.HTML).To(ContainSubstring(decreaseAccent))
		Expect(out.Text).To(ContainSubstring("Change: -30.0%"))
		Expect(out.Text).To(ContainSubstring("https://shopping.example.com/"))
	})

	It("renders an increase with a plus sign", func() {
		out, err := r.Render(PriceAlertEmail{
			ProductName:      "Gadget",
			OldPrice:         decimal.NewFromInt(100),
			NewPrice:         decimal.NewFromInt(125),
			ChangePercentage: decimal.NewFromInt(25),
			Direction:        model.AlertTypeIncrease,
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(out.Subject).To(Equal("Price increase alert: Gadget"))
		Expect(out.HTML).To(ContainSubstring("+25.0%"))
		Expect(out.HTML).To(ContainSubstring(increaseAccent))
	})

	It("escapes product names in the html body", func() {
		out, err := r.Render(PriceAlertEmail{
			ProductName: `<script>alert("x")</script>`,
			Direction:   model.AlertTypeDecrease,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.HTML).NotTo(ContainSubstring("<script>"))
	})
})

var _ = DescribeTable("formatMoney",
	func(amount string, want string) {
		Expect(formatMoney(decimal.RequireFromString(amount), "NT$")).To(Equal(want))
	},
	Entry("small", "7", "NT$ 7"),
	Entry("thousands", "1000", "NT$ 1,000"),
	Entry("millions", "1234567.4", "NT$ 1,234,567"),
	Entry("rounds", "999.5", "NT$ 1,000"),
	Entry("negative", "-2500", "NT$ -2,500"),
)

var _ = Describe("SMTPDispatcher", func() {
	It("builds a message with sender, recipient and both bodies", func() {
		d := NewSMTPDispatcher(config.SMTPConfig{
			Host:      "smtp.example.com",
			Port:      587,
			FromEmail: "alerts@example.com",
			FromName:  "Price Watch",
		}, NewRenderer("", ""), nil)

		msg, err := d.buildMessage(PriceAlertEmail{
			To:          "s1@example.com",
			ProductName: "Widget",
			Direction:   model.AlertTypeDecrease,
		})
		Expect(err).NotTo(HaveOccurred())

		from := msg.GetFromString()
		Expect(from).To(HaveLen(1))
		Expect(from[0]).To(ContainSubstring("alerts@example.com"))
		to := msg.GetToString()
		Expect(to).To(HaveLen(1))
		Expect(to[0]).To(ContainSubstring("s1@example.com"))
	})

	It("rejects an invalid recipient before dialing", func() {
		d := NewSMTPDispatcher(config.SMTPConfig{
			Host:      "smtp.example.com",
			FromEmail: "alerts@example.com",
		}, NewRenderer("", ""), nil)

		_, err := d.buildMessage(PriceAlertEmail{To: "not-an-address"})
		Expect(err).To(HaveOccurred())
	})

	It("only enables auth when a user is configured", func() {
		anon := NewSMTPDispatcher(config.SMTPConfig{Host: "h", Port: 25}, NewRenderer("", ""), nil)
		authed := NewSMTPDispatcher(config.SMTPConfig{Host: "h", Port: 587, User: "u", Password: "p"}, NewRenderer("", ""), nil)
		Expect(len(authed.clientOptions())).To(BeNumerically(">", len(anon.clientOptions())))
	})
})
