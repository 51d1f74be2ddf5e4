package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/shopspring/decimal"

	"shopping.app/pricewatch/internal/model"
)

const alertHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Subject}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #667eea; color: #ffffff; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
    .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
    .price-box { background: #ffffff; padding: 20px; margin: 20px 0; border-radius: 8px; }
    .old-price { text-decoration: line-through; color: #999999; font-size: 18px; }
    .new-price { color: {{.Accent}}; font-size: 32px; font-weight: bold; }
    .change { color: {{.Accent}}; font-size: 24px; font-weight: bold; }
    .footer { text-align: center; color: #999999; font-size: 12px; margin-top: 20px; }
    .button { display: inline-block; padding: 12px 24px; background: #667eea; color: #ffffff; text-decoration: none; border-radius: 5px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{.Headline}}</h1>
      <p>A product you follow changed price.</p>
    </div>
    <div class="content">
      <h2>{{.ProductName}}</h2>
      <div class="price-box">
        <p><strong>Was:</strong> <span class="old-price">{{.OldPrice}}</span></p>
        <p><strong>Now:</strong> <span class="new-price">{{.NewPrice}}</span></p>
        <hr>
        <p><strong>Change:</strong> <span class="change">{{.Change}}</span></p>
      </div>
      {{if .ProductURL}}
      <p style="text-align: center;"><a href="{{.ProductURL}}" class="button">View product</a></p>
      {{end}}
      <div class="footer">
        <p>This notification was sent automatically.</p>
        <p>Manage your subscriptions on the store website to stop these emails.</p>
      </div>
    </div>
  </div>
</body>
</html>
`

const alertTextTemplate = `{{.Headline}}: {{.ProductName}}

Was: {{.OldPrice}}
Now: {{.NewPrice}}
Change: {{.Change}}
{{if .ProductURL}}
View product: {{.ProductURL}}
{{end}}
This notification was sent automatically.
`

const (
	increaseAccent = "#e74c3c"
	decreaseAccent = "#27ae60"
)

// RenderedEmail is a fully rendered message body pair.
type RenderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

type alertView struct {
	Subject     string
	Headline    string
	Accent      string
	ProductName string
	OldPrice    string
	NewPrice    string
	Change      string
	ProductURL  string
}

type Renderer struct {
	html       *template.Template
	text       *texttemplate.Template
	currency   string
	productURL string
}

// NewRenderer builds a renderer. An empty currency falls back to "NT$".
func NewRenderer(currency, productURL string) *Renderer {
	if strings.TrimSpace(currency) == "" {
		currency = "NT$"
	}
	return &Renderer{
		html:       template.Must(template.New("price-alert").Parse(alertHTMLTemplate)),
		text:       texttemplate.Must(texttemplate.New("price-alert-text").Parse(alertTextTemplate)),
		currency:   currency,
		productURL: productURL,
	}
}

func (r *Renderer) Render(email PriceAlertEmail) (RenderedEmail, error) {
	view := alertView{
		Headline:    "Price drop",
		Accent:      decreaseAccent,
		ProductName: email.ProductName,
		OldPrice:    formatMoney(email.OldPrice, r.currency),
		NewPrice:    formatMoney(email.NewPrice, r.currency),
		Change:      formatPercentage(email.ChangePercentage),
		ProductURL:  r.productURL,
	}
	if email.Direction == model.AlertTypeIncrease {
		view.Headline = "Price increase"
		view.Accent = increaseAccent
	}
	view.Subject = fmt.Sprintf("%s alert: %s", view.Headline, email.ProductName)

	var html, text bytes.Buffer
	if err := r.html.Execute(&html, view); err != nil {
		return RenderedEmail{}, fmt.Errorf("rendering html body: %w", err)
	}
	if err := r.text.Execute(&text, view); err != nil {
		return RenderedEmail{}, fmt.Errorf("rendering text body: %w", err)
	}

	return RenderedEmail{
		Subject: view.Subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// formatMoney renders whole currency units with thousands separators,
// e.g. "NT$ 1,000".
func formatMoney(amount decimal.Decimal, currency string) string {
	digits := amount.Abs().StringFixed(0)
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	sign := ""
	if amount.Round(0).IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%s %s%s", currency, sign, b.String())
}

// formatPercentage keeps one decimal and an explicit plus sign on increases.
func formatPercentage(pct decimal.Decimal) string {
	s := pct.StringFixed(1) + "%"
	if pct.IsPositive() {
		return "+" + s
	}
	return s
}
