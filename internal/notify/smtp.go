package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"shopping.app/pricewatch/core/config"
)

// SMTPDispatcher sends alerts over SMTP with mandatory STARTTLS.
type SMTPDispatcher struct {
	cfg      config.SMTPConfig
	renderer *Renderer
	logger   *slog.Logger
}

func NewSMTPDispatcher(cfg config.SMTPConfig, renderer *Renderer, logger *slog.Logger) *SMTPDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPDispatcher{
		cfg:      cfg,
		renderer: renderer,
		logger:   logger,
	}
}

func (d *SMTPDispatcher) SendPriceAlert(ctx context.Context, email PriceAlertEmail) error {
	msg, err := d.buildMessage(email)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(d.cfg.Host, d.clientOptions()...)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending price alert to %s: %w", email.To, err)
	}

	d.logger.InfoContext(ctx, "price alert email sent",
		"recipient", email.To,
		"alert_type", email.Direction)
	return nil
}

func (d *SMTPDispatcher) buildMessage(email PriceAlertEmail) (*mail.Msg, error) {
	rendered, err := d.renderer.Render(email)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(d.cfg.FromName, d.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.AddToFormat(email.To, email.To); err != nil {
		return nil, fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject(rendered.Subject)
	msg.SetBodyString(mail.TypeTextHTML, rendered.HTML)
	msg.AddAlternativeString(mail.TypeTextPlain, rendered.Text)
	return msg, nil
}

func (d *SMTPDispatcher) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(d.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(d.cfg.Timeout),
	}
	if d.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(d.cfg.User),
			mail.WithPassword(d.cfg.Password),
		)
	}
	return opts
}
