package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mailgun/mailgun-go/v4"

	"accountly/internal/config"
)

// MailgunEmail sends mail through the Mailgun HTTP API.
type MailgunEmail struct {
	mg     mailgun.Mailgun
	sender string
}

func NewMailgunEmail(cfg config.MailgunConfig) *MailgunEmail {
	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		mg.SetAPIBase(cfg.APIBase)
	}
	return &MailgunEmail{mg: mg, sender: cfg.Sender()}
}

func (m *MailgunEmail) SendEmail(ctx context.Context, to, subject, body string) error {
	msg := m.mg.NewMessage(m.sender, subject, body, to)

	_, id, err := m.mg.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("mailgun: send email: %w", err)
	}

	slog.InfoContext(ctx, "email sent", "id", id, "subject", subject)
	return nil
}
