// Package notify delivers SMS and email notifications. Calls are synchronous and never retried.
package notify

import (
	"context"
	"log/slog"

	"accountly/internal/config"
)

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// EmailSender delivers a plain-text email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// NewSMSSender returns the Twilio sender, or a log-only sender when Twilio is not configured.
func NewSMSSender(cfg config.TwilioConfig, logger *slog.Logger) SMSSender {
	if !cfg.Enabled() {
		logger.Warn("Twilio credentials not set, SMS messages will only be logged")
		return LogSMS{Logger: logger}
	}
	return NewTwilioSMS(cfg)
}

// NewEmailSender returns the Mailgun sender, or a log-only sender when Mailgun is not configured.
func NewEmailSender(cfg config.MailgunConfig, logger *slog.Logger) EmailSender {
	if !cfg.Enabled() {
		logger.Warn("Mailgun credentials not set, emails will only be logged")
		return LogEmail{Logger: logger}
	}
	return NewMailgunEmail(cfg)
}
