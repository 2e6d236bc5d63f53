package notify

import (
	"context"
	"log/slog"
)

// LogSMS writes messages to the log instead of sending them. Used when no SMS gateway is configured.
type LogSMS struct {
	Logger *slog.Logger
}

func (l LogSMS) SendSMS(ctx context.Context, to, body string) error {
	logger(l.Logger).InfoContext(ctx, "sms gateway not configured, message not sent", "to", to, "body", body)
	return nil
}

// LogEmail writes messages to the log instead of sending them. Used when no email gateway is configured.
type LogEmail struct {
	Logger *slog.Logger
}

func (l LogEmail) SendEmail(ctx context.Context, to, subject, body string) error {
	logger(l.Logger).InfoContext(ctx, "email gateway not configured, message not sent", "to", to, "subject", subject, "body", body)
	return nil
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
