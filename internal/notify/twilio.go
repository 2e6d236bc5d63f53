package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"accountly/internal/config"
)

// messageCreator is the slice of the Twilio REST API we use.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSMS sends messages through the Twilio Messages API.
type TwilioSMS struct {
	api  messageCreator
	from string
}

// twilioTimeout bounds each Twilio HTTP call.
const twilioTimeout = 10 * time.Second

func NewTwilioSMS(cfg config.TwilioConfig) *TwilioSMS {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	client.SetTimeout(twilioTimeout)
	return &TwilioSMS{api: client.Api, from: cfg.PhoneNumber}
}

type createResult struct {
	msg *twilioApi.ApiV2010Message
	err error
}

// SendSMS returns as soon as ctx is done. The SDK call itself cannot be aborted and keeps
// running in the background until it finishes or hits twilioTimeout.
func (t *TwilioSMS) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	done := make(chan createResult, 1)
	go func() {
		msg, err := t.api.CreateMessage(params)
		done <- createResult{msg: msg, err: err}
	}()

	var msg *twilioApi.ApiV2010Message
	select {
	case <-ctx.Done():
		return fmt.Errorf("twilio: send sms: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("twilio: send sms: %w", res.err)
		}
		msg = res.msg
	}

	sid := ""
	if msg != nil && msg.Sid != nil {
		sid = *msg.Sid
	}
	slog.InfoContext(ctx, "sms sent", "sid", sid)
	return nil
}
