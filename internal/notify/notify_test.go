package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"accountly/internal/config"
)

type fakeTwilio struct {
	params  *twilioApi.CreateMessageParams
	err     error
	release chan struct{}
}

func (f *fakeTwilio) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	if f.release != nil {
		<-f.release
	}
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSMS_SendSMS(t *testing.T) {
	api := &fakeTwilio{}
	s := &TwilioSMS{api: api, from: "+15550001111"}

	require.NoError(t, s.SendSMS(context.Background(), "+15551234567", "Your verification code is: 123456"))

	require.NotNil(t, api.params)
	assert.Equal(t, "+15551234567", *api.params.To)
	assert.Equal(t, "+15550001111", *api.params.From)
	assert.Equal(t, "Your verification code is: 123456", *api.params.Body)
}

func TestTwilioSMS_Error(t *testing.T) {
	s := &TwilioSMS{api: &fakeTwilio{err: errors.New("21211 invalid 'To' number")}, from: "+1"}

	err := s.SendSMS(context.Background(), "bogus", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twilio: send sms")
}

func TestTwilioSMS_CancelledContext(t *testing.T) {
	api := &fakeTwilio{}
	s := &TwilioSMS{api: api, from: "+1"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.SendSMS(ctx, "+1", "hi"), context.Canceled)
	assert.Nil(t, api.params)
}

func TestTwilioSMS_ContextCancelledDuringCall(t *testing.T) {
	api := &fakeTwilio{release: make(chan struct{})}
	defer close(api.release)
	s := &TwilioSMS{api: api, from: "+1"}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.SendSMS(ctx, "+15551234567", "hi")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "twilio: send sms")
}

func TestMailgunEmail_SendEmail(t *testing.T) {
	var got struct {
		path, user, key, from, to, subject, text string
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.user, got.key, _ = r.BasicAuth()
		got.from = r.FormValue("from")
		got.to = r.FormValue("to")
		got.subject = r.FormValue("subject")
		got.text = r.FormValue("text")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<20260101.1@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	t.Cleanup(srv.Close)

	m := NewMailgunEmail(config.MailgunConfig{
		APIKey:  "key-123",
		Domain:  "mg.example.com",
		APIBase: srv.URL + "/v3",
	})

	err := m.SendEmail(context.Background(), "a@x.com", "Password Reset", "Click the following link to reset your password: http://x/reset-password/t")
	require.NoError(t, err)

	assert.Equal(t, "/v3/mg.example.com/messages", got.path)
	assert.Equal(t, "api", got.user)
	assert.Equal(t, "key-123", got.key)
	assert.Equal(t, "Your App <mailgun@mg.example.com>", got.from)
	assert.Equal(t, "a@x.com", got.to)
	assert.Equal(t, "Password Reset", got.subject)
	assert.Contains(t, got.text, "/reset-password/t")
}

func TestMailgunEmail_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Forbidden"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	m := NewMailgunEmail(config.MailgunConfig{APIKey: "bad", Domain: "mg.example.com", APIBase: srv.URL + "/v3"})

	err := m.SendEmail(context.Background(), "a@x.com", "Password Reset", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailgun: send email")
}

func TestFactories_FallBackToLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	sms := NewSMSSender(config.TwilioConfig{}, logger)
	email := NewEmailSender(config.MailgunConfig{}, logger)

	require.IsType(t, LogSMS{}, sms)
	require.IsType(t, LogEmail{}, email)

	require.NoError(t, sms.SendSMS(context.Background(), "+1555", "Your verification code is: 000111"))
	require.NoError(t, email.SendEmail(context.Background(), "a@x.com", "Password Reset", "link"))

	out := buf.String()
	assert.Contains(t, out, "Twilio credentials not set")
	assert.Contains(t, out, "Mailgun credentials not set")
	assert.Contains(t, out, "000111")
	assert.Contains(t, out, "subject=\"Password Reset\"")
}

func TestFactories_ConfiguredGateways(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	sms := NewSMSSender(config.TwilioConfig{AccountSID: "AC1", AuthToken: "t", PhoneNumber: "+1"}, logger)
	email := NewEmailSender(config.MailgunConfig{APIKey: "k", Domain: "d"}, logger)

	assert.IsType(t, &TwilioSMS{}, sms)
	assert.IsType(t, &MailgunEmail{}, email)
}
