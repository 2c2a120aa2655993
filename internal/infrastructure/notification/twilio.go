// Package notification delivers outbound messages to clients.
package notification

import (
	"context"
	"errors"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioConfig holds Twilio credentials and sender numbers.
type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	FromNumber     string
	WhatsAppNumber string
}

// messageCreator is the part of the Twilio API client the sender uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends SMS, or WhatsApp when a WhatsApp number is configured
// and the recipient is in E.164 form.
type TwilioSender struct {
	api            messageCreator
	fromNumber     string
	whatsAppNumber string
}

// NewTwilioSender creates a sender backed by the Twilio REST API.
func NewTwilioSender(cfg TwilioConfig) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{
		api:            client.Api,
		fromNumber:     cfg.FromNumber,
		whatsAppNumber: cfg.WhatsAppNumber,
	}
}

// Channel returns "whatsapp" or "sms" for a recipient.
func (s *TwilioSender) Channel(to string) string {
	if s.whatsAppNumber != "" && strings.HasPrefix(strings.TrimSpace(to), "+") {
		return "whatsapp"
	}
	return "sms"
}

// Send delivers body to the recipient and returns the provider message id.
func (s *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return "", errors.New("recipient phone is empty")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)
	if s.Channel(to) == "whatsapp" {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + s.whatsAppNumber)
	} else {
		params.SetTo(to)
		params.SetFrom(s.fromNumber)
	}

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp != nil && resp.Sid != nil {
		return *resp.Sid, nil
	}
	return "", nil
}
