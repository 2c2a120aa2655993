package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeMessages struct {
	params []*twilioApi.CreateMessageParams
	err    error
}

func (f *fakeMessages) CreateMessage(p *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, p)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSenderSMS(t *testing.T) {
	api := &fakeMessages{}
	s := &TwilioSender{api: api, fromNumber: "+15005550006"}

	id, err := s.Send(context.Background(), "07700 900123", "hello")
	require.NoError(t, err)
	assert.Equal(t, "SM123", id)
	require.Len(t, api.params, 1)
	assert.Equal(t, "07700 900123", *api.params[0].To)
	assert.Equal(t, "+15005550006", *api.params[0].From)
	assert.Equal(t, "hello", *api.params[0].Body)
}

func TestTwilioSenderWhatsApp(t *testing.T) {
	api := &fakeMessages{}
	s := &TwilioSender{api: api, fromNumber: "+15005550006", whatsAppNumber: "+14155238886"}

	assert.Equal(t, "whatsapp", s.Channel("+447700900123"))
	assert.Equal(t, "sms", s.Channel("07700900123"))

	_, err := s.Send(context.Background(), "+447700900123", "hi")
	require.NoError(t, err)
	assert.Equal(t, "whatsapp:+447700900123", *api.params[0].To)
	assert.Equal(t, "whatsapp:+14155238886", *api.params[0].From)
}

func TestTwilioSenderErrors(t *testing.T) {
	s := &TwilioSender{api: &fakeMessages{err: errors.New("rate limited")}}

	_, err := s.Send(context.Background(), "", "x")
	assert.Error(t, err)

	_, err = s.Send(context.Background(), "0770", "x")
	assert.EqualError(t, err, "rate limited")
}
