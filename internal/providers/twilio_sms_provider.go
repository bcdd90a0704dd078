package providers

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"greek-row/chapterhouse/internal/config"
)

type TwilioSMSProvider struct {
	client     *twilio.RestClient
	from       string
	serviceSID string
}

func NewTwilioSMSProvider(cfg config.SMSConfig) *TwilioSMSProvider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &TwilioSMSProvider{
		client:     client,
		from:       cfg.TwilioFromNumber,
		serviceSID: cfg.TwilioMessagingSID,
	}
}

func (p *TwilioSMSProvider) Name() string { return "twilio" }

// Send uses the messaging service when configured, else the from number.
// The Twilio SDK does not take a context; ctx is checked before the call.
func (p *TwilioSMSProvider) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(body)
	if p.serviceSID != "" {
		params.SetMessagingServiceSid(p.serviceSID)
	} else {
		params.SetFrom(p.from)
	}

	if _, err := p.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	return nil
}
