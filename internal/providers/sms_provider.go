package providers

import (
	"context"

	"greek-row/chapterhouse/internal/logging"
)

// SMSProvider sends a single text. to is E.164.
type SMSProvider interface {
	Send(ctx context.Context, to, body string) error
	Name() string
}

type ConsoleSMSProvider struct{}

func (ConsoleSMSProvider) Name() string { return "console" }

func (ConsoleSMSProvider) Send(ctx context.Context, to, body string) error {
	logging.FromContext(ctx).Infow("sms (console)", "to", to, "length", len(body))
	return nil
}
