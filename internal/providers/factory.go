package providers

import (
	"fmt"

	"greek-row/chapterhouse/internal/config"
)

// NewEmailProvider picks the email backend named by EMAIL_PROVIDER
func NewEmailProvider(cfg config.EmailConfig) (EmailProvider, error) {
	switch cfg.Provider {
	case "", "console":
		return ConsoleEmailProvider{}, nil
	case "smtp":
		return NewSMTPEmailProvider(cfg), nil
	case "sendgrid":
		return NewSendGridEmailProvider(cfg), nil
	}
	return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
}

// NewSMSProvider picks the SMS backend named by SMS_PROVIDER
func NewSMSProvider(cfg config.SMSConfig) (SMSProvider, error) {
	switch cfg.Provider {
	case "", "console":
		return ConsoleSMSProvider{}, nil
	case "twilio":
		return NewTwilioSMSProvider(cfg), nil
	}
	return nil, fmt.Errorf("unknown sms provider %q", cfg.Provider)
}
