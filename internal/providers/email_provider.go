package providers

import (
	"context"

	"greek-row/chapterhouse/internal/logging"
)

// EmailMessage is one personalised email to one recipient
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// EmailProvider sends a batch in as few upstream calls as the backend allows.
// The returned slice is index-aligned with msgs; nil entries succeeded.
type EmailProvider interface {
	SendBatch(ctx context.Context, msgs []EmailMessage) []error
	Name() string
}

// ConsoleEmailProvider logs instead of sending. Local development default.
type ConsoleEmailProvider struct{}

func (ConsoleEmailProvider) Name() string { return "console" }

func (ConsoleEmailProvider) SendBatch(ctx context.Context, msgs []EmailMessage) []error {
	log := logging.FromContext(ctx)
	for _, m := range msgs {
		log.Infow("email (console)", "to", m.To, "subject", m.Subject)
	}
	return make([]error, len(msgs))
}

// fill returns n copies of err
func fill(n int, err error) []error {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = err
	}
	return errs
}
