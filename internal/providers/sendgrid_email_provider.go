package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"greek-row/chapterhouse/internal/config"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
	// SendGrid accepts at most 1000 personalizations per request
	sendgridBatchSize = 1000
)

// SendGridEmailProvider sends one v3 request per batch with a personalization per recipient
type SendGridEmailProvider struct {
	key  string
	host string
	from *sgmail.Email
}

func NewSendGridEmailProvider(cfg config.EmailConfig) *SendGridEmailProvider {
	return &SendGridEmailProvider{
		key:  cfg.SendgridAPIKey,
		host: sendgridHost,
		from: sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
	}
}

func (p *SendGridEmailProvider) Name() string { return "sendgrid" }

func (p *SendGridEmailProvider) SendBatch(ctx context.Context, msgs []EmailMessage) []error {
	errs := make([]error, len(msgs))
	for start := 0; start < len(msgs); start += sendgridBatchSize {
		end := start + sendgridBatchSize
		if end > len(msgs) {
			end = len(msgs)
		}
		if err := p.send(ctx, msgs[start:end]); err != nil {
			copy(errs[start:end], fill(end-start, err))
		}
	}
	return errs
}

// Messages in one request share the first message's body; the notification
// service only batches identical content.
func (p *SendGridEmailProvider) prepare(msgs []EmailMessage) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(p.from)
	m.Subject = msgs[0].Subject

	for _, msg := range msgs {
		pers := sgmail.NewPersonalization()
		pers.AddTos(sgmail.NewEmail(msg.ToName, msg.To))
		pers.Subject = msg.Subject
		m.AddPersonalizations(pers)
	}

	m.AddContent(sgmail.NewContent("text/plain", msgs[0].Text))
	if msgs[0].HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msgs[0].HTML))
	}
	return m
}

func (p *SendGridEmailProvider) send(ctx context.Context, msgs []EmailMessage) error {
	req := sendgrid.GetRequest(p.key, sendgridEndpoint, p.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(p.prepare(msgs))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
