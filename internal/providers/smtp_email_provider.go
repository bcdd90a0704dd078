package providers

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"

	"greek-row/chapterhouse/internal/config"
)

// SMTPEmailProvider sends a batch over a single SMTP connection
type SMTPEmailProvider struct {
	cfg  config.EmailConfig
	from string
	mu   sync.Mutex
}

func NewSMTPEmailProvider(cfg config.EmailConfig) *SMTPEmailProvider {
	return &SMTPEmailProvider{
		cfg:  cfg,
		from: fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
	}
}

func (p *SMTPEmailProvider) Name() string { return "smtp" }

func (p *SMTPEmailProvider) server() *mail.SMTPServer {
	server := mail.NewSMTPClient()
	server.Host = p.cfg.SMTPHost
	server.Port = p.cfg.SMTPPort
	server.Username = p.cfg.SMTPUser
	server.Password = p.cfg.SMTPPassword
	server.Encryption = mail.EncryptionSTARTTLS
	server.TLSConfig = &tls.Config{ServerName: p.cfg.SMTPHost}
	server.SendTimeout = 10 * time.Second
	server.ConnectTimeout = 10 * time.Second
	server.KeepAlive = true
	return server
}

func (p *SMTPEmailProvider) SendBatch(ctx context.Context, msgs []EmailMessage) []error {
	if len(msgs) == 0 {
		return nil
	}

	// go-simple-mail clients are not safe for concurrent use
	p.mu.Lock()
	defer p.mu.Unlock()

	client, err := p.server().Connect()
	if err != nil {
		return fill(len(msgs), fmt.Errorf("smtp connect: %w", err))
	}
	defer client.Close()

	errs := make([]error, len(msgs))
	for i, m := range msgs {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}

		email := mail.NewMSG()
		email.SetFrom(p.from).AddTo(m.To).SetSubject(m.Subject)
		email.SetBody(mail.TextPlain, m.Text)
		if m.HTML != "" {
			email.AddAlternative(mail.TextHTML, m.HTML)
		}
		if email.Error != nil {
			errs[i] = email.Error
			continue
		}
		if err := email.Send(client); err != nil {
			errs[i] = fmt.Errorf("smtp send to %s: %w", m.To, err)
		}
	}
	return errs
}
