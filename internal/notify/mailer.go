package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/BruksfildServices01/housecall-booking/internal/config"
	"github.com/BruksfildServices01/housecall-booking/internal/logger"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends through an authenticated SMTP relay (Gmail by default).
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.User
	}

	email := mail.NewMsg()
	if err := email.From(from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := email.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		email.AddAlternativeString(mail.TypeTextPlain, msg.Text)
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(m.cfg.Timeout),
	)
	if err != nil {
		return err
	}

	return client.DialAndSendWithContext(ctx, email)
}

// LogMailer is used when SMTP credentials are missing: messages are logged, not sent.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.WithContext(ctx).Info("email not configured, skipping send",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

func NewMailer(cfg config.SMTPConfig) Mailer {
	if !cfg.Enabled() {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}
