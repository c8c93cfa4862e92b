package mailer

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// Message is a fully rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Dispatcher delivers a rendered message and returns its delivery message ID.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SMTPConfig captures the relay settings for the SMTP dispatcher.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpDispatcher struct {
	cfg SMTPConfig

	// The client is built once on first use and reused for the process lifetime.
	once    sync.Once
	client  *mail.Client
	initErr error
}

// NewSMTPDispatcher creates a Dispatcher that delivers through the configured SMTP relay.
func NewSMTPDispatcher(cfg SMTPConfig) Dispatcher {
	return &smtpDispatcher{cfg: cfg}
}

func (d *smtpDispatcher) Send(ctx context.Context, msg Message) (string, error) {
	d.once.Do(func() {
		d.client, d.initErr = mail.NewClient(d.cfg.Host,
			mail.WithPort(d.cfg.Port),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(d.cfg.Username),
			mail.WithPassword(d.cfg.Password),
			mail.WithTLSPortPolicy(mail.TLSMandatory),
		)
	})
	if d.initErr != nil {
		return "", fmt.Errorf("smtp client: %w", d.initErr)
	}

	messageID := fmt.Sprintf("%s@tooler.app", uuid.NewString())

	m := mail.NewMsg()
	if err := m.From(d.cfg.From); err != nil {
		return "", fmt.Errorf("set from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return "", fmt.Errorf("set to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetMessageIDWithValue(messageID)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if err := d.client.DialAndSendWithContext(ctx, m); err != nil {
		return "", fmt.Errorf("send mail: %w", err)
	}

	return "<" + messageID + ">", nil
}
