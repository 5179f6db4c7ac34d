package mail

import (
	"context"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/soulscript/persona-api/internal/domain"
)

// SMTPMailer implements domain.Mailer over SMTP with STARTTLS.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer authenticated as user. Mail is sent from
// that address; the display name comes per message.
func NewSMTPMailer(host string, port int, user, password string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
	}
}

// Send implements domain.Mailer. Delivery failures surface as TransportError.
func (m *SMTPMailer) Send(ctx context.Context, msg domain.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return &domain.TransportError{Op: "mail send", Err: err}
	}

	mail := gomail.NewMessage()
	mail.SetAddressHeader("From", m.from, msg.SenderName)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)

	plain := strings.ReplaceAll(msg.Body, "<br>", "\n")
	mail.SetBody("text/plain", plain)
	mail.AddAlternative("text/html", msg.Body)

	if msg.Attachment != "" {
		mail.Attach(msg.Attachment)
	}

	if err := m.dialer.DialAndSend(mail); err != nil {
		return &domain.TransportError{Op: "mail send", Err: err}
	}
	return nil
}

// LogMailer is a development Mailer that only logs what it would send.
// Used in local mode when no SMTP credentials are configured.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg domain.MailMessage) error {
	m.log.Info("mail delivery skipped (no SMTP configured)",
		"to", msg.To,
		"subject", msg.Subject,
		"attachment", msg.Attachment,
	)
	return nil
}
