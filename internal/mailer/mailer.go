// Package mailer delivers the few transactional mails the service sends:
// forgotten-password resets and booking confirmations.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/shyam-539/GoTicket-server/internal/config"
	"github.com/shyam-539/GoTicket-server/internal/observability"
)

// Mailer sends a plain text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns an SMTP mailer when a host is configured and a log mailer
// otherwise.
func New(cfg config.SMTPConfig, log observability.Logger) Mailer {
	if cfg.Host == "" {
		return &LogMailer{log: log}
	}
	return &SMTPMailer{cfg: cfg, log: log}
}

// SMTPMailer speaks SMTP with PLAIN auth; smtp.SendMail upgrades to TLS
// when the server offers STARTTLS.
type SMTPMailer struct {
	cfg config.SMTPConfig
	log observability.Logger
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	msg := buildMessage(m.cfg.From, to, subject, body, time.Now())
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		m.log.WithError(err).WithField("to", to).Error("smtp send failed")
		return errors.Wrap(err, "send mail")
	}
	return nil
}

func buildMessage(from, to, subject, body string, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + strings.NewReplacer("\r", "", "\n", "").Replace(subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// LogMailer writes mails to the log instead of sending them.  The body is
// omitted since it may contain a password.
type LogMailer struct {
	log observability.Logger
}

func NewLogMailer(log observability.Logger) *LogMailer { return &LogMailer{log: log} }

func (m *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.log.WithFields(map[string]interface{}{"to": to, "subject": subject}).Info("mail delivery disabled, message dropped")
	return nil
}
