package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/gardenhub/backend/internal/config"
)

// Sender delivers mail through a single SMTP relay.
type Sender struct {
	addr string
	host string
	from string
	auth smtp.Auth
}

// NewSender builds an SMTP sender from configuration. Auth is skipped
// when no username is configured (local relay, mailhog and the like).
func NewSender(cfg config.SMTPConfig) *Sender {
	s := &Sender{
		addr: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		host: cfg.Host,
		from: cfg.From,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s
}

// Send delivers a single message. The context deadline is honored only
// up to dial time; net/smtp does not support mid-session cancellation.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(s.from, to, subject, body)
	return smtp.SendMail(s.addr, s.auth, s.from, []string{to}, msg)
}

// From returns the configured sender address.
func (s *Sender) From() string {
	return s.from
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
