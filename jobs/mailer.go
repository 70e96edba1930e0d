package jobs

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers plain text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	addr     string
	from     string
	username string
	password string
}

// NewSMTPMailer constructs SMTPMailer. username may be empty for
// unauthenticated relays such as a local Mailpit.
func NewSMTPMailer(addr, from, username, password string) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from, username: username, password: password}
}

// Send delivers one message. The context is not honored mid-send; net/smtp
// has no context support, so cancellation only applies before dialing.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.username != "" {
		host := m.addr
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", m.username, m.password, host)
	}
	return smtp.SendMail(m.addr, auth, m.from, []string{to}, []byte(msg.String()))
}
