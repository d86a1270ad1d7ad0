package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Message is one outbound customer email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single message synchronously. The Dispatcher provides
// the async envelope around it.
type Mailer interface {
	Send(msg Message) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a Mailer on a plain SMTP dialer. The connection is
// established per send; delivery volume is low enough that pooling is not
// worth the bookkeeping.
func NewSMTPMailer(host string, port int, username, password, from string) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *smtpMailer) Send(msg Message) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}
