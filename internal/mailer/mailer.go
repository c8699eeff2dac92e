package mailer

import (
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/danbahadur2060/event/internal/logger"
)

var ErrNotConfigured = errors.New("smtp credentials not configured")

// Sender delivers email to one or more recipients.
type Sender interface {
	Send(to []string, subject, htmlBody, textBody string) error
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewSMTPMailer(host string, port int, user, pass, from string, log *logger.Logger) (*SMTPMailer, error) {
	if host == "" || user == "" || pass == "" {
		return nil, ErrNotConfigured
	}
	if from == "" {
		from = user
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
		logger: log,
	}, nil
}

// LogMailer stands in when SMTP is not configured. It drops mail after
// logging so reminder runs stay observable in development.
type LogMailer struct {
	Logger *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{Logger: log}
}

func (m *LogMailer) Send(to []string, subject, htmlBody, textBody string) error {
	m.Logger.Warn("MAIL", fmt.Sprintf("smtp not configured, dropping %q to %d recipients", subject, len(to)))
	return nil
}

// Send delivers one message addressed to the whole batch.
func (m *SMTPMailer) Send(to []string, subject, htmlBody, textBody string) error {
	if len(to) == 0 {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	msg.AddAlternative("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("MAIL", fmt.Sprintf("failed to send to %d recipients: %v", len(to), err))
		return err
	}
	m.logger.Info("MAIL", fmt.Sprintf("sent %q to %d recipients", subject, len(to)))
	return nil
}
