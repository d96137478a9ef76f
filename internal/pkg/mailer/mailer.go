package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends transactional email. Delivery is best-effort; callers on
// security-sensitive paths must not let failures change their response.
type Mailer interface {
	Send(to, subject, text, html string) error
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type SMTPMailer struct {
	conf SMTPConfig
}

func NewSMTPMailer(conf SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		conf: conf,
	}
}

func (m *SMTPMailer) Send(to, subject, text, html string) error {
	body := html
	contentType := `text/html; charset="utf-8"`
	if body == "" {
		body = text
		contentType = `text/plain; charset="utf-8"`
	}

	headers := []string{
		"From: " + m.conf.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: " + contentType,
	}

	var message strings.Builder
	for _, h := range headers {
		message.WriteString(h + "\r\n")
	}
	message.WriteString("\r\n" + body)

	auth := smtp.PlainAuth("", m.conf.Username, m.conf.Password, m.conf.Host)

	if err := smtp.SendMail(m.conf.Host+":"+m.conf.Port, auth, m.conf.From, []string{to}, []byte(message.String())); err != nil {
		return fmt.Errorf("smtp.SendMail -> %w", err)
	}

	return nil
}
