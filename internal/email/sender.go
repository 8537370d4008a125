// Package email sends transactional mail.
package email

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"
)

type Sender interface {
	Send(to, subject, html string) error
}

// StdoutSender logs mail instead of delivering it; used in development.
type StdoutSender struct{}

func (StdoutSender) Send(to, subject, html string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("email (stdout sender)")
	return nil
}

// SMTPSender delivers mail over plain SMTP.
type SMTPSender struct {
	Addr string
	From string
}

func NewSMTPSender(addr, from string) *SMTPSender {
	if addr == "" {
		addr = "localhost:1025"
	}
	if from == "" {
		from = "no-reply@minibnb.local"
	}
	return &SMTPSender{Addr: addr, From: from}
}

func (s *SMTPSender) Send(to, subject, html string) error {
	if to == "" {
		return fmt.Errorf("recipient required")
	}
	msg := []byte("From: " + s.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" + html + "\r\n")
	if err := smtp.SendMail(s.Addr, nil, s.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
