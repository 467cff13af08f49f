// Package mail delivers plain-text notification email.
package mail

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Sender delivers a plain-text message to a single address.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends through an SMTP relay. Addr is host:port.
type SMTPSender struct {
	Addr     string
	From     string
	Username string
	Password string
}

func (s *SMTPSender) Send(to, subject, body string) error {
	host := s.Addr
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, host)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.From, to, subject, body)
	if err := smtp.SendMail(s.Addr, auth, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogSender writes messages to the process log instead of delivering them.
// Used when no SMTP relay is configured (local development).
type LogSender struct{}

func (LogSender) Send(to, subject, body string) error {
	log.Printf("mail to=%s subject=%q body=%q", to, subject, body)
	return nil
}
