// Package mail delivers outbound email. The Mailer interface keeps the
// transport injectable so handlers and workers can be tested with a
// fake, and so deployments without an SMTP server still run (links are
// logged instead of sent).
package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// Mailer sends the password-reset email containing the single-use
// reset link. Implementations must never log or persist the raw secret
// beyond the message itself.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}

// NewFromEnv picks an implementation based on the environment: a real
// SMTP sender when SMTP_HOST is set, otherwise a log-only sender for
// development.
func NewFromEnv() Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return &LogMailer{}
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// SMTPMailer sends mail through a plain SMTP endpoint with optional
// AUTH PLAIN credentials.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	subject := "Password Reset Request"
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"You requested a password reset. Open the link below to choose a new password:\r\n\r\n"+
			"%s\r\n\r\n"+
			"This link will expire in 10 minutes.\r\n"+
			"If you didn't request this, please ignore this email.\r\n",
		name, resetURL)
	msg := []byte("From: " + m.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" + body)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	addr := m.Host + ":" + m.Port
	return smtp.SendMail(addr, auth, m.From, []string{to}, msg)
}

// LogMailer writes the reset link to the server log instead of sending
// mail. The raw secret appears in logs, so this is for development only.
type LogMailer struct{}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	log.Printf("mail: password reset for %s: %s", to, resetURL)
	return nil
}
