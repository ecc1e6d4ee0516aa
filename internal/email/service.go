package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/rokotuskortti/vaccination-erecord/internal/config"
	"github.com/rokotuskortti/vaccination-erecord/internal/logging"
)

// Sender delivers a single plain-text message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outgoing plain-text email.
type Message struct {
	To      string
	Subject string
	Text    string
	From    string
}

// Service sends mail over SMTP. Authentication is skipped when no SMTP
// user is configured, which local relays expect.
type Service struct {
	smtpAddr     string
	smtpHost     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
}

func NewService(cfg config.EmailConfig) *Service {
	return &Service{
		smtpAddr:     cfg.Address(),
		smtpHost:     cfg.SMTPHost,
		smtpUser:     cfg.SMTPUser,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.From,
	}
}

// Send delivers the message. The From header falls back to the
// configured sender address when the message leaves it empty.
func (s *Service) Send(ctx context.Context, msg Message) error {
	logger := logging.GetLoggerFromContext(ctx)

	if err := validate(msg); err != nil {
		return err
	}

	from := msg.From
	if from == "" {
		from = s.fromEmail
	}

	payload := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		from, msg.To, msg.Subject, msg.Text,
	))

	var auth smtp.Auth
	if s.smtpUser != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	}

	if err := smtp.SendMail(s.smtpAddr, auth, from, []string{msg.To}, payload); err != nil {
		logger.Error("failed to send email", "to", msg.To, "error", err.Error())
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

func validate(msg Message) error {
	if msg.To == "" {
		return errors.New("email message has no recipient")
	}
	if msg.Subject == "" {
		return errors.New("email message has no subject")
	}
	if msg.Text == "" {
		return errors.New("email message has no body")
	}
	return nil
}
