package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/ridewise/ridewise-backend/internal/config"
	"github.com/ridewise/ridewise-backend/internal/jobs"
)

// Mailer delivers confirmation emails over SMTP. It implements jobs.Sender.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer creates the SMTP-backed sender. An empty host means email is not
// configured for this deployment.
func NewMailer(cfg *config.Config) (*Mailer, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST not configured")
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.SMTPFrom,
	}, nil
}

func (m *Mailer) Send(msg jobs.Message) error {
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
